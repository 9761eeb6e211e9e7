package perky

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUnescapeNGram(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantOk  bool
		wantLen int
	}{
		{in: "th", want: "th", wantOk: true},
		{in: `\t\n`, want: "\t\n", wantOk: true},
		{in: `\x41`, want: "A", wantOk: true},
		{in: `\0`, want: "\x00", wantOk: true},
		{in: `\q`, wantOk: false},
		{in: `\x`, wantOk: false},
	}
	for _, tt := range tests {
		got, ok := unescapeNGram(tt.in)
		if ok != tt.wantOk {
			t.Errorf("unescapeNGram(%q) ok = %v, want %v", tt.in, ok, tt.wantOk)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("unescapeNGram(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNGramTableAddSkipsInvalid(t *testing.T) {
	tbl := newNGramTable(2)
	tbl.Add("th", 10)
	tbl.Add("e", 5)    // wrong arity
	tbl.Add("\x01x", 3) // reserved byte
	tbl.Add("th", 2)   // duplicate sums

	if got := tbl.Lookup("th"); got != 12 {
		t.Errorf("Lookup(th) = %d, want 12", got)
	}
	if tbl.Total != 12 {
		t.Errorf("Total = %d, want 12", tbl.Total)
	}
}

func TestLoadNGramTableFile(t *testing.T) {
	content := "th\t100\n" + `\x65\x72` + "\t50\nan\t25\textra-column\n"
	path := filepath.Join(t.TempDir(), "bigrams.tsv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	tbl, err := LoadNGramTableFile(path, 2)
	if err != nil {
		t.Fatalf("LoadNGramTableFile: %v", err)
	}
	if got := tbl.Lookup("th"); got != 100 {
		t.Errorf("Lookup(th) = %d, want 100", got)
	}
	if got := tbl.Lookup("er"); got != 50 {
		t.Errorf("Lookup(er) = %d, want 50", got)
	}
	if got := tbl.Lookup("an"); got != 25 {
		t.Errorf("Lookup(an) = %d, want 25", got)
	}
	if tbl.Total != 175 {
		t.Errorf("Total = %d, want 175", tbl.Total)
	}
}

func TestLoadNGramTableFileBadCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(path, []byte("th\tnotanumber\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := LoadNGramTableFile(path, 2); err == nil {
		t.Errorf("expected error for non-numeric count")
	}
}

func TestFrequencyIndexTableSum(t *testing.T) {
	uni := newNGramTable(1)
	uni.Add("e", 10)
	uni.Add("t", 5)
	idx := NewFrequencyIndex(uni, nil, nil)
	if got := idx.TableSum(1); got != 15 {
		t.Errorf("TableSum(1) = %d, want 15", got)
	}
	if got := idx.TableSum(2); got != 0 {
		t.Errorf("TableSum(2) = %d, want 0 for nil table", got)
	}
	if got := idx.Lookup(1, "e"); got != 10 {
		t.Errorf("Lookup(1,e) = %d, want 10", got)
	}
}

func TestLoadNGramTableCachedWritesAndReuses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unigrams.tsv")
	if err := os.WriteFile(path, []byte("e\t10\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	tbl, err := LoadNGramTableCached(path, 1)
	if err != nil {
		t.Fatalf("LoadNGramTableCached (first load): %v", err)
	}
	if tbl.Total != 10 {
		t.Fatalf("Total = %d, want 10", tbl.Total)
	}

	cachePath := path + ".json"
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache file to be written: %v", err)
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(cachePath, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	// Corrupt the source so a second TSV parse would fail; a correct
	// cache-reuse path must never touch it.
	if err := os.WriteFile(path, []byte("not a valid\ttsv\tline\tfile"), 0o644); err != nil {
		t.Fatalf("corrupting source: %v", err)
	}

	tbl2, err := LoadNGramTableCached(path, 1)
	if err != nil {
		t.Fatalf("LoadNGramTableCached (second load): %v", err)
	}
	if tbl2.Total != 10 {
		t.Errorf("Total = %d, want 10 (expected cached table, not reparsed source)", tbl2.Total)
	}
}

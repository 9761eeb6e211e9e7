package perky

import (
	"path/filepath"
	"testing"
)

func TestBuildNGramTablesFromText(t *testing.T) {
	path := writeFile(t, "The the\ncat")
	uni, bi, tri, err := BuildNGramTablesFromText(path)
	if err != nil {
		t.Fatalf("BuildNGramTablesFromText: %v", err)
	}
	if got := uni.Lookup("t"); got != 3 {
		t.Errorf("unigram Lookup(t) = %d, want 3 (one from each 'the', one from 'cat')", got)
	}
	if got := bi.Lookup("th"); got != 2 {
		t.Errorf("bigram Lookup(th) = %d, want 2", got)
	}
	if got := tri.Lookup("the"); got != 2 {
		t.Errorf("trigram Lookup(the) = %d, want 2", got)
	}
	if got := bi.Lookup("ca"); got != 1 {
		t.Errorf("bigram Lookup(ca) = %d, want 1", got)
	}
}

func TestBuildNGramTablesFromTextMissingFile(t *testing.T) {
	_, _, _, err := BuildNGramTablesFromText(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, ok := err.(*TableError); !ok {
		t.Errorf("got error type %T, want *TableError", err)
	}
}

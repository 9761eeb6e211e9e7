package perky

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NGramTable maps a k-length ASCII string to its frequency count, for a
// fixed arity k in {1,2,3}.
type NGramTable struct {
	Arity  int
	Counts map[string]uint64
	Total  uint64
}

func newNGramTable(arity int) *NGramTable {
	return &NGramTable{Arity: arity, Counts: make(map[string]uint64)}
}

// validNGram reports whether s is a valid n-gram string: pure ASCII, no
// reserved control bytes, exactly `arity` bytes long.
func validNGram(s string, arity int) bool {
	if len(s) != arity {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b > 0x7F || IsReservedByte(b) {
			return false
		}
	}
	return true
}

// Add sums ngram's count into the table. Invalid n-grams (non-ASCII,
// reserved bytes, wrong length) are silently skipped, per section 6.3.
// A duplicate n-gram re-added sums, per the data model.
func (t *NGramTable) Add(ngram string, count uint64) {
	if !validNGram(ngram, t.Arity) {
		return
	}
	t.Counts[ngram] += count
	t.Total += count
}

// Lookup returns the count for ngram, or 0 if absent.
func (t *NGramTable) Lookup(ngram string) uint64 {
	return t.Counts[ngram]
}

// FrequencyIndex bundles the three n-gram tables (C2) and exposes the
// per-arity global sums used as percentage denominators.
type FrequencyIndex struct {
	Tables [4]*NGramTable // indexed 1..3; index 0 unused
}

// NewFrequencyIndex builds an index from already-loaded tables (any of
// which may be nil, treated as empty).
func NewFrequencyIndex(uni, bi, tri *NGramTable) *FrequencyIndex {
	idx := &FrequencyIndex{}
	idx.Tables[1] = orEmpty(uni, 1)
	idx.Tables[2] = orEmpty(bi, 2)
	idx.Tables[3] = orEmpty(tri, 3)
	return idx
}

func orEmpty(t *NGramTable, arity int) *NGramTable {
	if t == nil {
		return newNGramTable(arity)
	}
	return t
}

// Lookup returns the count for a tuple's n-gram string in the table of
// matching arity.
func (idx *FrequencyIndex) Lookup(arity int, ngram string) uint64 {
	return idx.Tables[arity].Lookup(ngram)
}

// TableSum returns the cached global sum for the given arity, used as the
// "global" percentage denominator (section 4.3).
func (idx *FrequencyIndex) TableSum(arity int) uint64 {
	return idx.Tables[arity].Total
}

// LoadNGramTableFile parses the TSV n-gram table format from section 6.3:
// one record per line, tab-separated, column 1 = n-gram string (with
// recognized escapes), column 2 = unsigned 64-bit decimal count, extra
// columns ignored.
func LoadNGramTableFile(path string, arity int) (*NGramTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TableError{Context: "opening n-gram file", Err: err}
	}
	defer CloseFile(f)

	t := newNGramTable(arity)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			return nil, &TableError{Context: "n-gram file", Err: fmt.Errorf("line %d: expected at least 2 tab-separated columns", lineNo)}
		}
		ngram, ok := unescapeNGram(cols[0])
		if !ok {
			continue
		}
		count, err := strconv.ParseUint(cols[1], 10, 64)
		if err != nil {
			return nil, &TableError{Context: "n-gram file", Err: fmt.Errorf("line %d: invalid count %q: %w", lineNo, cols[1], err)}
		}
		t.Add(ngram, count)
	}
	if err := scanner.Err(); err != nil {
		return nil, &TableError{Context: "reading n-gram file", Err: err}
	}
	return t, nil
}

// unescapeNGram decodes the recognized escape sequences (\0 \\ \n \r \t
// \xHH) and reports whether the result is a valid ASCII n-gram string.
func unescapeNGram(s string) (string, bool) {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			buf.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '0':
			buf.WriteByte(0)
		case '\\':
			buf.WriteByte('\\')
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'x':
			if i+2 >= len(s) {
				return "", false
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			buf.WriteByte(byte(v))
			i += 2
		default:
			return "", false
		}
	}
	out := buf.String()
	for i := 0; i < len(out); i++ {
		if out[i] > 0x7F || IsReservedByte(out[i]) {
			return "", false
		}
	}
	return out, true
}

type ngramTableCache struct {
	Arity  int               `json:"arity"`
	Counts map[string]uint64 `json:"counts"`
	Total  uint64            `json:"total"`
}

// LoadNGramTableCached loads path+".json" if it exists and is newer than
// path; otherwise it parses path as TSV and writes the cache, mirroring
// the teacher's corpus-cache convention (SPEC_FULL.md §4).
func LoadNGramTableCached(path string, arity int) (*NGramTable, error) {
	cachePath := path + ".json"
	srcInfo, err := os.Stat(path)
	if err != nil {
		return nil, &TableError{Context: "stat n-gram file", Err: err}
	}
	if cacheInfo, err := os.Stat(cachePath); err == nil && cacheInfo.ModTime().After(srcInfo.ModTime()) {
		if t, err := loadNGramTableJSON(cachePath); err == nil {
			return t, nil
		}
	}

	t, err := LoadNGramTableFile(path, arity)
	if err != nil {
		return nil, err
	}
	_ = saveNGramTableJSON(cachePath, t)
	return t, nil
}

func loadNGramTableJSON(path string) (*NGramTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache ngramTableCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &NGramTable{Arity: cache.Arity, Counts: cache.Counts, Total: cache.Total}, nil
}

func saveNGramTableJSON(path string, t *NGramTable) error {
	cache := ngramTableCache{Arity: t.Arity, Counts: t.Counts, Total: t.Total}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

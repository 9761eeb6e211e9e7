package perky

import (
	"bufio"
	"os"
	"strings"
	"unicode"
)

// BuildNGramTablesFromText tokenizes a raw text corpus into unigram,
// bigram, and trigram tables, the same way a frequency index built from an
// already-aggregated TSV would look. This is additive (SPEC_FULL.md §4):
// it is never invoked by scoring or permutation, only by tooling that
// wants to derive tables from a text source instead of a pre-aggregated
// one. ASCII letters are lowercased; n-grams are never allowed to span
// whitespace.
func BuildNGramTablesFromText(path string) (uni, bi, tri *NGramTable, err error) {
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, nil, nil, &TableError{Context: "opening corpus text", Err: ferr}
	}
	defer CloseFile(f)

	uni, bi, tri = newNGramTable(1), newNGramTable(2), newNGramTable(3)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		addTextLine(scanner.Text(), uni, bi, tri)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, &TableError{Context: "reading corpus text", Err: err}
	}
	return uni, bi, tri, nil
}

func addTextLine(line string, uni, bi, tri *NGramTable) {
	line = strings.ToLower(line)
	runs := strings.FieldsFunc(line, unicode.IsSpace)
	for _, word := range runs {
		for i := 0; i < len(word); i++ {
			uni.Add(word[i:i+1], 1)
			if i+1 < len(word) {
				bi.Add(word[i:i+2], 1)
			}
			if i+2 < len(word) {
				tri.Add(word[i:i+3], 1)
			}
		}
	}
}

package perky

import (
	"fmt"
	"sort"
)

// ScoredRecord pairs a retained KeyTable with its full Measurement, computed
// lazily once a candidate survives top-K retention (section 4.5).
type ScoredRecord struct {
	KeyTable    *KeyTable
	Measurement *Measurement
}

// Reify computes the full Measurement for every retained candidate, the
// step between C4's scalar-only search and C5's sort/filter/select
// pipeline.
func Reify(g *GeometryPlan, idx *FrequencyIndex, records []CandidateRecord, detailFor map[Metric]bool) []ScoredRecord {
	out := make([]ScoredRecord, len(records))
	for i, rec := range records {
		out[i] = ScoredRecord{KeyTable: rec.KeyTable, Measurement: Score(g, rec.KeyTable, idx, detailFor)}
	}
	return out
}

// Dedup removes candidates whose KeyTable is byte-identical to one already
// seen, keeping the first occurrence in input order.
func Dedup(records []ScoredRecord) []ScoredRecord {
	seen := make(map[string]bool, len(records))
	out := make([]ScoredRecord, 0, len(records))
	for _, r := range records {
		key := string(r.KeyTable.Bytes())
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// SortKey is one column of a multi-key sort: metric m's raw or weighted sum
// (section 4.5 step 2) under weight w, ordered per dir (GoalMax meaning
// descending, GoalMin ascending).
type SortKey struct {
	Metric Metric
	Weight Weight
	Dir    Goal
}

// SortRecords stably sorts records by the given keys in priority order,
// falling back to KeyTable.Bytes() as a final deterministic tiebreak. An
// empty keys slice sorts by nothing but the tiebreak.
func SortRecords(records []ScoredRecord, keys []SortKey) {
	sort.SliceStable(records, func(i, j int) bool {
		for _, k := range keys {
			vi := records[i].Measurement.Sum(k.Metric, k.Weight)
			vj := records[j].Measurement.Sum(k.Metric, k.Weight)
			if vi == vj {
				continue
			}
			if k.Dir == GoalMax {
				return vi > vj
			}
			return vi < vj
		}
		bi, bj := records[i].KeyTable.Bytes(), records[j].KeyTable.Bytes()
		return compareBytes(bi, bj) < 0
	})
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

// ApplyFilters keeps only the records for which every expression in exprs
// evaluates true under weight w (AND-combined across separately supplied
// expressions, section 4.6).
func ApplyFilters(records []ScoredRecord, exprs []FilterExpr, w Weight) []ScoredRecord {
	if len(exprs) == 0 {
		return records
	}
	out := make([]ScoredRecord, 0, len(records))
	for _, r := range records {
		keep := true
		for _, expr := range exprs {
			if !EvalFilter(expr, r.Measurement, w) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// Select applies --max-records truncation (keep the first N of the
// filtered list; N must be <= length) followed by an optional single-record
// --index pick (0-based; negative counts from end; must resolve in bounds),
// per section 4.5 step 4. Both out-of-range conditions are ArgumentErrors
// (section 7), not silent clamps.
func Select(records []ScoredRecord, maxRecords int, indexSet bool, index int) ([]ScoredRecord, error) {
	if maxRecords >= 0 {
		if maxRecords > len(records) {
			return nil, &ArgumentError{Context: "select max-records", Err: fmt.Errorf("max-records %d exceeds %d records", maxRecords, len(records))}
		}
		records = records[:maxRecords]
	}
	if !indexSet {
		return records, nil
	}
	idx := index
	if idx < 0 {
		idx += len(records)
	}
	if idx < 0 || idx >= len(records) {
		return nil, &ArgumentError{Context: "select index", Err: fmt.Errorf("index %d out of range (%d records)", index, len(records))}
	}
	return records[idx : idx+1], nil
}

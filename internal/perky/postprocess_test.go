package perky

import "testing"

func measurementWithSfb(pctRaw float64) *Measurement {
	m := &Measurement{}
	m.Metrics[MetricSfb].PercentWithinArityRaw = pctRaw
	return m
}

func measurementWithSfbSum(rawSum uint64) *Measurement {
	m := &Measurement{}
	m.Metrics[MetricSfb].RawSum = rawSum
	return m
}

func keyTableWithChar(c byte) *KeyTable {
	kt := &KeyTable{}
	kt.Cells[0][0] = KeyCell{Kind: KeyChar, Char: c}
	return kt
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	a := ScoredRecord{KeyTable: keyTableWithChar('a'), Measurement: measurementWithSfb(0.1)}
	aAgain := ScoredRecord{KeyTable: keyTableWithChar('a'), Measurement: measurementWithSfb(0.9)}
	b := ScoredRecord{KeyTable: keyTableWithChar('b'), Measurement: measurementWithSfb(0.2)}

	out := Dedup([]ScoredRecord{a, aAgain, b})
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	if out[0].Measurement.Metrics[MetricSfb].PercentWithinArityRaw != 0.1 {
		t.Errorf("expected first occurrence of duplicate key table to be kept")
	}
}

func TestSortRecordsStableWithTiebreak(t *testing.T) {
	a := ScoredRecord{KeyTable: keyTableWithChar('b'), Measurement: measurementWithSfbSum(5)}
	b := ScoredRecord{KeyTable: keyTableWithChar('a'), Measurement: measurementWithSfbSum(5)}
	c := ScoredRecord{KeyTable: keyTableWithChar('c'), Measurement: measurementWithSfbSum(9)}

	records := []ScoredRecord{a, b, c}
	SortRecords(records, []SortKey{{Metric: MetricSfb, Weight: WeightRaw, Dir: GoalMax}})

	if records[0].KeyTable.Cells[0][0].Char != 'c' {
		t.Fatalf("expected highest Sfb raw sum first, got %+v", records[0])
	}
	// a and b tie on Sfb; the byte tiebreak orders 'a' before 'b'.
	if records[1].KeyTable.Cells[0][0].Char != 'a' || records[2].KeyTable.Cells[0][0].Char != 'b' {
		t.Errorf("expected tiebreak order a,b; got %c,%c",
			records[1].KeyTable.Cells[0][0].Char, records[2].KeyTable.Cells[0][0].Char)
	}
}

func TestApplyFiltersAndCombinesExpressions(t *testing.T) {
	low := ScoredRecord{KeyTable: keyTableWithChar('a'), Measurement: measurementWithSfb(0.05)}
	high := ScoredRecord{KeyTable: keyTableWithChar('b'), Measurement: measurementWithSfb(0.5)}
	records := []ScoredRecord{low, high}

	expr, err := ParseFilter("sfb < 10")
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	out := ApplyFilters(records, []FilterExpr{expr}, WeightRaw)
	if len(out) != 1 || out[0].KeyTable.Cells[0][0].Char != 'a' {
		t.Errorf("expected only the low-Sfb record to survive, got %d records", len(out))
	}
}

func TestApplyFiltersEmptyExprsIsNoOp(t *testing.T) {
	records := []ScoredRecord{{KeyTable: keyTableWithChar('a'), Measurement: measurementWithSfb(0.5)}}
	out := ApplyFilters(records, nil, WeightRaw)
	if len(out) != 1 {
		t.Errorf("expected no filtering with empty expression list")
	}
}

func TestSelectTruncatesAndPicksIndex(t *testing.T) {
	records := []ScoredRecord{
		{KeyTable: keyTableWithChar('a')},
		{KeyTable: keyTableWithChar('b')},
		{KeyTable: keyTableWithChar('c')},
	}
	truncated, err := Select(records, 2, false, 0)
	if err != nil || len(truncated) != 2 {
		t.Fatalf("Select(maxRecords=2) = %v, %v", truncated, err)
	}

	picked, err := Select(records, -1, true, 1)
	if err != nil || len(picked) != 1 || picked[0].KeyTable.Cells[0][0].Char != 'b' {
		t.Fatalf("Select(index=1) = %v, %v", picked, err)
	}
}

func TestSelectNoIndexRequestedIsNoOp(t *testing.T) {
	records := []ScoredRecord{
		{KeyTable: keyTableWithChar('a')},
		{KeyTable: keyTableWithChar('b')},
	}
	out, err := Select(records, -1, false, 0)
	if err != nil || len(out) != 2 {
		t.Fatalf("Select with indexSet=false = %v, %v, want the unmodified 2-record slice", out, err)
	}
}

func TestSelectNegativeIndexCountsFromEnd(t *testing.T) {
	records := []ScoredRecord{
		{KeyTable: keyTableWithChar('a')},
		{KeyTable: keyTableWithChar('b')},
		{KeyTable: keyTableWithChar('c')},
	}
	picked, err := Select(records, -1, true, -1)
	if err != nil || len(picked) != 1 || picked[0].KeyTable.Cells[0][0].Char != 'c' {
		t.Fatalf("Select(index=-1) = %v, %v, want the last record", picked, err)
	}

	picked, err = Select(records, -1, true, -2)
	if err != nil || len(picked) != 1 || picked[0].KeyTable.Cells[0][0].Char != 'b' {
		t.Fatalf("Select(index=-2) = %v, %v, want the second-to-last record", picked, err)
	}
}

func TestSelectOutOfRangeIndexIsArgumentError(t *testing.T) {
	records := []ScoredRecord{{KeyTable: keyTableWithChar('a')}}
	_, err := Select(records, -1, true, 5)
	if err == nil {
		t.Fatalf("expected error for out-of-range index")
	}
	if _, ok := err.(*ArgumentError); !ok {
		t.Errorf("got error type %T, want *ArgumentError", err)
	}

	_, err = Select(records, -1, true, -5)
	if err == nil {
		t.Fatalf("expected error for out-of-range negative index")
	}
	if _, ok := err.(*ArgumentError); !ok {
		t.Errorf("got error type %T, want *ArgumentError", err)
	}
}

func TestSelectMaxRecordsExceedingLengthIsArgumentError(t *testing.T) {
	records := []ScoredRecord{{KeyTable: keyTableWithChar('a')}, {KeyTable: keyTableWithChar('b')}}
	_, err := Select(records, 5, false, 0)
	if err == nil {
		t.Fatalf("expected error when max-records exceeds the record count")
	}
	if _, ok := err.(*ArgumentError); !ok {
		t.Errorf("got error type %T, want *ArgumentError", err)
	}
}

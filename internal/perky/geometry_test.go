package perky

import "testing"

// smallLayout builds a 3-cell same-hand row (ring, middle, index, adjacent
// columns) plus one cell on the other hand. It yields every trigram category
// but only the Irb and Orb bigram categories (all left-hand cells share one
// row and use distinct fingers).
func smallLayout() *LayoutTable {
	lt := &LayoutTable{Type: Ortho}
	lt.Cells[0][0] = LayoutCell{Present: true, Digit: Lr}
	lt.Cells[0][1] = LayoutCell{Present: true, Digit: Lm}
	lt.Cells[0][2] = LayoutCell{Present: true, Digit: Li}
	lt.Cells[1][0] = LayoutCell{Present: true, Digit: Rp}
	return lt
}

func TestBuildGeometryPlanUnigramCounts(t *testing.T) {
	g := BuildGeometryPlan(smallLayout())
	if len(g.Tuples[MetricLr]) != 1 || len(g.Tuples[MetricLm]) != 1 || len(g.Tuples[MetricLi]) != 1 {
		t.Fatalf("expected one tuple per present left-hand digit")
	}
	if len(g.Tuples[MetricLh]) != 3 {
		t.Errorf("Lh tuple count = %d, want 3", len(g.Tuples[MetricLh]))
	}
	if len(g.Tuples[MetricRh]) != 1 {
		t.Errorf("Rh tuple count = %d, want 1", len(g.Tuples[MetricRh]))
	}
}

// TestBigramMutualExclusivity exercises P3: every ordered same-hand pair of
// present cells classifies into at most one of the six bigram categories.
func TestBigramMutualExclusivity(t *testing.T) {
	g := BuildGeometryPlan(smallLayout())
	counts := make(map[Cell]map[Cell]int)
	bigramMetrics := []Metric{MetricSfb, MetricIrb, MetricOrb, MetricLsb, MetricHsb, MetricFsb}
	for _, m := range bigramMetrics {
		for _, tuple := range g.Tuples[m] {
			a, b := tuple.Cells[0], tuple.Cells[1]
			if counts[a] == nil {
				counts[a] = make(map[Cell]int)
			}
			counts[a][b]++
			if counts[a][b] > 1 {
				t.Errorf("pair (%v,%v) classified into more than one bigram category", a, b)
			}
		}
	}
}

func TestClassifyBigramRingMiddleIsIrb(t *testing.T) {
	a := PresentCell{Cell: Cell{Row: 0, Col: 0}, Hand: Left, Finger: fingerRing}
	b := PresentCell{Cell: Cell{Row: 0, Col: 1}, Hand: Left, Finger: fingerMiddle}
	m, ok := classifyBigram(a, b)
	if !ok || m != MetricIrb {
		t.Errorf("classifyBigram(ring,middle) = %v,%v; want Irb,true", m, ok)
	}
	// Reversed order steps outward instead.
	m2, ok2 := classifyBigram(b, a)
	if !ok2 || m2 != MetricOrb {
		t.Errorf("classifyBigram(middle,ring) = %v,%v; want Orb,true", m2, ok2)
	}
}

func TestClassifyBigramSameFingerIsSfb(t *testing.T) {
	a := PresentCell{Cell: Cell{Row: 0, Col: 0}, Hand: Left, Finger: fingerIndex}
	b := PresentCell{Cell: Cell{Row: 1, Col: 3}, Hand: Left, Finger: fingerIndex}
	m, ok := classifyBigram(a, b)
	if !ok || m != MetricSfb {
		t.Errorf("classifyBigram(same finger) = %v,%v; want Sfb,true", m, ok)
	}
}

func TestClassifyBigramDifferentHandNeverMatches(t *testing.T) {
	a := PresentCell{Cell: Cell{Row: 0, Col: 0}, Hand: Left, Finger: fingerIndex}
	b := PresentCell{Cell: Cell{Row: 0, Col: 1}, Hand: Right, Finger: fingerIndex}
	if _, ok := classifyBigram(a, b); ok {
		t.Errorf("expected no classification across hands")
	}
}

func TestHsbFingerConditionOrdering(t *testing.T) {
	// b (middle, higher row) after a (index, lower row): Hsb/Fsb eligible.
	a := PresentCell{Cell: Cell{Row: 0, Col: 0}, Finger: fingerIndex}
	b := PresentCell{Cell: Cell{Row: 2, Col: 1}, Finger: fingerMiddle}
	ok, lower := hsbFingerCondition(a, b)
	if !ok || !lower {
		t.Errorf("hsbFingerCondition(index,middle-lower) = %v,%v; want true,true", ok, lower)
	}
	// Reversed: b is now the index (not middle/ring), condition still
	// matches (exactly one of a,b is middle/ring) but b is not the lower one.
	ok2, lower2 := hsbFingerCondition(b, a)
	if !ok2 || lower2 {
		t.Errorf("hsbFingerCondition(middle,index) = %v,%v; want true,false", ok2, lower2)
	}
}

func TestClassifyTrigramAltOneRedRol(t *testing.T) {
	left := func(col, finger int) PresentCell {
		return PresentCell{Cell: Cell{Row: 0, Col: col}, Hand: Left, Finger: finger}
	}
	right := func(col, finger int) PresentCell {
		return PresentCell{Cell: Cell{Row: 0, Col: col}, Hand: Right, Finger: finger}
	}

	a := left(0, fingerRing)
	b := right(10, fingerIndex)
	c := left(1, fingerMiddle)
	if m, ok := classifyTrigram(a, b, c); !ok || m != MetricAlt {
		t.Errorf("expected Alt for L,R,L pattern, got %v,%v", m, ok)
	}

	// monotone increasing columns, distinct fingers, same hand -> One.
	x := left(0, fingerPinky)
	y := left(1, fingerRing)
	z := left(2, fingerMiddle)
	if m, ok := classifyTrigram(x, y, z); !ok || m != MetricOne {
		t.Errorf("expected One for monotone same-hand run, got %v,%v", m, ok)
	}

	// non-monotone columns, distinct fingers, same hand -> Red.
	p := left(2, fingerPinky)
	q := left(0, fingerRing)
	r := left(1, fingerMiddle)
	if m, ok := classifyTrigram(p, q, r); !ok || m != MetricRed {
		t.Errorf("expected Red for non-monotone same-hand run, got %v,%v", m, ok)
	}

	// a,b same hand distinct fingers, c other hand -> Rol.
	rl := left(0, fingerRing)
	rm := left(1, fingerMiddle)
	ro := right(10, fingerIndex)
	if m, ok := classifyTrigram(rl, rm, ro); !ok || m != MetricRol {
		t.Errorf("expected Rol for same-hand pair followed by other hand, got %v,%v", m, ok)
	}
}

func TestStepEffortColStagOffset(t *testing.T) {
	a := Cell{Row: 0, Col: 0}
	b := Cell{Row: 1, Col: 1}
	e := stepEffort(ColStag, a, b)
	if e != 1.25 {
		t.Errorf("expected |Δcol| widened to 1.25 by the row-dependent column offset under ColStag, got %v", e)
	}
	if stepEffort(Ortho, a, b) != 1 {
		t.Errorf("expected plain max(|Δrow|,|Δcol|)=1 effort under Ortho")
	}
}

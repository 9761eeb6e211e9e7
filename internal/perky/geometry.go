package perky

import "math"

// PresentCell is a cell whose layout digit is present, with its derived
// hand/finger facts cached.
type PresentCell struct {
	Cell   Cell
	Digit  Digit
	Hand   Hand
	Finger int
}

// Tuple is an ordered cell k-tuple (k = the owning metric's arity) that
// satisfies that metric's predicate, paired with its effort factor.
type Tuple struct {
	Cells  []Cell
	Effort float64
}

// NGram renders the tuple's key characters (in tuple order) as the n-gram
// string used to look up its frequency.
func (t Tuple) NGram(kt *KeyTable) (string, bool) {
	buf := make([]byte, len(t.Cells))
	for i, cell := range t.Cells {
		kc := kt.Cells[cell.Row][cell.Col]
		if kc.Kind != KeyChar {
			return "", false
		}
		buf[i] = kc.Char
	}
	return string(buf), true
}

// GeometryPlan is the immutable product of C1: present cells plus, for
// every metric, the ordered list of tuples satisfying that metric's
// predicate.
type GeometryPlan struct {
	PresentCells []PresentCell
	Tuples       [numMetrics][]Tuple
	Type         LayoutType
	index        map[Cell]PresentCell
}

// CellInfo looks up the cached hand/finger facts for a present cell.
func (g *GeometryPlan) CellInfo(c Cell) (PresentCell, bool) {
	pc, ok := g.index[c]
	return pc, ok
}

// BuildGeometryPlan derives a GeometryPlan from a LayoutTable. Tuple lists
// are built in row-major order on the first cell, then second, then third,
// per the output invariant in section 4.1.
func BuildGeometryPlan(lt *LayoutTable) *GeometryPlan {
	g := &GeometryPlan{Type: lt.Type, index: make(map[Cell]PresentCell)}

	for r := 0; r < GridRows; r++ {
		for c := 0; c < GridCols; c++ {
			lc := lt.Cells[r][c]
			if !lc.Present {
				continue
			}
			pc := PresentCell{
				Cell:   Cell{Row: r, Col: c},
				Digit:  lc.Digit,
				Hand:   lc.Digit.Hand(),
				Finger: lc.Digit.Finger(),
			}
			g.PresentCells = append(g.PresentCells, pc)
			g.index[pc.Cell] = pc
		}
	}

	g.buildUnigramTuples()
	g.buildBigramTuples()
	g.buildTrigramTuples()
	return g
}

func (g *GeometryPlan) buildUnigramTuples() {
	perDigit := make([][]Tuple, numDigits)
	for _, pc := range g.PresentCells {
		perDigit[pc.Digit] = append(perDigit[pc.Digit], Tuple{Cells: []Cell{pc.Cell}, Effort: 1})
	}
	digitMetric := map[Digit]Metric{
		Lt: MetricLt, Li: MetricLi, Lm: MetricLm, Lr: MetricLr, Lp: MetricLp,
		Rt: MetricRt, Ri: MetricRi, Rm: MetricRm, Rr: MetricRr, Rp: MetricRp,
	}
	for d, m := range digitMetric {
		g.Tuples[m] = perDigit[d]
	}
	var lh, rh []Tuple
	for _, pc := range g.PresentCells {
		t := Tuple{Cells: []Cell{pc.Cell}, Effort: 1}
		if pc.Hand == Left {
			lh = append(lh, t)
		} else {
			rh = append(rh, t)
		}
	}
	g.Tuples[MetricLh] = lh
	g.Tuples[MetricRh] = rh
}

func (g *GeometryPlan) buildBigramTuples() {
	cells := g.PresentCells
	for _, a := range cells {
		for _, b := range cells {
			if a.Cell == b.Cell {
				continue
			}
			m, ok := classifyBigram(a, b)
			if !ok {
				continue
			}
			ef := 1 + stepEffort(g.Type, a.Cell, b.Cell)
			g.Tuples[m] = append(g.Tuples[m], Tuple{Cells: []Cell{a.Cell, b.Cell}, Effort: ef})
		}
	}
}

func (g *GeometryPlan) buildTrigramTuples() {
	cells := g.PresentCells
	for _, a := range cells {
		for _, b := range cells {
			if b.Cell == a.Cell {
				continue
			}
			for _, c := range cells {
				if c.Cell == a.Cell || c.Cell == b.Cell {
					continue
				}
				m, ok := classifyTrigram(a, b, c)
				if !ok {
					continue
				}
				ef := 1 + stepEffort(g.Type, a.Cell, b.Cell) + stepEffort(g.Type, b.Cell, c.Cell)
				g.Tuples[m] = append(g.Tuples[m], Tuple{Cells: []Cell{a.Cell, b.Cell, c.Cell}, Effort: ef})
			}
		}
	}
}

// inward/outward step sets, keyed by (fin(a), fin(b)).
var irbSteps = map[[2]int]bool{
	{fingerPinky, fingerRing}:   true,
	{fingerRing, fingerMiddle}:  true,
	{fingerMiddle, fingerIndex}: true,
}

var orbSteps = map[[2]int]bool{
	{fingerIndex, fingerMiddle}: true,
	{fingerMiddle, fingerRing}:  true,
	{fingerRing, fingerPinky}:   true,
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// classifyBigram classifies an ordered pair of present cells into at most
// one of the six bigram metrics. Sfb/Irb/Orb/Lsb/Hsb/Fsb are tested in that
// fixed priority order so that a pair matching more than one predicate's
// literal text (Lsb's text has no row constraint, and can otherwise overlap
// with Hsb/Fsb) is still classified into exactly one category. See
// DESIGN.md resolution #3.
func classifyBigram(a, b PresentCell) (Metric, bool) {
	if a.Hand != b.Hand {
		return 0, false
	}
	colDiff := abs(a.Cell.Col - b.Cell.Col)
	rowDiff := abs(a.Cell.Row - b.Cell.Row)

	if a.Finger == b.Finger {
		return MetricSfb, true
	}
	if colDiff == 1 && rowDiff == 0 {
		if irbSteps[[2]int{a.Finger, b.Finger}] {
			return MetricIrb, true
		}
		if orbSteps[[2]int{a.Finger, b.Finger}] {
			return MetricOrb, true
		}
	}
	if colDiff >= 2 && isIndexMiddleSet(a.Finger, b.Finger) {
		return MetricLsb, true
	}
	if colDiff >= 1 && rowDiff >= 1 {
		if ok, secondIsLower := hsbFingerCondition(a, b); ok && secondIsLower {
			if rowDiff == 1 {
				return MetricHsb, true
			}
			return MetricFsb, true
		}
	}
	return 0, false
}

func isIndexMiddleSet(f1, f2 int) bool {
	return (f1 == fingerIndex && f2 == fingerMiddle) || (f1 == fingerMiddle && f2 == fingerIndex)
}

// hsbFingerCondition implements the Hsb/Fsb row predicate as an ordered
// condition on the tuple's second cell (DESIGN.md resolution #2): exactly
// one of a,b is pressed by middle or ring, and that cell must be b (the
// second press) with strictly greater row than a.
func hsbFingerCondition(a, b PresentCell) (matches bool, secondIsLower bool) {
	aIsMR := a.Finger == fingerMiddle || a.Finger == fingerRing
	bIsMR := b.Finger == fingerMiddle || b.Finger == fingerRing
	if aIsMR == bIsMR {
		return false, false
	}
	if bIsMR {
		return true, b.Cell.Row > a.Cell.Row
	}
	return true, false
}

// classifyTrigram classifies an ordered triple of distinct present cells
// into at most one of the four trigram metrics.
func classifyTrigram(a, b, c PresentCell) (Metric, bool) {
	switch {
	case a.Hand == c.Hand && a.Hand != b.Hand:
		return MetricAlt, true
	case a.Hand == b.Hand && b.Hand == c.Hand:
		if a.Finger == b.Finger || b.Finger == c.Finger || a.Finger == c.Finger {
			return 0, false
		}
		if a.Cell.Col == b.Cell.Col || b.Cell.Col == c.Cell.Col || a.Cell.Col == c.Cell.Col {
			return 0, false
		}
		if isMonotone(a.Cell.Col, b.Cell.Col, c.Cell.Col) {
			return MetricOne, true
		}
		return MetricRed, true
	case a.Hand == b.Hand: // b,c differ; a,b same-hand pair, c other hand
		if a.Finger != b.Finger {
			return MetricRol, true
		}
		return 0, false
	case b.Hand == c.Hand: // a differs; b,c same-hand pair
		if b.Finger != c.Finger {
			return MetricRol, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func isMonotone(x, y, z int) bool {
	return (x < y && y < z) || (x > y && y > z)
}

// stepEffort computes the Chebyshev-like displacement term for one
// consecutive pair of a tuple, under the given layout's row/column offset
// functions.
func stepEffort(t LayoutType, a, b Cell) float64 {
	dRow := float64(abs(a.Row - b.Row))
	dCol := colDistance(t, a, b)
	return math.Max(dRow, dCol)
}

// colDistance returns the effective column displacement between two cells.
// RowStag and Ortho use plain |Δcol|; ColStag/AngleMod apply a per-row
// horizontal offset, mirroring a staggered physical keyboard's real key
// displacement (a supplemented feature; see SPEC_FULL.md §4).
func colDistance(t LayoutType, a, b Cell) float64 {
	switch t {
	case ColStag:
		return math.Abs((float64(a.Col) + colStagOffset(a.Row)) - (float64(b.Col) + colStagOffset(b.Row)))
	case AngleMod:
		return math.Abs((float64(a.Col) + angleModOffset(a.Row)) - (float64(b.Col) + angleModOffset(b.Row)))
	default:
		return float64(abs(a.Col - b.Col))
	}
}

func colStagOffset(row int) float64 {
	return float64(row) * 0.25
}

func angleModOffset(row int) float64 {
	if row >= 5 {
		return -0.5
	}
	return 0
}

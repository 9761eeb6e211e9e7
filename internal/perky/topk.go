package perky

import "container/heap"

// CandidateRecord is a concrete character-filled KeyTable plus the single
// scalar score selected by (metric, weight) for ranking during search. Its
// full Measurement is reified lazily, only for candidates that survive
// top-K retention (section 3).
type CandidateRecord struct {
	KeyTable *KeyTable
	Score    float64
}

// topKHeap implements container/heap.Interface ordered so that the worst
// retained candidate (per goal) is always at index 0: a min-heap on Score
// when goal is max (so the smallest score is evicted first), a max-heap
// when goal is min.
type topKHeap struct {
	goal  Goal
	items []CandidateRecord
}

func (h *topKHeap) Len() int { return len(h.items) }
func (h *topKHeap) Less(i, j int) bool {
	if h.goal == GoalMax {
		return h.items[i].Score < h.items[j].Score
	}
	return h.items[i].Score > h.items[j].Score
}
func (h *topKHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *topKHeap) Push(x any)    { h.items = append(h.items, x.(CandidateRecord)) }
func (h *topKHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// TopK is a bounded heap of size <= K implementing the admission rule from
// section 4.4: admit while under capacity; once full, replace the worst
// retained candidate only on a strictly better score (ties and
// strictly-worse scores are dropped once the heap is full, so ties are
// retained only up to K and overflow ties are lost).
type TopK struct {
	k int
	h topKHeap
}

// NewTopK creates a bounded top-K retainer for the given goal and capacity.
func NewTopK(goal Goal, k int) *TopK {
	return &TopK{k: k, h: topKHeap{goal: goal}}
}

// WouldAdmit reports whether a candidate with the given score would be
// retained by Admit, without constructing the candidate itself. Callers
// use this to avoid cloning an expensive KeyTable for a candidate that
// would just be dropped.
func (t *TopK) WouldAdmit(score float64) bool {
	if t.k <= 0 {
		return false
	}
	if t.h.Len() < t.k {
		return true
	}
	return isStrictlyBetter(score, t.h.items[0].Score, t.h.goal)
}

// Admit offers a candidate to the heap, per the admission rule above.
func (t *TopK) Admit(rec CandidateRecord) {
	if t.k <= 0 {
		return
	}
	if t.h.Len() < t.k {
		heap.Push(&t.h, rec)
		return
	}
	worst := t.h.items[0]
	if isStrictlyBetter(rec.Score, worst.Score, t.h.goal) {
		heap.Pop(&t.h)
		heap.Push(&t.h, rec)
	}
}

func isStrictlyBetter(score, worst float64, goal Goal) bool {
	if goal == GoalMax {
		return score > worst
	}
	return score < worst
}

// Records returns the retained candidates in unspecified order (section 5:
// C4's intermediate order is unspecified; ordering is C5's job).
func (t *TopK) Records() []CandidateRecord {
	out := make([]CandidateRecord, len(t.h.items))
	copy(out, t.h.items)
	return out
}

// Merge admits every record from other into t, per the final worker-merge
// step in section 4.4.
func (t *TopK) Merge(other *TopK) {
	for _, rec := range other.Records() {
		t.Admit(rec)
	}
}

package perky

// lehmerUnrankInto decodes idx (0-based) into the idx-th permutation of
// [0, len(perm)) in lexicographic order, using the factorial number
// system (section 9).
func lehmerUnrankInto(idx uint64, perm []int) {
	n := len(perm)
	avail := make([]int, n)
	for i := range avail {
		avail[i] = i
	}
	for i := 0; i < n; i++ {
		f := factorial(uint64(n - 1 - i))
		pos := idx / f
		idx %= f
		perm[i] = avail[pos]
		avail = append(avail[:pos], avail[pos+1:]...)
	}
}

// resetToIdentity resets perm to [0, 1, ..., len(perm)-1], the first
// permutation in lexicographic order.
func resetToIdentity(perm []int) {
	for i := range perm {
		perm[i] = i
	}
}

// nextPermutationIndices advances perm in place to the next permutation in
// lexicographic order (the standard "next permutation" algorithm) and
// reports the inclusive index range [lo, hi] that changed value. ok is
// false when perm was already the last (fully descending) permutation, in
// which case perm is left unmodified.
func nextPermutationIndices(perm []int) (ok bool, lo, hi int) {
	n := len(perm)
	k := n - 2
	for k >= 0 && perm[k] >= perm[k+1] {
		k--
	}
	if k < 0 {
		return false, 0, 0
	}
	l := n - 1
	for perm[l] <= perm[k] {
		l--
	}
	perm[k], perm[l] = perm[l], perm[k]
	for i, j := k+1, n-1; i < j; i, j = i+1, j-1 {
		perm[i], perm[j] = perm[j], perm[i]
	}
	return true, k, n - 1
}

// applyPerm writes region s's characters onto kt according to perm
// (perm[i] is the index into s.chars assigned to s.cells[i]).
func applyPerm(kt *KeyTable, s regionSlot, perm []int) {
	for i, cell := range s.cells {
		kt.Cells[cell.Row][cell.Col] = KeyCell{Kind: KeyChar, Char: s.chars[perm[i]]}
	}
}

// stepComposite advances the composite permutation state by exactly one,
// odometer-style: region 0 is fastest-changing. It returns every cell
// whose assigned character may have changed as a result (the region that
// stepped without wrapping contributes only its changed sub-range; a
// region that wraps back to its first permutation is conservatively
// reported in full, since a multi-position reset can touch any of its
// cells).
func stepComposite(slots []regionSlot, perms [][]int) []Cell {
	var changed []Cell
	for i := range slots {
		if ok, lo, hi := nextPermutationIndices(perms[i]); ok {
			changed = append(changed, slots[i].cells[lo:hi+1]...)
			return changed
		}
		resetToIdentity(perms[i])
		changed = append(changed, slots[i].cells...)
	}
	return changed
}

// touchedTuples returns the deduplicated set of regionTuples indices
// (by index into the caller's regionTuples slice) that intersect any of
// changedCells.
func touchedTuples(changedCells []Cell, refs map[Cell][]cellTupleRef) map[int]bool {
	touched := make(map[int]bool)
	for _, c := range changedCells {
		for _, ref := range refs[c] {
			touched[ref.tupleIdx] = true
		}
	}
	return touched
}

// tupleCount looks up a tuple's current n-gram count against kt's present
// assignment; ok is false if the tuple spans a still-unassigned cell
// (never the case once all regions are fully character-filled, which
// Permute guarantees before scoring begins).
func tupleCount(kt *KeyTable, t Tuple, idx *FrequencyIndex, arity int) (uint64, bool) {
	ngram, ok := t.NGram(kt)
	if !ok {
		return 0, false
	}
	return idx.Lookup(arity, ngram), true
}

// scanRegionTuples computes metric's dynamic contribution from scratch,
// used once per worker to seed its chunk's first candidate.
func scanRegionTuples(kt *KeyTable, tuples []Tuple, idx *FrequencyIndex, m Metric, w Weight) float64 {
	var sum float64
	for _, t := range tuples {
		n, ok := tupleCount(kt, t, idx, m.Arity())
		if !ok {
			continue
		}
		sum += contribution(n, t, w)
	}
	return sum
}

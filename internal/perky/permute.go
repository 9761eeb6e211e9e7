package perky

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// PermuteParams are the inputs to the permutation driver (C4).
type PermuteParams struct {
	Plan     *GeometryPlan
	Index    *FrequencyIndex
	KeyTable *KeyTable // the template table; region cells carry placeholders
	CharSets map[int][]byte

	Metric Metric
	Weight Weight
	Goal   Goal

	Truncate int // default handled by caller; 0 here means "retain nothing"
	Threads  int // 0 means runtime.NumCPU()
	SleepNS  int64

	Sink Sink
}

// PermuteResult is what Permute returns: the retained candidates (in
// unspecified order — ordering is C5's job) plus the completion metadata.
type PermuteResult struct {
	Records  []CandidateRecord
	Metadata Metadata
}

// regionSlot is one placeholder region paired with the character set
// assigned to it.
type regionSlot struct {
	cells []Cell
	chars []byte
	count uint64 // factorial(len(cells))
}

// Permute runs the exhaustive parallel permutation search described in
// section 4.4. ctx cancellation is cooperative: workers finish their
// current batch and the driver returns whatever was retained so far.
func Permute(ctx context.Context, p PermuteParams) (*PermuteResult, error) {
	regions := p.KeyTable.Regions()
	if len(regions) == 0 {
		return nil, &StructuralError{Context: "permute", Err: fmt.Errorf("key table has no placeholder regions")}
	}

	regionTags := make(map[int]bool, len(regions))
	for _, r := range regions {
		regionTags[r.Tag] = true
	}
	for tag := range p.CharSets {
		if !regionTags[tag] {
			return nil, &StructuralError{Context: "permute", Err: fmt.Errorf("character set supplied for region %d, but the key table has no placeholder cells tagged %d", tag, tag)}
		}
	}

	slots := make([]regionSlot, len(regions))
	total := uint64(1)
	for i, r := range regions {
		chars, ok := p.CharSets[r.Tag]
		if !ok {
			return nil, &StructuralError{Context: "permute", Err: fmt.Errorf("no character set supplied for region %d", r.Tag)}
		}
		if err := ValidateRegionCharSet(r, chars); err != nil {
			return nil, err
		}
		slots[i] = regionSlot{cells: r.Cells, chars: chars, count: factorial(uint64(len(r.Cells)))}
		total *= slots[i].count
	}

	base := p.KeyTable.Clone()
	regionCellSet := make(map[Cell]bool)
	for _, s := range slots {
		for _, c := range s.cells {
			regionCellSet[c] = true
		}
	}

	regionTuples, staticRemainder := splitStaticAndDynamic(p.Plan, p.Index, p.Metric, p.Weight, base, regionCellSet)
	cellTupleRefs := buildCellTupleRefs(regionTuples)

	if p.Threads < 0 {
		return nil, &ArgumentError{Context: "permute threads", Err: fmt.Errorf("thread count must not be negative, got %d", p.Threads)}
	}
	threads := p.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	if total == 0 {
		total = 1
	}

	var completed atomic.Uint64
	var cancelled atomic.Bool
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	results := make([]*TopK, threads)

	chunkSize := (total + uint64(threads) - 1) / uint64(threads)
	if chunkSize == 0 {
		chunkSize = 1
	}

	var monitorWG sync.WaitGroup
	monitorDone := make(chan struct{})
	monitorWG.Add(1)
	go func() {
		defer monitorWG.Done()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Sink.OnProgress(completed.Load(), total, time.Since(start))
			case <-monitorDone:
				return
			}
		}
	}()

	for w := 0; w < threads; w++ {
		workerStart := uint64(w) * chunkSize
		results[w] = NewTopK(p.Goal, p.Truncate)
		if workerStart >= total {
			continue
		}
		workerEnd := workerStart + chunkSize
		if workerEnd > total {
			workerEnd = total
		}
		topk := results[w]
		g.Go(func() error {
			runWorker(gctx, workerRunParams{
				index:           p.Index,
				slots:           slots,
				kt:              base.Clone(),
				metric:          p.Metric,
				regionTuples:    regionTuples,
				cellTupleRefs:   cellTupleRefs,
				staticRemainder: staticRemainder,
				weight:          p.Weight,
				startComposite:  workerStart,
				endComposite:    workerEnd,
				topk:            topk,
				completed:       &completed,
				cancelled:       &cancelled,
				sleepNS:         p.SleepNS,
			})
			return nil
		})
	}

	_ = g.Wait()
	close(monitorDone)
	monitorWG.Wait()

	merged := NewTopK(p.Goal, p.Truncate)
	for _, r := range results {
		merged.Merge(r)
	}
	records := merged.Records()

	var best float64
	if len(records) > 0 {
		best = records[0].Score
		for _, r := range records[1:] {
			if isStrictlyBetter(r.Score, best, p.Goal) {
				best = r.Score
			}
		}
	}

	meta := Metadata{
		TotalPermutations: total,
		Elapsed:           time.Since(start),
		Goal:              p.Goal,
		Metric:            p.Metric,
		Weight:            p.Weight,
		Score:             best,
		TotalRecords:      len(records),
		Partial:           cancelled.Load(),
	}
	if total > 0 {
		meta.Efficiency = float64(meta.Elapsed) / float64(total)
	}
	p.Sink.OnComplete(meta)

	return &PermuteResult{Records: records, Metadata: meta}, nil
}

func factorial(n uint64) uint64 {
	f := uint64(1)
	for i := uint64(2); i <= n; i++ {
		f *= i
	}
	return f
}

// contribution returns a tuple's weighted or raw contribution to metric M*
// given the n-gram count at its current character assignment.
func contribution(n uint64, t Tuple, w Weight) float64 {
	if w == WeightRaw {
		return float64(n)
	}
	return float64(n) * t.Effort
}

// splitStaticAndDynamic partitions metric m's tuples into those that never
// touch a region cell (folded once into a constant staticRemainder, since
// those cells are fixed for the whole search) and those that do
// (regionTuples, recomputed/updated per candidate per section 4.4).
func splitStaticAndDynamic(g *GeometryPlan, idx *FrequencyIndex, m Metric, w Weight, kt *KeyTable, regionCells map[Cell]bool) (regionTuples []Tuple, staticRemainder float64) {
	for _, t := range g.Tuples[m] {
		touches := false
		for _, c := range t.Cells {
			if regionCells[c] {
				touches = true
				break
			}
		}
		if touches {
			regionTuples = append(regionTuples, t)
			continue
		}
		ngram, ok := t.NGram(kt)
		if !ok {
			continue
		}
		n := idx.Lookup(m.Arity(), ngram)
		staticRemainder += contribution(n, t, w)
	}
	return regionTuples, staticRemainder
}

// cellTupleRef points at one entry of a regionTuples slice.
type cellTupleRef struct {
	tupleIdx int
}

// buildCellTupleRefs indexes, for every cell touched by at least one
// region-dynamic tuple, which tuples (by index into regionTuples) must be
// recomputed when that cell's character changes.
func buildCellTupleRefs(regionTuples []Tuple) map[Cell][]cellTupleRef {
	refs := make(map[Cell][]cellTupleRef)
	for i, t := range regionTuples {
		for _, c := range t.Cells {
			refs[c] = append(refs[c], cellTupleRef{tupleIdx: i})
		}
	}
	return refs
}

type workerRunParams struct {
	index           *FrequencyIndex
	slots           []regionSlot
	kt              *KeyTable
	metric          Metric
	regionTuples    []Tuple
	cellTupleRefs   map[Cell][]cellTupleRef
	staticRemainder float64
	weight          Weight
	startComposite  uint64
	endComposite    uint64
	topk            *TopK
	completed       *atomic.Uint64
	cancelled       *atomic.Bool
	sleepNS         int64
}

const batchSize = 4096

// runWorker enumerates composite permutation indices [startComposite,
// endComposite) for one worker. Each region's permutation state steps via
// the standard next-lexicographic-permutation algorithm (an explicitly
// permitted equivalent of Heap's algorithm per section 9's "or
// equivalent"); region 0 is fastest-changing, with carry propagation into
// slower regions exactly like an odometer, giving a well-defined
// bijection between [0, total) and the product of per-region
// permutations.
func runWorker(ctx context.Context, rp workerRunParams) {
	perms := make([][]int, len(rp.slots))
	for i, s := range rp.slots {
		perms[i] = make([]int, len(s.cells))
	}

	// Unrank the starting composite index into each region's own
	// lexicographic permutation index, then Lehmer-unrank that into the
	// region's starting position-permutation.
	remaining := rp.startComposite
	for i, s := range rp.slots {
		regionIdx := remaining % s.count
		remaining /= s.count
		lehmerUnrankInto(regionIdx, perms[i])
	}

	// Apply the initial assignment to the working key table.
	for i, s := range rp.slots {
		applyPerm(rp.kt, s, perms[i])
	}

	acc := rp.staticRemainder + scanRegionTuples(rp.kt, rp.regionTuples, rp.index, rp.metric, rp.weight)

	if rp.topk.WouldAdmit(acc) {
		rp.topk.Admit(CandidateRecord{KeyTable: rp.kt.Clone(), Score: acc})
	}

	sinceBatch := 0
	for step := rp.startComposite + 1; step < rp.endComposite; step++ {
		if rp.cancelled.Load() {
			break
		}

		changedCells := stepComposite(rp.slots, perms)
		touched := touchedTuples(changedCells, rp.cellTupleRefs)

		// Subtract every touched tuple's contribution under the table
		// state before this step's swaps are applied.
		for tIdx := range touched {
			n, ok := tupleCount(rp.kt, rp.regionTuples[tIdx], rp.index, rp.metric.Arity())
			if ok {
				acc -= contribution(n, rp.regionTuples[tIdx], rp.weight)
			}
		}

		for i, s := range rp.slots {
			applyPerm(rp.kt, s, perms[i])
		}

		// Add every touched tuple's contribution back under the new
		// table state. Per P2, acc now equals a from-scratch C3 run
		// restricted to the dynamic (region-touching) tuples.
		for tIdx := range touched {
			n, ok := tupleCount(rp.kt, rp.regionTuples[tIdx], rp.index, rp.metric.Arity())
			if ok {
				acc += contribution(n, rp.regionTuples[tIdx], rp.weight)
			}
		}

		if rp.topk.WouldAdmit(acc) {
			rp.topk.Admit(CandidateRecord{KeyTable: rp.kt.Clone(), Score: acc})
		}

		rp.completed.Add(1)
		sinceBatch++
		if sinceBatch >= batchSize {
			sinceBatch = 0
			if rp.sleepNS > 0 {
				time.Sleep(time.Duration(rp.sleepNS))
			}
			select {
			case <-ctx.Done():
				rp.cancelled.Store(true)
			default:
			}
		}
	}
	rp.completed.Add(1)
}

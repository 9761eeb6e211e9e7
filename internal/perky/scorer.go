package perky

import "sort"

// Score computes a full Measurement for a fully character-assigned
// KeyTable against a GeometryPlan and FrequencyIndex (C3). detailFor, if
// non-nil, restricts detail-row emission to the metrics it contains; pass
// nil to emit no detail rows.
func Score(g *GeometryPlan, kt *KeyTable, idx *FrequencyIndex, detailFor map[Metric]bool) *Measurement {
	meas := &Measurement{}

	for _, m := range AllMetrics() {
		mm := MetricMeasurement{Metric: m}
		wantDetail := detailFor != nil && detailFor[m]

		for _, tuple := range g.Tuples[m] {
			ngram, ok := tuple.NGram(kt)
			if !ok {
				continue
			}
			n := idx.Lookup(m.Arity(), ngram)
			mm.RawSum += n
			mm.WeightedSum += float64(n) * tuple.Effort
			if wantDetail {
				mm.Details = append(mm.Details, DetailRow{
					NGram:    ngram,
					Count:    n,
					Weighted: float64(n) * tuple.Effort,
				})
			}
		}

		if wantDetail {
			finalizeDetails(&mm)
		}
		meas.Metrics[m] = mm
	}

	computePercentages(meas)
	ApplyGlobalPercentages(meas, idx)
	return meas
}

// finalizeDetails sorts detail rows by count descending (ties stable by
// enumeration order) and fills in cumulatives and per-row percentages.
func finalizeDetails(mm *MetricMeasurement) {
	sort.SliceStable(mm.Details, func(i, j int) bool {
		return mm.Details[i].Count > mm.Details[j].Count
	})
	var cumCount uint64
	var cumWeighted float64
	for i := range mm.Details {
		row := &mm.Details[i]
		cumCount += row.Count
		cumWeighted += row.Weighted
		row.CumulativeCount = cumCount
		row.CumulativeWeighted = cumWeighted
		row.PercentRaw = safeDiv(float64(row.Count), float64(mm.RawSum))
		row.PercentWeighted = safeDiv(row.Weighted, mm.WeightedSum)
	}
}

// computePercentages fills in the four summary percentages for every
// metric (section 4.3). Lh/Rh are excluded from the unigram arity total
// since they double-count their hand's five fingers.
func computePercentages(meas *Measurement) {
	for _, arity := range []int{1, 2, 3} {
		var totalRaw, totalWeighted float64
		for _, m := range MetricsOfArity(arity) {
			if arity == 1 && (m == MetricLh || m == MetricRh) {
				continue
			}
			totalRaw += float64(meas.Metrics[m].RawSum)
			totalWeighted += meas.Metrics[m].WeightedSum
		}
		for _, m := range MetricsOfArity(arity) {
			mm := &meas.Metrics[m]
			mm.PercentWithinArityRaw = safeDiv(float64(mm.RawSum), totalRaw)
			mm.PercentWithinArityWeighted = safeDiv(mm.WeightedSum, totalWeighted)
		}
	}
}

// ApplyGlobalPercentages fills in the two global percentages for every
// metric using idx's per-arity table sums, the open-question resolution in
// DESIGN.md #1 (the denominator is always the loaded frequency index's own
// sum for that arity, never a documentation constant).
func ApplyGlobalPercentages(meas *Measurement, idx *FrequencyIndex) {
	for _, m := range AllMetrics() {
		mm := &meas.Metrics[m]
		den := float64(idx.TableSum(m.Arity()))
		mm.PercentGlobalRaw = safeDiv(float64(mm.RawSum), den)
		mm.PercentGlobalWeighted = safeDiv(mm.WeightedSum, den)
	}
}

package perky

import "time"

// Metadata is the final record C4 emits on completion (section 4.4).
type Metadata struct {
	TotalPermutations    uint64
	Elapsed              time.Duration
	Efficiency           float64 // Elapsed / TotalPermutations
	Goal                 Goal
	Metric               Metric
	Weight               Weight
	Score                float64 // best retained score
	TotalRecords         int
	TotalUniqueRecords   int
	TotalSelectedRecords int
	Partial              bool
}

// Sink is the progress/metadata interface C4 calls into (C7). The CLI
// collaborator implements it to render a progress bar and final summary;
// the core never formats text itself.
type Sink interface {
	OnProgress(done, total uint64, elapsed time.Duration)
	OnComplete(meta Metadata)
}

// NopSink discards all progress/metadata events. Used when the caller
// doesn't want reporting (e.g. library callers of Permute, or tests).
type NopSink struct{}

func (NopSink) OnProgress(done, total uint64, elapsed time.Duration) {}
func (NopSink) OnComplete(meta Metadata)                             {}

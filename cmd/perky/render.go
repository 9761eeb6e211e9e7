package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	pk "github.com/csmclaren/perky/internal/perky"
)

// stderrSink prints a single-line progress update to stderr and a final
// metadata line on completion. It never touches stdout, which is reserved
// for record output (section 6.5).
type stderrSink struct {
	w      io.Writer
	style  string
	silent bool
}

func newStderrSink(w io.Writer, style string) *stderrSink {
	return &stderrSink{w: w, style: style}
}

func (s *stderrSink) OnProgress(done, total uint64, elapsed time.Duration) {
	if s.silent {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(done) / float64(total)
	}
	pk.MustFprintf(s.w, "\rperky: %s / %s (%.1f%%) elapsed %s",
		Comma(done), Comma(total), pct, elapsed.Round(time.Millisecond))
}

func (s *stderrSink) OnComplete(meta pk.Metadata) {
	if s.silent {
		return
	}
	pk.MustFprintf(s.w, "\rperky: done. %s permutations in %s (%s/permutation). best %s=%.6g%s\n",
		Comma(meta.TotalPermutations), meta.Elapsed.Round(time.Millisecond),
		time.Duration(meta.Efficiency).String(), meta.Metric, meta.Score,
		pk.IfThen(meta.Partial, " (partial, cancelled)", ""))
}

// Comma renders an unsigned integer with thousands separators.
func Comma(v uint64) string {
	s := fmt.Sprintf("%d", v)
	n := len(s)
	if n <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

type renderOptions struct {
	format          string // text or json
	printSummaries  bool
	printPerc       bool
	printMetadata   bool
	printDetailsFor map[pk.Metric]bool
	weight          pk.Weight
	style           string
}

// jsonlMetadata and jsonlRecord are the two line shapes of JSON Lines output
// (section 6.5): the first line (if printed) is metadata, every subsequent
// line is one record.
type jsonlMetadata struct {
	Type                 string  `json:"type"`
	TotalPermutations    uint64  `json:"total_permutations"`
	ElapsedMS            int64   `json:"elapsed_ms"`
	Goal                 string  `json:"goal"`
	Metric               string  `json:"metric"`
	Weight               string  `json:"weight"`
	Score                float64 `json:"score"`
	TotalRecords         int     `json:"total_records"`
	TotalUniqueRecords   int     `json:"total_unique_records"`
	TotalSelectedRecords int     `json:"total_selected_records"`
	Partial              bool    `json:"partial"`
}

type jsonlMetricSummary struct {
	Metric                     string  `json:"metric"`
	RawSum                     uint64  `json:"raw_sum"`
	WeightedSum                float64 `json:"weighted_sum"`
	PercentWithinArityRaw      float64 `json:"percent_within_arity_raw,omitempty"`
	PercentWithinArityWeighted float64 `json:"percent_within_arity_weighted,omitempty"`
	PercentGlobalRaw           float64 `json:"percent_global_raw,omitempty"`
	PercentGlobalWeighted      float64 `json:"percent_global_weighted,omitempty"`
}

type jsonlRecord struct {
	Type      string               `json:"type"`
	KeyTable  [][]string           `json:"key_table"`
	Score     float64              `json:"score,omitempty"`
	Summaries []jsonlMetricSummary `json:"summaries,omitempty"`
}

func keyTableRows(kt *pk.KeyTable) [][]string {
	rows := make([][]string, pk.GridRows)
	for r := 0; r < pk.GridRows; r++ {
		row := make([]string, pk.GridCols)
		for c := 0; c < pk.GridCols; c++ {
			cell := kt.Cells[r][c]
			switch cell.Kind {
			case pk.KeyChar:
				row[c] = string(cell.Char)
			default:
				row[c] = ""
			}
		}
		rows[r] = row
	}
	return rows
}

func metricSummaries(meas *pk.Measurement, opts renderOptions) []jsonlMetricSummary {
	var out []jsonlMetricSummary
	for _, m := range pk.AllMetrics() {
		mm := meas.Metrics[m]
		s := jsonlMetricSummary{Metric: m.String(), RawSum: mm.RawSum, WeightedSum: mm.WeightedSum}
		if opts.printPerc {
			s.PercentWithinArityRaw = mm.PercentWithinArityRaw
			s.PercentWithinArityWeighted = mm.PercentWithinArityWeighted
			s.PercentGlobalRaw = mm.PercentGlobalRaw
			s.PercentGlobalWeighted = mm.PercentGlobalWeighted
		}
		out = append(out, s)
	}
	return out
}

// RenderJSONL writes JSON Lines output: an optional metadata line followed
// by one record per line.
func RenderJSONL(w io.Writer, meta *pk.Metadata, records []pk.ScoredRecord, opts renderOptions) error {
	enc := json.NewEncoder(w)
	if opts.printMetadata && meta != nil {
		line := jsonlMetadata{
			Type: "metadata", TotalPermutations: meta.TotalPermutations,
			ElapsedMS: meta.Elapsed.Milliseconds(), Goal: goalName(meta.Goal),
			Metric: meta.Metric.String(), Weight: weightName(meta.Weight), Score: meta.Score,
			TotalRecords: meta.TotalRecords, TotalUniqueRecords: meta.TotalUniqueRecords,
			TotalSelectedRecords: meta.TotalSelectedRecords, Partial: meta.Partial,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	for _, r := range records {
		line := jsonlRecord{Type: "record", KeyTable: keyTableRows(r.KeyTable)}
		if opts.printSummaries {
			line.Summaries = metricSummaries(r.Measurement, opts)
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// RenderText writes a human-readable table of records, one go-pretty table
// per record when summaries are requested, matching the teacher's rounded
// table style.
func RenderText(w io.Writer, meta *pk.Metadata, records []pk.ScoredRecord, opts renderOptions) error {
	if opts.printMetadata && meta != nil {
		pk.MustFprintf(w, "metric=%s weight=%s goal=%s permutations=%s elapsed=%s score=%.6g%s\n\n",
			meta.Metric, weightName(meta.Weight), goalName(meta.Goal), Comma(meta.TotalPermutations),
			meta.Elapsed.Round(time.Millisecond), meta.Score, pk.IfThen(meta.Partial, " (partial)", ""))
	}

	for i, r := range records {
		pk.MustFprintf(w, "--- record %d ---\n", i)
		pk.MustFprintln(w, renderKeyTableGrid(r.KeyTable))
		if opts.printSummaries {
			pk.MustFprintln(w, renderSummaryTable(r.Measurement, opts))
		}
		for m := range opts.printDetailsFor {
			pk.MustFprintln(w, renderDetailTable(m, r.Measurement))
		}
		pk.MustFprintln(w)
	}
	return nil
}

func renderKeyTableGrid(kt *pk.KeyTable) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Box.PaddingLeft = ""
	tw.Style().Box.PaddingRight = ""
	for r := 0; r < pk.GridRows; r++ {
		empty := true
		row := make(table.Row, pk.GridCols)
		for c := 0; c < pk.GridCols; c++ {
			cell := kt.Cells[r][c]
			if cell.Kind == pk.KeyChar {
				row[c] = string(cell.Char)
				empty = false
			} else {
				row[c] = " "
			}
		}
		if !empty {
			tw.AppendRow(row)
		}
	}
	return tw.Render()
}

func renderSummaryTable(meas *pk.Measurement, opts renderOptions) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Title.Align = text.AlignCenter
	header := table.Row{"metric", "raw_sum", "weighted_sum"}
	if opts.printPerc {
		header = append(header, "%within_raw", "%within_wt", "%global_raw", "%global_wt")
	}
	tw.AppendHeader(header)
	for _, m := range pk.AllMetrics() {
		mm := meas.Metrics[m]
		row := table.Row{m.String(), Comma(mm.RawSum), fmt.Sprintf("%.2f", mm.WeightedSum)}
		if opts.printPerc {
			row = append(row,
				fmt.Sprintf("%.3f%%", mm.PercentWithinArityRaw*100),
				fmt.Sprintf("%.3f%%", mm.PercentWithinArityWeighted*100),
				fmt.Sprintf("%.4f%%", mm.PercentGlobalRaw*100),
				fmt.Sprintf("%.4f%%", mm.PercentGlobalWeighted*100))
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}

func renderDetailTable(m pk.Metric, meas *pk.Measurement) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"n-gram", "count", "weighted", "cum_count", "%raw", "%weighted"})
	mm := meas.Metrics[m]
	for _, d := range mm.Details {
		tw.AppendRow(table.Row{
			fmt.Sprintf("%q", d.NGram), Comma(d.Count), fmt.Sprintf("%.2f", d.Weighted),
			Comma(d.CumulativeCount), fmt.Sprintf("%.3f%%", d.PercentRaw*100), fmt.Sprintf("%.3f%%", d.PercentWeighted*100),
		})
	}
	return tw.Render()
}

func goalName(g pk.Goal) string {
	if g == pk.GoalMax {
		return "max"
	}
	return "min"
}

func weightName(w pk.Weight) string {
	if w == pk.WeightEffort {
		return "effort"
	}
	return "raw"
}

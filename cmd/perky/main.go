// Command perky scores and searches keyboard layouts against n-gram
// frequency tables, per the CLI surface in section 6.4.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	pk "github.com/csmclaren/perky/internal/perky"
)

func main() {
	app := &cli.App{
		Name:   "perky",
		Usage:  "score and search keyboard layouts for ergonomic n-gram metrics",
		Flags:  appFlags,
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "perky:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor distinguishes input validation failures by error kind
// (section 6.5, 7). Every kind currently maps to a distinct non-zero code;
// callers scripting against perky can match on these.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *pk.SchemaError:
		return 2
	case *pk.StructuralError:
		return 3
	case *pk.TableError:
		return 4
	case *pk.ArgumentError:
		return 5
	case *pk.FilterError:
		return 6
	case *pk.Cancelled:
		return 7
	default:
		return 1
	}
}

func run(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	lt, err := pk.NewLayoutTableFromFile(c.String("layout"))
	if err != nil {
		return err
	}
	kt, err := pk.NewKeyTableFromFile(c.String("key"))
	if err != nil {
		return err
	}
	if err := kt.ValidateAgainst(lt); err != nil {
		return err
	}

	idx, err := loadFrequencyIndex(c)
	if err != nil {
		return err
	}

	plan := pk.BuildGeometryPlan(lt)

	metric, err := pk.MetricFromName(c.String("metric"))
	if err != nil {
		return err
	}
	weight, err := pk.WeightFromString(c.String("weight"))
	if err != nil {
		return err
	}
	goal := pk.DefaultGoal(metric)
	if c.String("goal") != "" {
		goal, err = pk.GoalFromString(c.String("goal"))
		if err != nil {
			return err
		}
	}

	charSets, err := parseCharSets(c)
	if err != nil {
		return err
	}

	style := c.String("style")
	sink := pk.Sink(pk.NopSink{})
	var stderrProgress *stderrSink
	if style != "never" {
		stderrProgress = newStderrSink(os.Stderr, style)
		sink = stderrProgress
	}

	var records []pk.CandidateRecord
	var meta pk.Metadata

	if len(kt.Regions()) == 0 {
		meas := pk.Score(plan, kt, idx, detailMetricSet(c))
		records = []pk.CandidateRecord{{KeyTable: kt, Score: meas.Sum(metric, weight)}}
		meta = pk.Metadata{TotalPermutations: 1, Metric: metric, Weight: weight, Goal: goal, Score: records[0].Score, TotalRecords: 1}
	} else {
		result, err := pk.Permute(ctx, pk.PermuteParams{
			Plan: plan, Index: idx, KeyTable: kt, CharSets: charSets,
			Metric: metric, Weight: weight, Goal: goal,
			Truncate: c.Int("truncate"), Threads: c.Int("threads"), SleepNS: c.Int64("sleep-ns"),
			Sink: sink,
		})
		if err != nil {
			return err
		}
		records = result.Records
		meta = result.Metadata
	}

	scored := pk.Reify(plan, idx, records, detailMetricSet(c))
	meta.TotalRecords = len(scored)
	scored = pk.Dedup(scored)
	meta.TotalUniqueRecords = len(scored)

	sortKeys, err := parseSortKeys(c, weight)
	if err != nil {
		return err
	}
	pk.SortRecords(scored, sortKeys)

	filters, err := parseFilters(c)
	if err != nil {
		return err
	}
	scored = pk.ApplyFilters(scored, filters, weight)

	scored, err = pk.Select(scored, c.Int("max-records"), c.IsSet("index"), c.Int("index"))
	if err != nil {
		return err
	}
	meta.TotalSelectedRecords = len(scored)

	opts := renderOptions{
		format: c.String("format"), printSummaries: c.Bool("print-summaries"),
		printPerc: c.Bool("print-perc"), printMetadata: c.Bool("print-metadata"),
		printDetailsFor: detailMetricSet(c), weight: weight, style: style,
	}
	switch opts.format {
	case "json":
		return RenderJSONL(os.Stdout, &meta, scored, opts)
	case "text":
		return RenderText(os.Stdout, &meta, scored, opts)
	default:
		return &pk.ArgumentError{Context: "format", Err: fmt.Errorf("must be 'text' or 'json', got %q", opts.format)}
	}
}

func loadFrequencyIndex(c *cli.Context) (*pk.FrequencyIndex, error) {
	if corpus := c.String("corpus"); corpus != "" {
		uni, bi, tri, err := pk.BuildNGramTablesFromText(corpus)
		if err != nil {
			return nil, err
		}
		return pk.NewFrequencyIndex(uni, bi, tri), nil
	}
	var uni, bi, tri *pk.NGramTable
	var err error
	if p := c.String("uni"); p != "" {
		if uni, err = pk.LoadNGramTableCached(p, 1); err != nil {
			return nil, err
		}
	}
	if p := c.String("bi"); p != "" {
		if bi, err = pk.LoadNGramTableCached(p, 2); err != nil {
			return nil, err
		}
	}
	if p := c.String("tri"); p != "" {
		if tri, err = pk.LoadNGramTableCached(p, 3); err != nil {
			return nil, err
		}
	}
	return pk.NewFrequencyIndex(uni, bi, tri), nil
}

func parseCharSets(c *cli.Context) (map[int][]byte, error) {
	out := make(map[int][]byte)
	for tag, flag := range map[int]string{1: "1", 2: "2", 3: "3"} {
		s := c.String(flag)
		if s == "" {
			continue
		}
		chars := []byte(s)
		for _, b := range chars {
			if b > 0x7F || pk.IsReservedByte(b) {
				return nil, &pk.StructuralError{Context: fmt.Sprintf("region %d character set", tag), Err: fmt.Errorf("invalid character byte 0x%02x", b)}
			}
		}
		out[tag] = chars
	}
	return out, nil
}

func detailMetricSet(c *cli.Context) map[pk.Metric]bool {
	names := c.StringSlice("print-details")
	if len(names) == 0 {
		return nil
	}
	out := make(map[pk.Metric]bool, len(names))
	for _, n := range names {
		if m, err := pk.MetricFromName(n); err == nil {
			out[m] = true
		}
	}
	return out
}

func parseSortKeys(c *cli.Context, weight pk.Weight) ([]pk.SortKey, error) {
	var keys []pk.SortKey
	for _, name := range c.StringSlice("sort-asc") {
		m, err := pk.MetricFromName(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk.SortKey{Metric: m, Weight: weight, Dir: pk.GoalMin})
	}
	for _, name := range c.StringSlice("sort-desc") {
		m, err := pk.MetricFromName(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk.SortKey{Metric: m, Weight: weight, Dir: pk.GoalMax})
	}
	return keys, nil
}

func parseFilters(c *cli.Context) ([]pk.FilterExpr, error) {
	var out []pk.FilterExpr
	for _, s := range c.StringSlice("filter") {
		expr, err := pk.ParseFilter(s)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

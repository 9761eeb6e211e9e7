package main

import "github.com/urfave/cli/v2"

// appFlags is the full CLI surface from section 6.4, defaults as specified
// there. Flags are grouped roughly by the input they feed.
var appFlags = []cli.Flag{
	&cli.StringFlag{Name: "layout", Aliases: []string{"l"}, Usage: "layout table JSON file", Required: true},
	&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "key table JSON file", Required: true},
	&cli.StringFlag{Name: "uni", Aliases: []string{"u"}, Usage: "unigram TSV file"},
	&cli.StringFlag{Name: "bi", Aliases: []string{"b"}, Usage: "bigram TSV file"},
	&cli.StringFlag{Name: "tri", Aliases: []string{"t"}, Usage: "trigram TSV file"},
	&cli.StringFlag{Name: "corpus", Usage: "plain text corpus file, used instead of -u/-b/-t to build n-gram tables from raw text"},

	&cli.StringFlag{Name: "1", Usage: "character set for placeholder region 1"},
	&cli.StringFlag{Name: "2", Usage: "character set for placeholder region 2"},
	&cli.StringFlag{Name: "3", Usage: "character set for placeholder region 3"},

	&cli.StringFlag{Name: "metric", Aliases: []string{"m"}, Usage: "selection metric", Value: "sfb"},
	&cli.StringFlag{Name: "goal", Aliases: []string{"g"}, Usage: "optimization direction: min or max (defaults to the metric's natural direction)"},
	&cli.StringFlag{Name: "weight", Aliases: []string{"w"}, Usage: "raw or effort", Value: "raw"},

	&cli.IntFlag{Name: "truncate", Usage: "maximum retained candidates during search", Value: 10000},
	&cli.IntFlag{Name: "threads", Usage: "worker count (0 = logical CPUs)"},
	&cli.Int64Flag{Name: "sleep-ns", Usage: "nanoseconds to sleep between batches, for testing cancellation"},

	&cli.StringSliceFlag{Name: "sort-asc", Usage: "ascending sort keys, in priority order"},
	&cli.StringSliceFlag{Name: "sort-desc", Usage: "descending sort keys, in priority order"},
	&cli.StringSliceFlag{Name: "filter", Usage: "filter expression, AND-combined across repeats"},

	&cli.IntFlag{Name: "max-records", Usage: "truncate the final record list (must be <= the record count)", Value: -1},
	&cli.IntFlag{Name: "index", Usage: "select a single record by index (0-based; negative counts from the end)"},

	&cli.StringSliceFlag{Name: "print-details", Usage: "emit per-tuple detail rows for these metrics"},
	&cli.BoolFlag{Name: "print-summaries", Usage: "print per-metric summary rows", Value: true},
	&cli.BoolFlag{Name: "print-perc", Usage: "include percentages in summary rows", Value: true},
	&cli.BoolFlag{Name: "print-metadata", Usage: "print search metadata", Value: true},

	&cli.StringFlag{Name: "format", Usage: "text or json", Value: "text"},
	&cli.StringFlag{Name: "style", Usage: "auto, always, or never", Value: "auto"},
}

package cli

import "flag"

type cliOptions struct {
	configPath    string
	write         bool
	check         bool
	once          bool
	ui            bool
	deps          bool
	history       bool
	since         string
	historyWindow string
	historyTSV    string
	historyJSON   string
	queryRuns     string
	limit         int
	jsonOut       bool
	tsvOut        bool
	metricsAddr   string
	verbose       bool
	version       bool
	args          []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("usetidy", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: discover ./usetidy.toml)")
	fs.BoolVar(&opts.write, "write", false, "Rewrite files in place instead of reporting")
	fs.BoolVar(&opts.check, "check", false, "Verify formatting; exit 3 when any file would change")
	fs.BoolVar(&opts.once, "once", false, "Run a single organize pass and exit")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.deps, "deps", false, "Print workspace status and the manifest dependency set, then exit")
	fs.BoolVar(&opts.history, "history", false, "Print recorded runs and a trend summary (requires db.enabled)")
	fs.StringVar(&opts.since, "since", "", "Include runs at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-window duration for trend summaries (requires --history)")
	fs.StringVar(&opts.historyTSV, "history-tsv", "", "Write trend report TSV to this path (requires --history)")
	fs.StringVar(&opts.historyJSON, "history-json", "", "Write trend report JSON to this path (requires --history)")
	fs.StringVar(&opts.queryRuns, "query-runs", "", "Filter recorded runs (example: SELECT runs WHERE mode='check' AND files_changed>0)")
	fs.IntVar(&opts.limit, "limit", 0, "Maximum rows for --history and --query-runs output (0 = all)")
	fs.BoolVar(&opts.jsonOut, "json", false, "Render reports as JSON")
	fs.BoolVar(&opts.tsvOut, "tsv", false, "Render reports as TSV")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics and health on this listen address (overrides config)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}

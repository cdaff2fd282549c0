package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "usetidy/internal/core/app"
	"usetidy/internal/core/config"
	"usetidy/internal/core/ports"
	"usetidy/internal/data/history"
	"usetidy/internal/data/query"
	mcpruntime "usetidy/internal/mcp/runtime"
	"usetidy/internal/shared/observability"
	"usetidy/internal/shared/util"
	"usetidy/internal/shared/version"
	"usetidy/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("usetidy %s\n", version.Version)
		return 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to detect working directory: %v\n", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	if err := validateModeCompatibility(opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve runtime paths: %v\n", err)
		return 1
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose, paths.LogFile)
	defer cleanupLogs()

	if err := runMCPModeIfEnabled(cfg, cfgPath); err != nil {
		slog.Error("failed to start MCP mode", "error", err)
		return 1
	}
	if cfg.MCP.Enabled {
		return 0
	}

	svc, app, err := initializeOrganize(cfg, coreOrganizeFactory{})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() { _ = app.Close(context.Background()) }()

	if stop, code := runDepsCommand(svc, app, opts); stop {
		return code
	}

	trendReport, err := runHistoryMode(svc, cfg, opts)
	if err != nil {
		slog.Error("history mode failed", "error", err)
		return 1
	}

	if stop, code := runQueryCommand(svc, cfg, opts); stop {
		return code
	}
	if stop, code := runPrintCommand(svc, opts); stop {
		return code
	}

	res, err := svc.RunOrganize(context.Background(), ports.OrganizeRequest{
		Write: opts.write,
		Check: opts.check,
	})
	if err != nil {
		slog.Error("organize pass failed", "error", err)
		return 1
	}

	if !opts.ui {
		if code := printRunReport(res, opts); code != 0 {
			return code
		}
	}

	if opts.check {
		if res.FilesChanged > 0 {
			return 3
		}
		return 0
	}
	if opts.once {
		return 0
	}

	// In UI mode watch passes stay dry runs; the user applies from the TUI.
	app.ApplyOnWatch = !opts.ui

	if cfg.Tracing.Endpoint != "" {
		shutdownTracing, err := observability.InitTracing(context.Background(),
			cfg.Tracing.Endpoint, version.Version, cfg.Tracing.Insecure)
		if err != nil {
			slog.Error("failed to init tracing", "error", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	watch := svc.WatchService()
	if err := watch.Start(context.Background()); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	// Resident modes watch the config file too. A reload applies the
	// debounce window right away; wiring-bound settings still need a restart.
	if cfgPath != "" {
		cfgWatcher := config.NewWatcher(cfgPath, slog.Default(), func(next *config.Config) {
			app.SetWatchDebounce(next.Watch.Debounce)
			slog.Info("config reloaded", "debounce", next.Watch.Debounce,
				"note", "storage and path changes need a restart")
		})
		if err := cfgWatcher.Start(context.Background()); err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			defer cfgWatcher.Stop()
		}
	}

	if addr := resolveMetricsAddr(opts, cfg); addr != "" {
		obs := NewObservabilityServer(addr, coreapp.NewHealthService(app))
		if err := obs.Start(context.Background()); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obs.Stop(ctx)
		}()
	}

	if opts.ui {
		if err := runUI(svc, trendReport); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	select {}
}

// runDepsCommand prints workspace status plus the dependency table.
func runDepsCommand(svc ports.OrganizeService, app *coreapp.App, opts cliOptions) (bool, int) {
	if !opts.deps {
		return false, 0
	}

	status, err := svc.Status(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return true, 1
	}
	fmt.Print(report.RenderStatusText(status))

	if app.Deps == nil {
		fmt.Printf("  no manifest found at %s\n", app.Paths.ManifestPath)
		return true, 0
	}
	for _, name := range app.Deps.Names() {
		if class, ok := app.Deps.Provenance(name); ok {
			fmt.Printf("    %-24s %s\n", name, class)
		}
	}
	return true, 0
}

// runQueryCommand answers --query-runs against the recorded run history.
func runQueryCommand(svc ports.OrganizeService, cfg *config.Config, opts cliOptions) (bool, int) {
	if opts.queryRuns == "" {
		return false, 0
	}
	if !cfg.DB.Enabled {
		fmt.Fprintln(os.Stderr, "--query-runs requires db.enabled=true in config")
		return true, 1
	}

	rows, err := svc.QueryService().RunQuery(context.Background(), opts.queryRuns, opts.limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return true, 1
	}

	switch {
	case opts.jsonOut:
		raw, err := report.RenderRunsJSON(rows)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		fmt.Printf("%s\n", raw)
	case opts.tsvOut:
		raw, err := report.RenderRunsTSV(rows)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		fmt.Print(string(raw))
	default:
		fmt.Print(report.RenderRunsText(rows))
	}
	return true, 0
}

// runPrintCommand handles the classic formatter invocation: one file, one
// shot, no write. The organized content goes to stdout instead of a summary.
func runPrintCommand(svc ports.OrganizeService, opts cliOptions) (bool, int) {
	if !opts.once || opts.write || opts.check || opts.jsonOut || opts.tsvOut || len(opts.args) != 1 {
		return false, 0
	}
	info, err := os.Stat(opts.args[0])
	if err != nil || !info.Mode().IsRegular() {
		return false, 0
	}

	abs, err := filepath.Abs(opts.args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return true, 1
	}
	res, err := svc.OrganizeFile(context.Background(), abs, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return true, 1
	}
	fmt.Print(res.Organized)
	return true, 0
}

func printRunReport(res ports.OrganizeResult, opts cliOptions) int {
	switch {
	case opts.jsonOut:
		raw, err := report.RenderRunJSON(res)
		if err != nil {
			slog.Error("failed to render run report", "error", err)
			return 1
		}
		fmt.Printf("%s\n", raw)
	case opts.tsvOut:
		raw, err := report.RenderRunTSV(res)
		if err != nil {
			slog.Error("failed to render run report", "error", err)
			return 1
		}
		fmt.Print(string(raw))
	default:
		fmt.Print(report.RenderRunText(res))
	}
	return 0
}

func runHistoryMode(svc ports.OrganizeService, cfg *config.Config, opts cliOptions) (*history.TrendReport, error) {
	if !opts.history {
		return nil, nil
	}
	if !cfg.DB.Enabled {
		return nil, fmt.Errorf("--history requires db.enabled=true in config")
	}

	since, err := parseSince(opts.since)
	if err != nil {
		return nil, err
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	queries := svc.QueryService()

	rows, err := queries.ListRuns(ctx, since, opts.limit)
	if err != nil {
		return nil, err
	}
	fmt.Print(report.RenderRunsText(rows))
	if len(rows) == 0 {
		return nil, nil
	}

	trend, err := queries.TrendReport(ctx, since, window)
	if err != nil {
		return nil, err
	}

	fmt.Printf(
		"History: %d runs from %s to %s\n",
		trend.RunCount,
		trend.Since.Format("2006-01-02 15:04:05"),
		trend.Until.Format("2006-01-02 15:04:05"),
	)
	if len(trend.Points) > 0 {
		latest := trend.Points[len(trend.Points)-1]
		fmt.Printf(
			"Trend latest: changed=%d (%+d), failed=%d (%+d), parse errors=%d (%+d)\n",
			latest.FilesChanged,
			latest.DeltaChanged,
			latest.FilesFailed,
			latest.DeltaFailed,
			latest.ParseErrors,
			latest.DeltaParseErrors,
		)
	}

	if opts.historyTSV != "" {
		tsv, err := report.RenderTrendTSV(trend)
		if err != nil {
			return nil, fmt.Errorf("render trend TSV: %w", err)
		}
		if err := writeBytes(opts.historyTSV, tsv); err != nil {
			return nil, fmt.Errorf("write trend TSV %q: %w", opts.historyTSV, err)
		}
	}
	if opts.historyJSON != "" {
		raw, err := report.RenderTrendJSON(trend)
		if err != nil {
			return nil, fmt.Errorf("render trend JSON: %w", err)
		}
		if err := writeBytes(opts.historyJSON, raw); err != nil {
			return nil, fmt.Errorf("write trend JSON %q: %w", opts.historyJSON, err)
		}
	}

	return &trend, nil
}

func loadConfig(path string) (*config.Config, string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = config.DiscoverPath()
	}
	cfg, err := config.LoadOrDefault(trimmed)
	if err != nil {
		return nil, "", err
	}
	return cfg, trimmed, nil
}

func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	modeCount := 0
	if opts.deps {
		modeCount++
	}
	if opts.check {
		modeCount++
	}
	if opts.queryRuns != "" {
		modeCount++
	}
	if modeCount > 1 {
		return fmt.Errorf("--deps, --check, and --query-runs cannot be combined")
	}
	if opts.check && opts.write {
		return fmt.Errorf("--check and --write cannot be combined")
	}
	if opts.jsonOut && opts.tsvOut {
		return fmt.Errorf("--json and --tsv cannot be combined")
	}

	if (opts.historyTSV != "" || opts.historyJSON != "") && !opts.history {
		return fmt.Errorf("--history-tsv/--history-json require --history")
	}
	if opts.history {
		if _, err := parseHistoryWindow(opts.historyWindow); err != nil {
			return err
		}
	}
	if _, err := parseSince(opts.since); err != nil {
		return err
	}
	if opts.queryRuns != "" {
		if _, err := query.ParseRQL(opts.queryRuns); err != nil {
			return err
		}
	}
	if opts.limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", opts.limit)
	}

	if len(opts.args) > 0 {
		paths := make([]string, 0, len(opts.args))
		for _, arg := range opts.args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("resolve path %q: %w", arg, err)
			}
			paths = append(paths, abs)
		}
		cfg.Scan.Paths = paths
	}
	return nil
}

func validateModeCompatibility(opts cliOptions, cfg *config.Config) error {
	if !cfg.MCP.Enabled {
		return nil
	}
	if opts.ui || opts.once || opts.write || opts.check || opts.deps || opts.history ||
		opts.queryRuns != "" || len(opts.args) > 0 {
		return fmt.Errorf("mcp.enabled=true cannot be combined with CLI modes or positional path arguments")
	}
	return nil
}

func runMCPModeIfEnabled(cfg *config.Config, configPath string) error {
	return runMCPModeIfEnabledWithFactory(cfg, configPath, coreOrganizeFactory{})
}

func runMCPModeIfEnabledWithFactory(cfg *config.Config, configPath string, factory organizeFactory) error {
	if !cfg.MCP.Enabled {
		return nil
	}

	// MCP stdio requires stdout to be protocol-only JSON.
	// Route logs to stderr before any startup work can emit logs.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	svc, app, err := initializeOrganize(cfg, factory)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if app != nil {
		defer func() { _ = app.Close(context.Background()) }()
	}

	server, err := mcpruntime.Build(cfg, mcpruntime.Dependencies{
		Organize:   svc,
		Logger:     slog.Default(),
		ConfigPath: configPath,
	})
	if err != nil {
		return fmt.Errorf("build MCP runtime: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--history-window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--history-window must be > 0, got %q", value)
	}
	return d, nil
}

func resolveMetricsAddr(opts cliOptions, cfg *config.Config) string {
	if addr := strings.TrimSpace(opts.metricsAddr); addr != "" {
		return addr
	}
	return strings.TrimSpace(cfg.Metrics.Addr)
}

func writeBytes(path string, data []byte) error {
	return util.WriteFileWithDirs(path, data, 0o644)
}

func configureLogging(uiMode, verbose bool, logPath string) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode && logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

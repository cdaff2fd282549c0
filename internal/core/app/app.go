// Package app wires the organize engine to its collaborators: config,
// the manifest dependency set, the history store, and the filesystem
// watcher. Driving adapters reach it through the ports facades.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"usetidy/internal/core/config"
	"usetidy/internal/core/errors"
	"usetidy/internal/core/ports"
	"usetidy/internal/core/watcher"
	"usetidy/internal/data/history"
	"usetidy/internal/engine/manifest"
	"usetidy/internal/shared/observability"
	"usetidy/internal/shared/util"
)

type App struct {
	Config  *config.Config
	Paths   config.ResolvedPaths
	Deps    *manifest.DependencySet
	History *history.Store

	// ApplyOnWatch controls whether watch-triggered passes rewrite files
	// in place. The terminal UI turns it off so edits stay previews until
	// the user applies them.
	ApplyOnWatch bool

	logger *slog.Logger

	include []glob.Glob
	exclude []glob.Glob

	updateMu sync.RWMutex
	onUpdate func(ports.WatchUpdate)

	lastMu     sync.RWMutex
	lastRun    *ports.OrganizeResult
	lastRunAt  time.Time
	lastUpdate ports.WatchUpdate

	watchMu       sync.Mutex
	activeWatcher *watcher.Watcher
	jobs          ports.OrganizeQueue
	limiter       *util.Limiter
	workerCancel  context.CancelFunc
	workerDone    chan struct{}
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, err
	}

	include, err := compileGlobs(cfg.Scan.Include, "include")
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(cfg.Scan.Exclude, "exclude")
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:       cfg,
		Paths:        paths,
		ApplyOnWatch: true,
		logger:       logger,
		include:      include,
		exclude:      exclude,
	}

	if _, err := os.Stat(paths.ManifestPath); err == nil {
		deps, err := manifest.Load(paths.ManifestPath)
		if err != nil {
			// A broken manifest only costs dependency provenance; unknown
			// roots land in the external group either way.
			logger.Warn("failed to read manifest", "path", paths.ManifestPath, "error", err)
		} else {
			a.Deps = deps
			logger.Debug("manifest loaded", "path", paths.ManifestPath, "dependencies", deps.Len())
		}
	}

	if cfg.DB.Enabled {
		store, err := history.Open(paths.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.History = store
	}

	return a, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := a.stopWatcher(ctx); err != nil {
		return err
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			return err
		}
		a.History = nil
	}
	return nil
}

func (a *App) SetUpdateHandler(handler func(ports.WatchUpdate)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(update ports.WatchUpdate) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

func (a *App) CurrentUpdate() ports.WatchUpdate {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	return a.lastUpdate
}

func (a *App) LastRun() *ports.OrganizeResult {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	if a.lastRun == nil {
		return nil
	}
	res := *a.lastRun
	return &res
}

func (a *App) setLastRun(res ports.OrganizeResult) {
	a.lastMu.Lock()
	a.lastRun = &res
	a.lastRunAt = time.Now().UTC()
	a.lastMu.Unlock()
}

func (a *App) setLastUpdate(update ports.WatchUpdate) {
	a.lastMu.Lock()
	a.lastUpdate = update
	a.lastMu.Unlock()
}

// runOrganize is the full pass shared by the CLI, the watch worker, and the
// MCP scan tool: resolve roots, collect files, organize each, record the run.
func (a *App) runOrganize(ctx context.Context, paths []string, write bool, mode string) (ports.OrganizeResult, error) {
	start := time.Now()

	roots := a.scanRoots(paths)
	files, err := a.ScanTree(roots)
	if err != nil {
		return ports.OrganizeResult{}, errors.AddContext(err, errors.CtxOperation, "scan_tree")
	}

	res := ports.OrganizeResult{
		RunID:        uuid.NewString(),
		Mode:         mode,
		FilesScanned: len(files),
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		fr, err := a.organizeOne(path, write, organizeFeeds{})
		if err != nil {
			a.logger.Warn("failed to organize file", "path", path, "error", err)
			res.FilesFailed++
			res.Failed = append(res.Failed, path)
			continue
		}

		res.StatementsSeen += fr.Statements
		res.StatementsOut += fr.StatementsOut
		res.ParseErrors += fr.ParseErrors
		if fr.Changed {
			res.FilesChanged++
			res.Changed = append(res.Changed, path)
		} else {
			res.FilesUnchanged++
		}

		// Content fields stay out of the aggregate; previews are
		// regenerated per file on demand.
		fr.Organized = ""
		fr.Block = ""
		res.Files = append(res.Files, fr)
	}

	res.Duration = time.Since(start)
	observability.RunDuration.WithLabelValues(mode).Observe(res.Duration.Seconds())

	a.recordRun(res)
	a.setLastRun(res)
	return res, nil
}

func (a *App) recordRun(res ports.OrganizeResult) {
	if a.History == nil {
		return
	}
	run := history.Run{
		ID:             res.RunID,
		Timestamp:      time.Now().UTC(),
		Mode:           res.Mode,
		FilesScanned:   res.FilesScanned,
		FilesChanged:   res.FilesChanged,
		FilesUnchanged: res.FilesUnchanged,
		FilesFailed:    res.FilesFailed,
		StatementsSeen: res.StatementsSeen,
		StatementsOut:  res.StatementsOut,
		ParseErrors:    res.ParseErrors,
		DurationMS:     res.Duration.Milliseconds(),
	}
	if err := a.History.SaveRun(run); err != nil {
		a.logger.Warn("failed to record run history", "run", res.RunID, "error", err)
	}
}

// scanRoots resolves the requested paths, or the configured scan paths when
// none are given, into absolute deduplicated roots.
func (a *App) scanRoots(override []string) []string {
	if len(override) > 0 {
		return normalizeScanPaths(override)
	}
	resolved := make([]string, 0, len(a.Config.Scan.Paths))
	for _, p := range a.Config.Scan.Paths {
		resolved = append(resolved, config.ResolveRelative(a.Paths.ProjectRoot, p))
	}
	return normalizeScanPaths(resolved)
}

func normalizeScanPaths(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		abs := trimmed
		if absPath, err := filepath.Abs(trimmed); err == nil {
			abs = absPath
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		cleaned = append(cleaned, abs)
	}
	sort.Strings(cleaned)
	return cleaned
}

// StatusSnapshot reports workspace state for the status surfaces.
func (a *App) StatusSnapshot() ports.StatusResult {
	res := ports.StatusResult{
		ProjectRoot:  a.Paths.ProjectRoot,
		ManifestPath: a.Paths.ManifestPath,
	}
	if a.Deps != nil {
		res.Dependencies = a.Deps.Names()
	}
	if a.History != nil {
		if runs, err := a.History.LoadRuns(time.Time{}); err == nil && len(runs) > 0 {
			last := runs[len(runs)-1]
			res.LastRun = &last
		}
	} else if last := a.LastRun(); last != nil {
		a.lastMu.RLock()
		at := a.lastRunAt
		a.lastMu.RUnlock()
		res.LastRun = &history.Run{
			ID:             last.RunID,
			Timestamp:      at,
			Mode:           last.Mode,
			FilesScanned:   last.FilesScanned,
			FilesChanged:   last.FilesChanged,
			FilesUnchanged: last.FilesUnchanged,
			FilesFailed:    last.FilesFailed,
			StatementsSeen: last.StatementsSeen,
			StatementsOut:  last.StatementsOut,
			ParseErrors:    last.ParseErrors,
			DurationMS:     last.Duration.Milliseconds(),
		}
	}
	return res
}

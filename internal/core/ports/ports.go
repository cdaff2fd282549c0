package ports

import (
	"context"
	"time"

	"usetidy/internal/data/history"
	"usetidy/internal/data/query"
)

// OrganizeRequest defines one organize pass for driving adapters.
type OrganizeRequest struct {
	// Paths overrides the configured scan paths when non-empty.
	Paths []string
	// Write rewrites changed files in place; otherwise the pass is a dry run.
	Write bool
	// Check suppresses writes and marks the run as a verification pass.
	Check bool
}

// OrganizeResult summarizes a completed organize pass.
type OrganizeResult struct {
	RunID          string
	Mode           string
	FilesScanned   int
	FilesChanged   int
	FilesUnchanged int
	FilesFailed    int
	StatementsSeen int
	StatementsOut  int
	ParseErrors    int
	Duration       time.Duration
	Changed        []string
	Failed         []string
	// Files holds per-file outcomes with the content fields cleared;
	// previews are regenerated on demand via OrganizeFile.
	Files []FileResult
}

// FileResult describes the organize outcome for a single file.
type FileResult struct {
	Path          string
	Changed       bool
	Organized     string
	Block         string
	Statements    int
	StatementsOut int
	ParseErrors   int
}

// UnusedSpan marks a source region an external resolver reported as an
// unused import, in zero-based line/column coordinates.
type UnusedSpan struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// AddSuggestion proposes a missing import by its :: separated path.
// Trait-like suggestions are imported without binding their name.
type AddSuggestion struct {
	Path      string
	TraitLike bool
}

// OrganizeFileRequest organizes one document, optionally consuming
// resolver feeds alongside it.
type OrganizeFileRequest struct {
	Path   string
	Write  bool
	Unused []UnusedSpan
	Add    []AddSuggestion
}

// StatusResult captures current workspace state for driving adapters.
type StatusResult struct {
	Version      string
	ProjectRoot  string
	ManifestPath string
	Dependencies []string
	LastRun      *history.Run
}

// HistoryStore abstracts run persistence for trend/report workflows.
type HistoryStore interface {
	SaveRun(run history.Run) error
	LoadRuns(since time.Time) ([]history.Run, error)
}

// QueryService exposes read-only run query operations for driving adapters.
type QueryService interface {
	ListRuns(ctx context.Context, since time.Time, limit int) ([]query.RunSummary, error)
	RunQuery(ctx context.Context, raw string, limit int) ([]query.RunSummary, error)
	TrendSlice(ctx context.Context, since time.Time, limit int) (query.TrendSlice, error)
	TrendReport(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error)
}

// WatchUpdate contains state emitted to driving adapters after a watch-mode
// reorganize.
type WatchUpdate struct {
	Timestamp time.Time
	Trigger   string
	Result    OrganizeResult
}

// OrganizeJob is one batch of changed files queued for re-organizing in
// watch mode.
type OrganizeJob struct {
	Paths   []string
	Trigger string
}

type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	EnqueueDropped  EnqueueResult = "dropped"
)

// OrganizeQueue buffers organize jobs between the filesystem watcher and
// the worker applying them.
type OrganizeQueue interface {
	Enqueue(job OrganizeJob) EnqueueResult
	DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]OrganizeJob, error)
	Close() error
}

// WatchService exposes watch lifecycle and updates for driving adapters.
type WatchService interface {
	Start(ctx context.Context) error
	CurrentUpdate(ctx context.Context) (WatchUpdate, error)
	Subscribe(ctx context.Context, handler func(WatchUpdate)) error
}

// OrganizeService is the driving-port surface over organize use cases.
type OrganizeService interface {
	RunOrganize(ctx context.Context, req OrganizeRequest) (OrganizeResult, error)
	OrganizeFile(ctx context.Context, path string, write bool) (FileResult, error)
	OrganizeFileWithFeeds(ctx context.Context, req OrganizeFileRequest) (FileResult, error)
	Status(ctx context.Context) (StatusResult, error)
	QueryService() QueryService
	WatchService() WatchService
}

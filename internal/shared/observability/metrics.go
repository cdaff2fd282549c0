package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	OrganizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "usetidy_organize_seconds",
		Help:    "Time spent organizing the imports of a single source file.",
		Buckets: prometheus.DefBuckets,
	})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "usetidy_run_seconds",
		Help:    "Time spent on a whole organize run.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	FilesOrganizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usetidy_files_organized_total",
		Help: "Total number of files rewritten with organized imports.",
	})

	FilesUnchangedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usetidy_files_unchanged_total",
		Help: "Total number of files whose imports were already organized.",
	})

	FilesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usetidy_files_failed_total",
		Help: "Total number of files that could not be organized.",
	})

	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usetidy_parse_errors_total",
		Help: "Total number of import statements skipped as unparsable.",
	})

	MergeConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usetidy_merge_conflicts_total",
		Help: "Total number of alias conflicts resolved while merging imports.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usetidy_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	MCPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usetidy_mcp_requests_total",
		Help: "Total number of MCP tool requests handled.",
	}, []string{"tool"})
)

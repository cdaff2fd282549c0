package history

import "time"

// SchemaVersion tags persisted run rows, independent of DB migrations.
const SchemaVersion = 1

// Run records one completed organize pass over a workspace.
type Run struct {
	ID             string    `json:"id"`
	SchemaVersion  int       `json:"schema_version"`
	Timestamp      time.Time `json:"timestamp"`
	Mode           string    `json:"mode"`
	FilesScanned   int       `json:"files_scanned"`
	FilesChanged   int       `json:"files_changed"`
	FilesUnchanged int       `json:"files_unchanged"`
	FilesFailed    int       `json:"files_failed"`
	StatementsSeen int       `json:"statements_seen"`
	StatementsOut  int       `json:"statements_out"`
	ParseErrors    int       `json:"parse_errors"`
	DurationMS     int64     `json:"duration_ms"`
}

// TrendPoint is one run enriched with deltas against the previous run and
// moving averages over the trend window.
type TrendPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	Mode             string    `json:"mode"`
	FilesScanned     int       `json:"files_scanned"`
	FilesChanged     int       `json:"files_changed"`
	FilesFailed      int       `json:"files_failed"`
	ParseErrors      int       `json:"parse_errors"`
	DurationMS       int64     `json:"duration_ms"`
	DeltaChanged     int       `json:"delta_changed"`
	DeltaFailed      int       `json:"delta_failed"`
	DeltaParseErrors int       `json:"delta_parse_errors"`
	ChangedPct       float64   `json:"changed_pct"`
	AvgChanged       float64   `json:"avg_changed"`
	AvgParseErrors   float64   `json:"avg_parse_errors"`
	WindowHours      float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}

package query

import (
	"time"

	"usetidy/internal/data/history"
)

type RunSummary struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Mode         string    `json:"mode"`
	FilesScanned int       `json:"files_scanned"`
	FilesChanged int       `json:"files_changed"`
	FilesFailed  int       `json:"files_failed"`
	ParseErrors  int       `json:"parse_errors"`
	DurationMS   int64     `json:"duration_ms"`
}

type TrendSlice struct {
	Since    string        `json:"since"`
	Until    string        `json:"until"`
	RunCount int           `json:"run_count"`
	Runs     []history.Run `json:"runs"`
}

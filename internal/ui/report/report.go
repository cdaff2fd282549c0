// Package report renders organize runs and history queries for the CLI:
// human-readable text, JSON for tooling, and TSV for spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"usetidy/internal/core/ports"
)

type runReport struct {
	RunID          string       `json:"run_id"`
	Mode           string       `json:"mode"`
	FilesScanned   int          `json:"files_scanned"`
	FilesChanged   int          `json:"files_changed"`
	FilesUnchanged int          `json:"files_unchanged"`
	FilesFailed    int          `json:"files_failed"`
	StatementsSeen int          `json:"statements_seen"`
	StatementsOut  int          `json:"statements_out"`
	ParseErrors    int          `json:"parse_errors"`
	DurationMS     int64        `json:"duration_ms"`
	Changed        []string     `json:"changed,omitempty"`
	Failed         []string     `json:"failed,omitempty"`
	Files          []fileReport `json:"files,omitempty"`
}

type fileReport struct {
	Path          string `json:"path"`
	Changed       bool   `json:"changed"`
	Statements    int    `json:"statements"`
	StatementsOut int    `json:"statements_out"`
	ParseErrors   int    `json:"parse_errors"`
}

func toRunReport(res ports.OrganizeResult) runReport {
	out := runReport{
		RunID:          res.RunID,
		Mode:           res.Mode,
		FilesScanned:   res.FilesScanned,
		FilesChanged:   res.FilesChanged,
		FilesUnchanged: res.FilesUnchanged,
		FilesFailed:    res.FilesFailed,
		StatementsSeen: res.StatementsSeen,
		StatementsOut:  res.StatementsOut,
		ParseErrors:    res.ParseErrors,
		DurationMS:     res.Duration.Milliseconds(),
		Changed:        res.Changed,
		Failed:         res.Failed,
	}
	for _, f := range res.Files {
		out.Files = append(out.Files, fileReport{
			Path:          f.Path,
			Changed:       f.Changed,
			Statements:    f.Statements,
			StatementsOut: f.StatementsOut,
			ParseErrors:   f.ParseErrors,
		})
	}
	return out
}

func RenderRunJSON(res ports.OrganizeResult) ([]byte, error) {
	return json.MarshalIndent(toRunReport(res), "", "  ")
}

func RenderRunTSV(res ports.OrganizeResult) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Path\tChanged\tStatements\tStatementsOut\tParseErrors\n")
	for _, f := range res.Files {
		buf.WriteString(fmt.Sprintf("%s\t%t\t%d\t%d\t%d\n",
			f.Path,
			f.Changed,
			f.Statements,
			f.StatementsOut,
			f.ParseErrors,
		))
	}

	return []byte(buf.String()), nil
}

// RenderRunText is the default terminal summary of a run.
func RenderRunText(res ports.OrganizeResult) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s run: %d files scanned in %s\n",
		res.Mode, res.FilesScanned, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(&buf, "  changed %d, unchanged %d, failed %d\n",
		res.FilesChanged, res.FilesUnchanged, res.FilesFailed)
	fmt.Fprintf(&buf, "  statements: %d in, %d out, %d parse errors\n",
		res.StatementsSeen, res.StatementsOut, res.ParseErrors)

	for _, path := range res.Changed {
		fmt.Fprintf(&buf, "  organized %s\n", path)
	}
	for _, path := range res.Failed {
		fmt.Fprintf(&buf, "  failed %s\n", path)
	}

	return buf.String()
}

// RenderStatusText summarizes workspace state for the status command.
func RenderStatusText(status ports.StatusResult) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "usetidy %s\n", status.Version)
	fmt.Fprintf(&buf, "  project root: %s\n", status.ProjectRoot)
	if status.ManifestPath != "" {
		fmt.Fprintf(&buf, "  manifest: %s (%d dependencies)\n", status.ManifestPath, len(status.Dependencies))
	}
	if status.LastRun != nil {
		fmt.Fprintf(&buf, "  last run: %s mode=%s changed=%d parse_errors=%d\n",
			status.LastRun.Timestamp.Format(time.RFC3339),
			status.LastRun.Mode,
			status.LastRun.FilesChanged,
			status.LastRun.ParseErrors,
		)
	} else {
		buf.WriteString("  last run: none recorded\n")
	}

	return buf.String()
}

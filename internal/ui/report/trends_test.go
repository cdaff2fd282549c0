package report

import (
	"strings"
	"testing"
	"time"

	"usetidy/internal/data/history"
	"usetidy/internal/data/query"
)

func TestRenderTrendTSV(t *testing.T) {
	report := history.TrendReport{
		SchemaVersion: 1,
		Since:         time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		Until:         time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC),
		Window:        "24h0m0s",
		RunCount:      1,
		Points: []history.TrendPoint{
			{
				Timestamp:      time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC),
				Mode:           "write",
				FilesScanned:   40,
				FilesChanged:   6,
				FilesFailed:    1,
				ParseErrors:    2,
				DurationMS:     180,
				ChangedPct:     15,
				AvgChanged:     6,
				AvgParseErrors: 2,
				WindowHours:    24,
			},
		},
	}

	out, err := RenderTrendTSV(report)
	if err != nil {
		t.Fatalf("render tsv: %v", err)
	}

	body := string(out)
	if !strings.Contains(body, "Timestamp\tMode\tFilesScanned") {
		t.Fatalf("missing header in output: %s", body)
	}
	if !strings.Contains(body, "write\t40\t6\t1\t2\t180\t0\t0\t0\t15.00\t6.00\t2.00\t24.00") {
		t.Fatalf("missing row values in output: %s", body)
	}
}

func TestRenderTrendJSON(t *testing.T) {
	report := history.TrendReport{
		SchemaVersion: 1,
		RunCount:      2,
	}

	out, err := RenderTrendJSON(report)
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if !strings.Contains(string(out), "\"run_count\": 2") {
		t.Fatalf("missing run count in output: %s", out)
	}
}

func TestRenderRunsTSV(t *testing.T) {
	rows := []query.RunSummary{
		{
			ID:           "run-1",
			Timestamp:    time.Date(2026, 8, 13, 9, 30, 0, 0, time.UTC),
			Mode:         "check",
			FilesScanned: 12,
			FilesChanged: 3,
			DurationMS:   95,
		},
	}

	out, err := RenderRunsTSV(rows)
	if err != nil {
		t.Fatalf("render tsv: %v", err)
	}

	body := string(out)
	if !strings.Contains(body, "Timestamp\tID\tMode") {
		t.Fatalf("missing header in output: %s", body)
	}
	if !strings.Contains(body, "run-1\tcheck\t12\t3\t0\t0\t95") {
		t.Fatalf("missing row values in output: %s", body)
	}
}

func TestRenderRunsText_Empty(t *testing.T) {
	if got := RenderRunsText(nil); got != "no runs recorded\n" {
		t.Fatalf("unexpected empty listing: %q", got)
	}
}

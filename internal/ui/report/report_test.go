package report

import (
	"strings"
	"testing"
	"time"

	"usetidy/internal/core/ports"
)

func sampleResult() ports.OrganizeResult {
	return ports.OrganizeResult{
		RunID:          "run-42",
		Mode:           "write",
		FilesScanned:   3,
		FilesChanged:   1,
		FilesUnchanged: 2,
		StatementsSeen: 9,
		StatementsOut:  5,
		Duration:       140 * time.Millisecond,
		Changed:        []string{"src/lib.rs"},
		Files: []ports.FileResult{
			{Path: "src/lib.rs", Changed: true, Statements: 4, StatementsOut: 2},
			{Path: "src/main.rs", Statements: 3, StatementsOut: 3},
			{Path: "src/util.rs", Statements: 2, StatementsOut: 2},
		},
	}
}

func TestRenderRunJSON(t *testing.T) {
	out, err := RenderRunJSON(sampleResult())
	if err != nil {
		t.Fatalf("render json: %v", err)
	}

	body := string(out)
	for _, want := range []string{
		"\"run_id\": \"run-42\"",
		"\"mode\": \"write\"",
		"\"files_changed\": 1",
		"\"duration_ms\": 140",
		"\"path\": \"src/lib.rs\"",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in output: %s", want, body)
		}
	}
}

func TestRenderRunTSV(t *testing.T) {
	out, err := RenderRunTSV(sampleResult())
	if err != nil {
		t.Fatalf("render tsv: %v", err)
	}

	body := string(out)
	if !strings.Contains(body, "Path\tChanged\tStatements") {
		t.Fatalf("missing header in output: %s", body)
	}
	if !strings.Contains(body, "src/lib.rs\ttrue\t4\t2\t0") {
		t.Fatalf("missing row values in output: %s", body)
	}
}

func TestRenderRunText(t *testing.T) {
	body := RenderRunText(sampleResult())

	if !strings.Contains(body, "write run: 3 files scanned in 140ms") {
		t.Fatalf("missing summary line: %s", body)
	}
	if !strings.Contains(body, "changed 1, unchanged 2, failed 0") {
		t.Fatalf("missing counts line: %s", body)
	}
	if !strings.Contains(body, "organized src/lib.rs") {
		t.Fatalf("missing changed file line: %s", body)
	}
}

func TestRenderStatusText(t *testing.T) {
	body := RenderStatusText(ports.StatusResult{
		Version:     "0.4.0-dev",
		ProjectRoot: "/work/demo",
	})

	if !strings.Contains(body, "usetidy 0.4.0-dev") {
		t.Fatalf("missing version line: %s", body)
	}
	if !strings.Contains(body, "last run: none recorded") {
		t.Fatalf("missing last run line: %s", body)
	}
}

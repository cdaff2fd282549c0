package cli

import (
	"fmt"
	"strings"

	"usetidy/internal/data/history"
)

func renderHelp(m model) string {
	keys := "Keys: / filter | enter preview | esc back | a apply | A apply all | r rescan | t trend | q quit"
	if m.hasPreview {
		keys = "Keys: esc close preview | a apply | r rescan | q quit"
	}
	return statusStyle.Render(keys)
}

func renderPreviewPanel(m model) string {
	if m.previewErr != "" {
		return errorStyle.Render("Preview error: " + m.previewErr)
	}

	f := m.preview
	lines := []string{
		fmt.Sprintf("Preview: %s", f.Path),
		fmt.Sprintf("  Statements: %d in, %d out | parse errors: %d", f.Statements, f.StatementsOut, f.ParseErrors),
	}
	if !f.Changed {
		lines = append(lines, "  Already tidy.")
	}

	block := strings.TrimRight(f.Block, "\n")
	if block == "" {
		lines = append(lines, "  No use declarations.")
	} else {
		for _, line := range strings.Split(block, "\n") {
			lines = append(lines, "  "+line)
		}
	}
	lines = append(lines, "  Press a to apply, esc to close.")
	return strings.Join(lines, "\n")
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend overlay unavailable (start with --history to load recorded runs).")
	}
	last := report.Points[len(report.Points)-1]
	return strings.Join([]string{
		"Trend Overlay",
		fmt.Sprintf("  Window: %s | Runs: %d", report.Window, report.RunCount),
		fmt.Sprintf("  Changed files: %d (%+d, avg %.2f)", last.FilesChanged, last.DeltaChanged, last.AvgChanged),
		fmt.Sprintf("  Changed rate: %.2f%% of scanned", last.ChangedPct),
		fmt.Sprintf("  Parse errors: %d (%+d, avg %.2f)", last.ParseErrors, last.DeltaParseErrors, last.AvgParseErrors),
	}, "\n")
}

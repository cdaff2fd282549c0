package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"usetidy/internal/data/history"
	"usetidy/internal/data/query"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tMode\tFilesScanned\tFilesChanged\tFilesFailed\tParseErrors\tDurationMS\tDeltaChanged\tDeltaFailed\tDeltaParseErrors\tChangedPct\tAvgChanged\tAvgParseErrors\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.Mode,
			point.FilesScanned,
			point.FilesChanged,
			point.FilesFailed,
			point.ParseErrors,
			point.DurationMS,
			point.DeltaChanged,
			point.DeltaFailed,
			point.DeltaParseErrors,
			point.ChangedPct,
			point.AvgChanged,
			point.AvgParseErrors,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

func RenderRunsTSV(rows []query.RunSummary) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tID\tMode\tFilesScanned\tFilesChanged\tFilesFailed\tParseErrors\tDurationMS\n")
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			row.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			row.ID,
			row.Mode,
			row.FilesScanned,
			row.FilesChanged,
			row.FilesFailed,
			row.ParseErrors,
			row.DurationMS,
		))
	}

	return []byte(buf.String()), nil
}

func RenderRunsJSON(rows []query.RunSummary) ([]byte, error) {
	return json.MarshalIndent(rows, "", "  ")
}

// RenderRunsText lists recorded runs for the terminal, newest first.
func RenderRunsText(rows []query.RunSummary) string {
	if len(rows) == 0 {
		return "no runs recorded\n"
	}

	var buf strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&buf, "%s  %-5s  scanned=%d changed=%d failed=%d parse_errors=%d  %dms\n",
			row.Timestamp.Format("2006-01-02 15:04:05"),
			row.Mode,
			row.FilesScanned,
			row.FilesChanged,
			row.FilesFailed,
			row.ParseErrors,
			row.DurationMS,
		)
	}
	return buf.String()
}

package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport enriches a chronological run list with per-run deltas
// and moving averages over the given window.
func BuildTrendReport(runs []Run, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs available")
	}

	points := make([]TrendPoint, 0, len(runs))
	for i, current := range runs {
		point := TrendPoint{
			Timestamp:    current.Timestamp,
			Mode:         current.Mode,
			FilesScanned: current.FilesScanned,
			FilesChanged: current.FilesChanged,
			FilesFailed:  current.FilesFailed,
			ParseErrors:  current.ParseErrors,
			DurationMS:   current.DurationMS,
		}

		if i > 0 {
			prev := runs[i-1]
			point.DeltaChanged = current.FilesChanged - prev.FilesChanged
			point.DeltaFailed = current.FilesFailed - prev.FilesFailed
			point.DeltaParseErrors = current.ParseErrors - prev.ParseErrors
		}
		if current.FilesScanned > 0 {
			point.ChangedPct = round2(float64(current.FilesChanged) / float64(current.FilesScanned) * 100)
		}

		avgChanged, avgParseErrors := movingAverages(runs, i, window)
		point.AvgChanged = round2(avgChanged)
		point.AvgParseErrors = round2(avgParseErrors)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         runs[0].Timestamp,
		Until:         runs[len(runs)-1].Timestamp,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

func movingAverages(runs []Run, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(runs[index].FilesChanged), float64(runs[index].ParseErrors)
	}

	cutoff := runs[index].Timestamp.Add(-window)
	var changedTotal int
	var parseErrTotal int
	count := 0
	for i := index; i >= 0; i-- {
		if runs[i].Timestamp.Before(cutoff) {
			break
		}
		changedTotal += runs[i].FilesChanged
		parseErrTotal += runs[i].ParseErrors
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(changedTotal) / float64(count), float64(parseErrTotal) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

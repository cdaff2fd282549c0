package query

import (
	"context"
	"fmt"
	"time"

	"usetidy/internal/data/history"
)

type runReader interface {
	LoadRuns(since time.Time) ([]history.Run, error)
}

// Service answers read-only questions about recorded organize runs.
type Service struct {
	history runReader
}

func NewService(h runReader) *Service {
	return &Service{history: h}
}

// ListRuns returns run summaries newest first.
func (s *Service) ListRuns(ctx context.Context, since time.Time, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runs, err := s.loadRuns(since)
	if err != nil {
		return nil, err
	}
	return summarize(runs, limit), nil
}

// RunQuery filters recorded runs with an RQL expression, newest first.
func (s *Service) RunQuery(ctx context.Context, raw string, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rql, err := ParseRQL(raw)
	if err != nil {
		return nil, err
	}
	runs, err := s.loadRuns(time.Time{})
	if err != nil {
		return nil, err
	}

	matched := make([]history.Run, 0, len(runs))
	for _, run := range runs {
		if rql.Matches(run) {
			matched = append(matched, run)
		}
	}
	return summarize(matched, limit), nil
}

// TrendSlice returns the raw run window for report surfaces, keeping the
// most recent limit runs.
func (s *Service) TrendSlice(ctx context.Context, since time.Time, limit int) (TrendSlice, error) {
	if err := ctx.Err(); err != nil {
		return TrendSlice{}, err
	}
	runs, err := s.loadRuns(since)
	if err != nil {
		return TrendSlice{}, err
	}

	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}

	out := TrendSlice{
		RunCount: len(runs),
		Runs:     runs,
	}
	if len(runs) > 0 {
		out.Since = runs[0].Timestamp.Format(time.RFC3339)
		out.Until = runs[len(runs)-1].Timestamp.Format(time.RFC3339)
	}
	return out, nil
}

// TrendReport computes deltas and moving averages over the run window.
func (s *Service) TrendReport(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error) {
	if err := ctx.Err(); err != nil {
		return history.TrendReport{}, err
	}
	runs, err := s.loadRuns(since)
	if err != nil {
		return history.TrendReport{}, err
	}
	return history.BuildTrendReport(runs, window)
}

func (s *Service) loadRuns(since time.Time) ([]history.Run, error) {
	if s.history == nil {
		return nil, fmt.Errorf("history store unavailable")
	}
	return s.history.LoadRuns(since)
}

func summarize(runs []history.Run, limit int) []RunSummary {
	out := make([]RunSummary, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		out = append(out, RunSummary{
			ID:           run.ID,
			Timestamp:    run.Timestamp,
			Mode:         run.Mode,
			FilesScanned: run.FilesScanned,
			FilesChanged: run.FilesChanged,
			FilesFailed:  run.FilesFailed,
			ParseErrors:  run.ParseErrors,
			DurationMS:   run.DurationMS,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

package status

import (
	"context"
	"time"

	"usetidy/internal/core/ports"
	"usetidy/internal/mcp/contracts"
)

// Service is the slice of the organize facade this tool needs.
type Service interface {
	Status(ctx context.Context) (ports.StatusResult, error)
	WatchService() ports.WatchService
}

// Handle reports workspace state: version, roots, the manifest dependency
// set, the last recorded run, and the last watch update when one exists.
func Handle(ctx context.Context, svc Service, _ contracts.StatusInput) (contracts.StatusOutput, error) {
	state, err := svc.Status(ctx)
	if err != nil {
		return contracts.StatusOutput{}, err
	}

	out := contracts.StatusOutput{
		Version:      state.Version,
		ProjectRoot:  state.ProjectRoot,
		ManifestPath: state.ManifestPath,
		Dependencies: state.Dependencies,
	}
	if state.LastRun != nil {
		out.LastRun = &contracts.RunSummary{
			ID:           state.LastRun.ID,
			Mode:         state.LastRun.Mode,
			FilesScanned: state.LastRun.FilesScanned,
			FilesChanged: state.LastRun.FilesChanged,
			ParseErrors:  state.LastRun.ParseErrors,
			DurationMs:   int(state.LastRun.DurationMS),
		}
	}

	if watch := svc.WatchService(); watch != nil {
		if update, err := watch.CurrentUpdate(ctx); err == nil && !update.Timestamp.IsZero() {
			out.LastTrigger = update.Trigger
			out.LastUpdateAt = update.Timestamp.UTC().Format(time.RFC3339)
		}
	}
	return out, nil
}

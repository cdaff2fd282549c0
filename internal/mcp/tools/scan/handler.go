package scan

import (
	"context"

	"usetidy/internal/core/ports"
	"usetidy/internal/mcp/contracts"
)

// Service is the slice of the organize facade this tool needs.
type Service interface {
	RunOrganize(ctx context.Context, req ports.OrganizeRequest) (ports.OrganizeResult, error)
}

// Handle dry-runs an organize pass over the given roots (or the configured
// scan paths) and reports what would change. Files are never rewritten.
func Handle(ctx context.Context, svc Service, in contracts.ScanInput) (contracts.ScanOutput, error) {
	res, err := svc.RunOrganize(ctx, ports.OrganizeRequest{Paths: in.Paths})
	if err != nil {
		return contracts.ScanOutput{}, err
	}

	out := contracts.ScanOutput{
		RunID:          res.RunID,
		FilesScanned:   res.FilesScanned,
		FilesChanged:   res.FilesChanged,
		FilesUnchanged: res.FilesUnchanged,
		FilesFailed:    res.FilesFailed,
		ParseErrors:    res.ParseErrors,
		DurationMs:     int(res.Duration.Milliseconds()),
	}
	for _, f := range res.Files {
		out.Files = append(out.Files, contracts.FileStatus{
			Path:          f.Path,
			Changed:       f.Changed,
			Statements:    f.Statements,
			StatementsOut: f.StatementsOut,
			ParseErrors:   f.ParseErrors,
		})
	}
	return out, nil
}

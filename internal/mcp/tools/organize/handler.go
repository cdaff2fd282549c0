package organize

import (
	"context"

	"usetidy/internal/core/ports"
	"usetidy/internal/mcp/contracts"
)

// Service is the slice of the organize facade this tool needs.
type Service interface {
	OrganizeFileWithFeeds(ctx context.Context, req ports.OrganizeFileRequest) (ports.FileResult, error)
}

// Handle organizes one file. Without apply the call is a preview; the
// organized document is returned but the file stays untouched. Resolver
// feeds pass straight through: unused spans drop imports, add suggestions
// merge new ones in.
func Handle(ctx context.Context, svc Service, in contracts.OrganizeInput) (contracts.OrganizeOutput, error) {
	req := ports.OrganizeFileRequest{
		Path:  in.Path,
		Write: in.Apply,
	}
	for _, span := range in.Unused {
		req.Unused = append(req.Unused, ports.UnusedSpan{
			StartLine: span.StartLine,
			StartCol:  span.StartCol,
			EndLine:   span.EndLine,
			EndCol:    span.EndCol,
		})
	}
	for _, sug := range in.Add {
		req.Add = append(req.Add, ports.AddSuggestion{Path: sug.Path, TraitLike: sug.TraitLike})
	}

	res, err := svc.OrganizeFileWithFeeds(ctx, req)
	if err != nil {
		return contracts.OrganizeOutput{}, err
	}

	return contracts.OrganizeOutput{
		Path:          res.Path,
		Changed:       res.Changed,
		Applied:       in.Apply && res.Changed,
		Block:         res.Block,
		Organized:     res.Organized,
		Statements:    res.Statements,
		StatementsOut: res.StatementsOut,
		ParseErrors:   res.ParseErrors,
	}, nil
}

package app

import (
	"context"
	"fmt"
	"strings"

	"usetidy/internal/core/config"
	"usetidy/internal/core/errors"
	"usetidy/internal/core/ports"
	"usetidy/internal/data/query"
	"usetidy/internal/engine/organize"
	"usetidy/internal/engine/parser"
	"usetidy/internal/shared/observability"
	"usetidy/internal/shared/version"
)

// organizeService adapts App to the ports facade the CLI, TUI, and MCP
// server drive.
type organizeService struct {
	app *App
}

var _ ports.OrganizeService = (*organizeService)(nil)

func NewOrganizeService(app *App) ports.OrganizeService {
	return &organizeService{app: app}
}

func (s *organizeService) RunOrganize(ctx context.Context, req ports.OrganizeRequest) (ports.OrganizeResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "organizeService.RunOrganize")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.OrganizeResult{}, err
	}
	if s.app == nil {
		return ports.OrganizeResult{}, fmt.Errorf("app is required")
	}
	if s.app.Config == nil {
		return ports.OrganizeResult{}, fmt.Errorf("config is required")
	}

	mode := "once"
	write := req.Write
	if req.Check {
		mode = "check"
		write = false
	} else if req.Write {
		mode = "write"
	}

	return s.app.runOrganize(ctx, req.Paths, write, mode)
}

func (s *organizeService) OrganizeFile(ctx context.Context, path string, write bool) (ports.FileResult, error) {
	return s.OrganizeFileWithFeeds(ctx, ports.OrganizeFileRequest{Path: path, Write: write})
}

// OrganizeFileWithFeeds additionally consumes resolver feeds: spans of
// imports known to be unused and paths to synthesize into the block.
func (s *organizeService) OrganizeFileWithFeeds(ctx context.Context, req ports.OrganizeFileRequest) (ports.FileResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "organizeService.OrganizeFile")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.FileResult{}, err
	}
	if s.app == nil {
		return ports.FileResult{}, fmt.Errorf("app is required")
	}
	trimmed := strings.TrimSpace(req.Path)
	if trimmed == "" {
		return ports.FileResult{}, fmt.Errorf("path is required")
	}

	feeds := organizeFeeds{}
	for _, u := range req.Unused {
		feeds.Unused = append(feeds.Unused, parser.Range{
			Start: parser.Position{Line: u.StartLine, Col: u.StartCol},
			End:   parser.Position{Line: u.EndLine, Col: u.EndCol},
		})
	}
	for _, add := range req.Add {
		feeds.Add = append(feeds.Add, organize.Suggestion{Path: add.Path, TraitLike: add.TraitLike})
	}

	abs := config.ResolveRelative(s.app.Paths.ProjectRoot, trimmed)
	res, err := s.app.organizeOne(abs, req.Write, feeds)
	if err != nil {
		return res, errors.AddContext(err, errors.CtxPath, trimmed)
	}
	return res, nil
}

func (s *organizeService) Status(ctx context.Context) (ports.StatusResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "organizeService.Status")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.StatusResult{}, err
	}
	if s.app == nil {
		return ports.StatusResult{}, fmt.Errorf("app is required")
	}

	res := s.app.StatusSnapshot()
	res.Version = version.Version
	return res, nil
}

func (s *organizeService) QueryService() ports.QueryService {
	if s.app == nil || s.app.History == nil {
		return query.NewService(nil)
	}
	return query.NewService(s.app.History)
}

func (s *organizeService) WatchService() ports.WatchService {
	return &watchService{app: s.app}
}

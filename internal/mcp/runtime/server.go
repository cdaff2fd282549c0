package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"usetidy/internal/core/config"
	coreerrors "usetidy/internal/core/errors"
	"usetidy/internal/core/ports"
	"usetidy/internal/mcp/contracts"
	"usetidy/internal/mcp/registry"
	organizetool "usetidy/internal/mcp/tools/organize"
	scantool "usetidy/internal/mcp/tools/scan"
	statustool "usetidy/internal/mcp/tools/status"
	"usetidy/internal/mcp/transport"
	"usetidy/internal/mcp/validate"
	"usetidy/internal/shared/observability"
)

// Dependencies carries everything the runtime needs from the host process.
type Dependencies struct {
	Organize   ports.OrganizeService
	Logger     *slog.Logger
	ConfigPath string
}

// Server owns the tool registry and the transport serving it.
type Server struct {
	cfg       *config.Config
	deps      Dependencies
	registry  *registry.Registry
	transport transport.Adapter

	mu      sync.Mutex
	running bool
}

func New(cfg *config.Config, deps Dependencies, reg *registry.Registry, adapter transport.Adapter) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Organize == nil {
		return nil, fmt.Errorf("organize service dependency is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if reg == nil {
		reg = registry.New()
	}
	if adapter == nil {
		return nil, fmt.Errorf("transport is required")
	}

	return &Server{
		cfg:       cfg,
		deps:      deps,
		registry:  reg,
		transport: adapter,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	s.running = true
	s.mu.Unlock()

	if err := s.registerTools(); err != nil {
		return err
	}

	s.deps.Logger.Info("mcp runtime active", "server", s.cfg.MCP.ServerName, "tools", s.registry.Tools())

	err := s.transport.Start(ctx, s.handleToolCall)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	return err
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	return s.transport.Stop()
}

func (s *Server) Run(ctx context.Context) error {
	return s.Start(ctx)
}

func (s *Server) registerTools() error {
	handlers := map[string]registry.Handler{
		contracts.ToolOrganize: func(ctx context.Context, raw map[string]any) (any, error) {
			input, err := validate.ParseToolArgs(contracts.ToolOrganize, raw)
			if err != nil {
				return nil, err
			}
			out, err := organizetool.Handle(ctx, s.deps.Organize, input.(contracts.OrganizeInput))
			if err != nil {
				return nil, err
			}
			return wrapToolResult(contracts.ToolOrganize, out), nil
		},
		contracts.ToolScan: func(ctx context.Context, raw map[string]any) (any, error) {
			input, err := validate.ParseToolArgs(contracts.ToolScan, raw)
			if err != nil {
				return nil, err
			}
			out, err := scantool.Handle(ctx, s.deps.Organize, input.(contracts.ScanInput))
			if err != nil {
				return nil, err
			}
			return wrapToolResult(contracts.ToolScan, out), nil
		},
		contracts.ToolStatus: func(ctx context.Context, raw map[string]any) (any, error) {
			input, err := validate.ParseToolArgs(contracts.ToolStatus, raw)
			if err != nil {
				return nil, err
			}
			out, err := statustool.Handle(ctx, s.deps.Organize, input.(contracts.StatusInput))
			if err != nil {
				return nil, err
			}
			return wrapToolResult(contracts.ToolStatus, out), nil
		},
	}

	for _, def := range contracts.BuildToolDefinitions() {
		if _, ok := s.registry.HandlerFor(def.Name); ok {
			continue
		}
		if err := s.registry.Register(def.Name, handlers[def.Name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleToolCall(ctx context.Context, tool string, raw map[string]any) (any, error) {
	tool = strings.TrimSpace(tool)
	if tool == "" {
		return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "tool is required"}
	}

	handler, ok := s.registry.HandlerFor(tool)
	if !ok {
		return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: fmt.Sprintf("unsupported tool: %s", tool)}
	}

	timeout := s.cfg.MCP.RequestTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	observability.MCPRequestsTotal.WithLabelValues(tool).Inc()

	out, err := handler(ctx, raw)
	if err != nil {
		return nil, toToolError(err)
	}
	return out, nil
}

func wrapToolResult(tool string, payload any) any {
	return map[string]any{
		"version": contracts.ContractVersion,
		"tool":    tool,
		"result":  payload,
	}
}

func toToolError(err error) error {
	var toolErr contracts.ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return contracts.ToolError{Code: contracts.ErrorUnavailable, Message: "request timed out"}
	}
	if coreerrors.IsCode(err, coreerrors.CodeNotFound) {
		return contracts.ToolError{Code: contracts.ErrorNotFound, Message: err.Error()}
	}
	if coreerrors.IsCode(err, coreerrors.CodeValidationError) {
		return contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: err.Error()}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	code := contracts.ErrorInternal
	switch {
	case strings.Contains(lower, "not found"), strings.Contains(lower, "no such file"):
		code = contracts.ErrorNotFound
	case strings.Contains(lower, "required"), strings.Contains(lower, "invalid"), strings.Contains(lower, "must be"):
		code = contracts.ErrorInvalidArgument
	}
	return contracts.ToolError{Code: code, Message: msg}
}

package runtime

import (
	"fmt"
	"strings"

	"usetidy/internal/core/config"
	"usetidy/internal/mcp/registry"
	"usetidy/internal/mcp/transport"
)

// Build assembles a ready-to-run server from config. Run recording and
// history live behind the organize service, so the runtime itself holds
// no storage.
func Build(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	serverName := strings.TrimSpace(cfg.MCP.ServerName)
	if serverName == "" {
		serverName = "usetidy"
	}

	adapter, err := transport.NewStdio(serverName, cfg.MCP.RateLimit, cfg.MCP.RateBurst)
	if err != nil {
		return nil, fmt.Errorf("build MCP transport: %w", err)
	}

	return New(cfg, deps, registry.New(), adapter)
}

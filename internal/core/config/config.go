package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"

	"usetidy/internal/core/config/helpers"
	"usetidy/internal/shared/util"
)

type Config struct {
	Version  int      `toml:"version"`
	Paths    Paths    `toml:"paths"`
	Manifest Manifest `toml:"manifest"`
	Scan     Scan     `toml:"scan"`
	Watch    Watch    `toml:"watch"`
	DB       Database `toml:"db"`
	Metrics  Metrics  `toml:"metrics"`
	Tracing  Tracing  `toml:"tracing"`
	MCP      MCP      `toml:"mcp"`
	UI       UI       `toml:"ui"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
	DatabaseDir string `toml:"database_dir"`
}

type Manifest struct {
	Path string `toml:"path"`
}

type Scan struct {
	Paths   []string `toml:"paths"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Rate     float64       `toml:"rate"`
	Burst    int           `toml:"burst"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Metrics struct {
	Addr string `toml:"addr"`
}

type Tracing struct {
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

type MCP struct {
	Enabled        bool          `toml:"enabled"`
	ServerName     string        `toml:"server_name"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimit      float64       `toml:"rate_limit"`
	RateBurst      int           `toml:"rate_burst"`
}

type UI struct {
	Alerts Alerts `toml:"alerts"`
}

type Alerts struct {
	Beep     bool `toml:"beep"`
	Terminal bool `toml:"terminal"`
}

// DiscoverPath returns the first config file that exists among the default
// locations, or an empty string when none does.
func DiscoverPath() string {
	candidates := []string{
		"usetidy.toml",
		filepath.Join("data", "config", "usetidy.toml"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateScan(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}
	if err := validateMetrics(&cfg); err != nil {
		return nil, err
	}
	if err := validateMCP(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads path when given, otherwise the first discovered config
// file, otherwise the built-in defaults.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DiscoverPath()
	}
	if path == "" {
		cfg := Default()
		ApplyEnvOverrides(cfg)
		normalize(cfg)
		return cfg, nil
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Paths.DatabaseDir) == "" {
		cfg.Paths.DatabaseDir = "data/database"
	}

	if strings.TrimSpace(cfg.Manifest.Path) == "" {
		cfg.Manifest.Path = "Cargo.toml"
	}

	if len(cfg.Scan.Paths) == 0 {
		cfg.Scan.Paths = []string{"."}
	}
	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = []string{"**.rs"}
	}
	if len(cfg.Scan.Exclude) == 0 {
		cfg.Scan.Exclude = []string{"target/**", ".git/**"}
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.Rate <= 0 {
		cfg.Watch.Rate = 2
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 4
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.MCP.ServerName) == "" {
		cfg.MCP.ServerName = "usetidy"
	}
	if cfg.MCP.RequestTimeout <= 0 {
		cfg.MCP.RequestTimeout = 30 * time.Second
	}
	if cfg.MCP.RateLimit <= 0 {
		cfg.MCP.RateLimit = 5
	}
	if cfg.MCP.RateBurst <= 0 {
		cfg.MCP.RateBurst = 10
	}
}

func normalize(cfg *Config) {
	cfg.Manifest.Path = strings.TrimSpace(cfg.Manifest.Path)
	cfg.Metrics.Addr = strings.TrimSpace(cfg.Metrics.Addr)
	cfg.Tracing.Endpoint = strings.TrimSpace(cfg.Tracing.Endpoint)
	cfg.MCP.ServerName = strings.TrimSpace(cfg.MCP.ServerName)

	paths := make([]string, 0, len(cfg.Scan.Paths))
	for _, p := range cfg.Scan.Paths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	cfg.Scan.Paths = paths

	// Patterns match slash-separated relative paths, whatever the host OS.
	cfg.Scan.Include = normalizePatterns(cfg.Scan.Include)
	cfg.Scan.Exclude = normalizePatterns(cfg.Scan.Exclude)
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = util.NormalizePatternPath(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if len(cfg.Scan.Paths) == 0 {
		return fmt.Errorf("scan.paths must name at least one directory")
	}
	for _, p := range cfg.Scan.Paths {
		if helpers.HasWildcard(p) {
			return fmt.Errorf("scan.paths entry %q must be a plain path; put patterns in scan.include or scan.exclude", p)
		}
	}
	for i := 0; i < len(cfg.Scan.Paths); i++ {
		for j := i + 1; j < len(cfg.Scan.Paths); j++ {
			a := filepath.Clean(cfg.Scan.Paths[i])
			b := filepath.Clean(cfg.Scan.Paths[j])
			if helpers.IsPathOverlap(a, b) {
				return fmt.Errorf("scan.paths entries %q and %q overlap", cfg.Scan.Paths[i], cfg.Scan.Paths[j])
			}
		}
	}
	for _, pattern := range cfg.Scan.Include {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("scan.include pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range cfg.Scan.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("scan.exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	if cfg.Watch.Rate <= 0 || cfg.Watch.Burst < 1 {
		return fmt.Errorf("watch.rate must be positive and watch.burst at least 1")
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if !cfg.DB.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if cfg.DB.BusyTimeout <= 0 {
		return fmt.Errorf("db.busy_timeout must be positive")
	}
	return nil
}

func validateMetrics(cfg *Config) error {
	if cfg.Metrics.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
		return fmt.Errorf("metrics.addr must be host:port: %w", err)
	}
	return nil
}

func validateMCP(cfg *Config) error {
	if !cfg.MCP.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.MCP.ServerName) == "" {
		return fmt.Errorf("mcp.server_name must not be empty")
	}
	if cfg.MCP.RequestTimeout <= 0 {
		return fmt.Errorf("mcp.request_timeout must be positive")
	}
	if cfg.MCP.RateLimit <= 0 || cfg.MCP.RateBurst < 1 {
		return fmt.Errorf("mcp.rate_limit must be positive and mcp.rate_burst at least 1")
	}
	return nil
}

package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: USETIDY_[SECTION]_[KEY].
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "USETIDY_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "USETIDY_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.DatabaseDir, "USETIDY_PATHS_DATABASE_DIR")

	setEnvString(&cfg.Manifest.Path, "USETIDY_MANIFEST_PATH")

	setEnvDuration(&cfg.Watch.Debounce, "USETIDY_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.Rate, "USETIDY_WATCH_RATE")
	setEnvInt(&cfg.Watch.Burst, "USETIDY_WATCH_BURST")

	setEnvBool(&cfg.DB.Enabled, "USETIDY_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "USETIDY_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "USETIDY_DB_BUSY_TIMEOUT")

	setEnvString(&cfg.Metrics.Addr, "USETIDY_METRICS_ADDR")

	setEnvString(&cfg.Tracing.Endpoint, "USETIDY_TRACING_ENDPOINT")
	setEnvBool(&cfg.Tracing.Insecure, "USETIDY_TRACING_INSECURE")

	setEnvBool(&cfg.MCP.Enabled, "USETIDY_MCP_ENABLED")
	setEnvString(&cfg.MCP.ServerName, "USETIDY_MCP_SERVER_NAME")
	setEnvDuration(&cfg.MCP.RequestTimeout, "USETIDY_MCP_REQUEST_TIMEOUT")
	setEnvFloat64(&cfg.MCP.RateLimit, "USETIDY_MCP_RATE_LIMIT")
	setEnvInt(&cfg.MCP.RateBurst, "USETIDY_MCP_RATE_BURST")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}

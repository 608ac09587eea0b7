// # internal/core/config/env.go
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: SCREENMAP_[SECTION]_[KEY]
// (e.g., SCREENMAP_OBSERVABILITY_METRICS_ADDR).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "SCREENMAP_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.Catalog, "SCREENMAP_PATHS_CATALOG")

	// Resolver
	setEnvInt(&cfg.Resolver.MaxDepth, "SCREENMAP_RESOLVER_MAX_DEPTH")

	// Output
	setEnvString(&cfg.Output.Mermaid, "SCREENMAP_OUTPUT_MERMAID")
	setEnvString(&cfg.Output.Markdown, "SCREENMAP_OUTPUT_MARKDOWN")

	// History
	setEnvBool(&cfg.History.Enabled, "SCREENMAP_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "SCREENMAP_HISTORY_PATH")
	setEnvDuration(&cfg.History.BusyTimeout, "SCREENMAP_HISTORY_BUSY_TIMEOUT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "SCREENMAP_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RateLimit, "SCREENMAP_WATCH_RATE_LIMIT")
	setEnvInt(&cfg.Watch.Burst, "SCREENMAP_WATCH_BURST")

	// OpenAPI
	setEnvString(&cfg.OpenAPI.Spec, "SCREENMAP_OPENAPI_SPEC")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "SCREENMAP_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "SCREENMAP_OBSERVABILITY_OTLP_ENDPOINT")
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
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
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

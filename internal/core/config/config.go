// # internal/core/config/config.go
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"screenmap/internal/engine/parser"
	"screenmap/internal/engine/resolver"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int                      `toml:"version"`
	Paths         Paths                    `toml:"paths"`
	Dialects      map[string]DialectConfig `toml:"dialects"`
	Exclude       Exclude                  `toml:"exclude"`
	Resolver      Resolver                 `toml:"resolver"`
	Output        Output                   `toml:"output"`
	History       History                  `toml:"history"`
	Watch         Watch                    `toml:"watch"`
	OpenAPI       OpenAPI                  `toml:"openapi"`
	Observability Observability            `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	Catalog     string `toml:"catalog"`
}

type DialectConfig struct {
	Enabled *bool    `toml:"enabled"`
	Include []string `toml:"include"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Resolver struct {
	MaxDepth   int      `toml:"max_depth"`
	Extensions []string `toml:"extensions"`
}

type Output struct {
	Mermaid  string `toml:"mermaid"`
	Markdown string `toml:"markdown"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Debounce  time.Duration `toml:"debounce"`
	RateLimit float64       `toml:"rate_limit"`
	Burst     int           `toml:"burst"`
}

type OpenAPI struct {
	Spec string `toml:"spec"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// defaultIncludes are the per-dialect glob patterns used when a config
// enables a dialect without naming its files.
var defaultIncludes = map[string][]string{
	"reactrouter": {"**/routes.tsx", "**/routes.ts", "**/router.tsx", "**/*.routes.tsx"},
	"vuerouter":   {"**/router.ts", "**/router.js", "**/routes.ts", "**/*.router.ts"},
	"angular":     {"**/*routing.module.ts", "**/*.routes.ts", "**/app.routes.ts"},
	"tanstack":    {"**/routeTree.ts", "**/routeTree.tsx", "**/routes.gen.ts"},
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

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the config file when it exists and falls back to
// a fully defaulted config otherwise, so first runs need no setup.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	cfg := &Config{}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.Catalog) == "" {
		cfg.Paths.Catalog = "screens.json"
	}

	if len(cfg.Dialects) == 0 {
		cfg.Dialects = make(map[string]DialectConfig, len(defaultIncludes))
		for name := range defaultIncludes {
			cfg.Dialects[name] = DialectConfig{}
		}
	}
	for name, dc := range cfg.Dialects {
		if len(dc.Include) == 0 {
			dc.Include = append([]string(nil), defaultIncludes[name]...)
			cfg.Dialects[name] = dc
		}
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", "dist", "build", ".git"}
	}

	if cfg.Resolver.MaxDepth == 0 {
		cfg.Resolver.MaxDepth = resolver.DefaultMaxDepth
	}
	if len(cfg.Resolver.Extensions) == 0 {
		cfg.Resolver.Extensions = append([]string(nil), resolver.DefaultExtensions...)
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "screenmap-history.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RateLimit <= 0 {
		cfg.Watch.RateLimit = 2 // rescans per second
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 4
	}
}

func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", c.Version)
	}

	for name, dc := range c.Dialects {
		if _, err := parser.ParseDialect(name); err != nil {
			return fmt.Errorf("dialects.%s: %w", name, err)
		}
		if dc.IsEnabled() && len(dc.Include) == 0 {
			return fmt.Errorf("dialects.%s must define at least one include pattern", name)
		}
	}

	if c.Resolver.MaxDepth < 1 || c.Resolver.MaxDepth > 10 {
		return fmt.Errorf("resolver.max_depth must be between 1 and 10, got %d", c.Resolver.MaxDepth)
	}
	for _, ext := range c.Resolver.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("resolver.extensions entries must start with a dot, got %q", ext)
		}
	}

	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// EnabledDialects returns the configured dialect names in parser form,
// sorted for deterministic scan order.
func (c *Config) EnabledDialects() []parser.Dialect {
	var out []parser.Dialect
	for name, dc := range c.Dialects {
		if !dc.IsEnabled() {
			continue
		}
		dialect, err := parser.ParseDialect(name)
		if err != nil {
			continue
		}
		out = append(out, dialect)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d DialectConfig) IsEnabled() bool {
	if d.Enabled == nil {
		return true
	}
	return *d.Enabled
}

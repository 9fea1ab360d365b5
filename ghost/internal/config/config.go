// Package config loads ghostmap configuration from a YAML file with
// environment overrides (GHOSTMAP_*, "__" separates nesting levels).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g.
// GHOSTMAP_BROWSER__REMOTE=ws://chrome:9222/devtools/browser/...
const EnvPrefix = "GHOSTMAP_"

// Config is the top-level ghostmap configuration.
type Config struct {
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Browser BrowserConfig `koanf:"browser" yaml:"browser"`
	Sinks   []SinkConfig  `koanf:"sinks" yaml:"sinks"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`   // debug | info | warn | error
	Format string `koanf:"format" yaml:"format"` // json | text
}

// BrowserConfig controls Chrome for live runs.
type BrowserConfig struct {
	Remote           string        `koanf:"remote" yaml:"remote"`
	Stealth          string        `koanf:"stealth" yaml:"stealth"` // headless | headful
	XvfbDisplay      string        `koanf:"xvfb_display" yaml:"xvfb_display"`
	ResourceBlocking []string      `koanf:"resource_blocking" yaml:"resource_blocking"`
	NavTimeout       time.Duration `koanf:"nav_timeout" yaml:"nav_timeout"`
	ViewportWidth    int           `koanf:"viewport_width" yaml:"viewport_width"`
	ViewportHeight   int           `koanf:"viewport_height" yaml:"viewport_height"`
}

// SinkConfig defines a report output backend.
type SinkConfig struct {
	Type string `koanf:"type" yaml:"type"` // stdout | webhook | sqlite
	URL  string `koanf:"url" yaml:"url,omitempty"`
	Path string `koanf:"path" yaml:"path,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path when it exists, then overlays environment variables. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps GHOSTMAP_BROWSER__NAV_TIMEOUT to browser.nav_timeout.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1366
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 900
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Browser.Stealth {
	case "headless", "headful":
	default:
		return fmt.Errorf("config: invalid browser.stealth %q: must be headless or headful", c.Browser.Stealth)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: invalid log.format %q: must be json or text", c.Log.Format)
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: sinks[%d]: webhook requires url", i)
			}
		case "sqlite":
			if s.Path == "" {
				return fmt.Errorf("config: sinks[%d]: sqlite requires path", i)
			}
		default:
			return fmt.Errorf("config: sinks[%d]: unknown type %q", i, s.Type)
		}
	}
	return nil
}

// Level parses Log.Level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

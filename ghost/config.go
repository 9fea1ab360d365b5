package ghost

import "github.com/hazyhaar/ghostmap/ghost/internal/config"

// Config is the ghostmap configuration.
type Config = config.Config

// LoadConfig reads a YAML configuration file with GHOSTMAP_* environment
// overrides. An empty or missing path yields the defaults.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config { return config.Default() }

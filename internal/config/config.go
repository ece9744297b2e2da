// Package config handles TOML-based configuration loading and
// validation. TOML is parsed as data only — no code execution is
// possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	// Catalog is the feed location: a local JSON file path or an
	// HTTPS URL.
	Catalog string `toml:"catalog"`
	// MediaBase is prepended to relative audio/subtitle paths from
	// the catalog. Empty means media paths are resolved against the
	// catalog file's directory.
	MediaBase string `toml:"media_base"`
	// DataDir overrides the XDG data directory for state and logs.
	DataDir   string  `toml:"data_dir"`
	Volume    float64 `toml:"volume"`
	Rate      float64 `toml:"rate"`
	Subtitles bool    `toml:"subtitles"`
	Debug     bool    `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Volume:    1.0,
		Rate:      1.0,
		Subtitles: true,
		Debug:     false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kanade"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kanade"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume %v out of range [0, 1]", c.Volume)
	}
	if c.Rate < 0.5 || c.Rate > 3 {
		return fmt.Errorf("rate %v out of range [0.5, 3]", c.Rate)
	}
	if c.MediaBase != "" && !strings.HasPrefix(c.MediaBase, "https://") &&
		!strings.HasPrefix(c.MediaBase, "http://localhost") &&
		!strings.HasPrefix(c.MediaBase, "http://127.0.0.1") {
		// a local directory base is also acceptable
		if strings.Contains(c.MediaBase, "://") {
			return fmt.Errorf("media_base %q must be https, localhost, or a directory", c.MediaBase)
		}
	}
	return nil
}

// ExpandCatalog resolves ~ in the catalog path. URLs pass through
// untouched.
func (c *Config) ExpandCatalog() (string, error) {
	if strings.Contains(c.Catalog, "://") {
		return c.Catalog, nil
	}
	path := c.Catalog
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}

// dataDir returns the XDG-compliant data directory, honoring the
// data_dir override.
func (c *Config) dataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kanade"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "kanade"), nil
}

// StatePath returns the path to the state database, creating the data
// directory if needed.
func (c *Config) StatePath() (string, error) {
	dir, err := c.dataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "state.db"), nil
}

// LogPath returns the path to the log file, creating the data
// directory if needed.
func (c *Config) LogPath() (string, error) {
	dir, err := c.dataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "kanade.log"), nil
}

// Package config loads tool configuration from a TOML file with
// environment variable overrides.
//
// The file lives at ~/.config/mjcfutil/config.toml by default; every
// field has a sensible zero-config default so the file is optional.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// Config holds all tool settings.
type Config struct {
	Export ExportConfig `toml:"export"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
}

// ExportConfig controls clean XML export.
type ExportConfig struct {
	// Precision is the number of significant digits for float attributes.
	Precision int `toml:"precision"`
	// ZeroThreshold clamps smaller magnitudes to exact zero.
	ZeroThreshold float64 `toml:"zero_threshold"`
}

// RenderConfig controls diagram rendering.
type RenderConfig struct {
	// Format is the default output format: svg, png, pdf, or dot.
	Format string `toml:"format"`
	// Detailed includes element metadata in node labels.
	Detailed bool `toml:"detailed"`
}

// CacheConfig controls the artifact cache.
type CacheConfig struct {
	// Backend selects the cache implementation: file, redis, or none.
	Backend string `toml:"backend"`
	// RedisAddr is the host:port of the Redis backend.
	RedisAddr string `toml:"redis_addr"`
	// TTL is the entry lifetime, e.g. "168h". Empty uses the default.
	TTL string `toml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Export: ExportConfig{
			Precision:     5,
			ZeroThreshold: 1e-7,
		},
		Render: RenderConfig{
			Format: "svg",
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
			TTL:       "168h",
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.config/mjcfutil/config.toml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mjcfutil", "config.toml")
}

// Load reads configuration from path, falling back to defaults for a
// missing file, then applies environment overrides and validates.
// An empty path uses [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		} else if !os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from MJCFUTIL_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MJCFUTIL_PRECISION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Export.Precision = n
		}
	}
	if v := os.Getenv("MJCFUTIL_ZERO_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Export.ZeroThreshold = f
		}
	}
	if v := os.Getenv("MJCFUTIL_RENDER_FORMAT"); v != "" {
		cfg.Render.Format = v
	}
	if v := os.Getenv("MJCFUTIL_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("MJCFUTIL_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("MJCFUTIL_CACHE_TTL"); v != "" {
		cfg.Cache.TTL = v
	}
}

var validFormats = map[string]bool{"svg": true, "png": true, "pdf": true, "dot": true}
var validBackends = map[string]bool{"file": true, "redis": true, "none": true}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Export.Precision < 1 || c.Export.Precision > 17 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"export.precision must be between 1 and 17, got %d", c.Export.Precision)
	}
	if c.Export.ZeroThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"export.zero_threshold cannot be negative, got %g", c.Export.ZeroThreshold)
	}
	if !validFormats[c.Render.Format] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"render.format must be svg, png, pdf, or dot, got %q", c.Render.Format)
	}
	if !validBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend must be file, redis, or none, got %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses the configured cache TTL.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.ttl %q", c.Cache.TTL)
	}
	return d, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing file should yield defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[export]
precision = 8
zero_threshold = 1e-9

[render]
format = "png"
detailed = true

[cache]
backend = "redis"
redis_addr = "cache.lab:6379"
ttl = "24h"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Precision != 8 {
		t.Errorf("precision = %d", cfg.Export.Precision)
	}
	if cfg.Render.Format != "png" || !cfg.Render.Detailed {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache.lab:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		t.Fatalf("CacheTTL: %v", err)
	}
	if ttl != 24*time.Hour {
		t.Errorf("ttl = %v", ttl)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[export]\nprecision = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Precision != 3 {
		t.Errorf("precision = %d", cfg.Export.Precision)
	}
	if cfg.Render.Format != "svg" {
		t.Errorf("unset fields should keep defaults: %+v", cfg.Render)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MJCFUTIL_PRECISION", "10")
	t.Setenv("MJCFUTIL_RENDER_FORMAT", "dot")
	t.Setenv("MJCFUTIL_CACHE_BACKEND", "none")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Precision != 10 {
		t.Errorf("precision = %d", cfg.Export.Precision)
	}
	if cfg.Render.Format != "dot" {
		t.Errorf("format = %s", cfg.Render.Format)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("backend = %s", cfg.Cache.Backend)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"precision zero", func(c *Config) { c.Export.Precision = 0 }},
		{"precision huge", func(c *Config) { c.Export.Precision = 99 }},
		{"negative threshold", func(c *Config) { c.Export.ZeroThreshold = -1 }},
		{"bad format", func(c *Config) { c.Render.Format = "bmp" }},
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "tomorrow" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

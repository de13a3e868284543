// Package cli implements the mjcfutil command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/buildinfo"
	"github.com/janelia-anibody/mjcfutil/pkg/cache"
	"github.com/janelia-anibody/mjcfutil/pkg/config"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
)

// appName is the application name used for directories and display.
const appName = "mjcfutil"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mjcfutil inspects and transforms MuJoCo MJCF models",
		Long:         `mjcfutil is a CLI tool for working with MuJoCo MJCF model files: clean re-export, validation, kinematic tree inspection, frame rerooting, model composition, and physics parameter queries.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/mjcfutil/config.toml)")

	// Register all subcommands
	root.AddCommand(c.formatCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.rerootCommand())
	root.AddCommand(c.attachCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the tool configuration honoring the --config flag.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// loadModel parses a model file with includes resolved.
func (c *CLI) loadModel(path string) (*mjcf.Model, error) {
	p := newProgress(c.Logger)
	m, err := mjcf.ParseFile(path)
	if err != nil {
		return nil, err
	}
	name := m.Name()
	if name == "" {
		name = filepath.Base(path)
	}
	p.done("Loaded " + name)
	return m, nil
}

// newCache builds the configured cache backend and the keyer to use
// with it. Failures to set up a backend degrade to a null cache so
// caching never blocks a command. Shared backends get keys scoped with
// an application prefix; the file cache has its own directory and uses
// bare keys.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, cache.Keyer) {
	keyer := cache.NewDefaultKeyer()
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), keyer
	}
	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), keyer
		}
		return rc, cache.NewScopedKeyer(keyer, appName+":")
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), keyer
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), keyer
	}
	return fc, keyer
}

// cacheDir returns the cache directory using XDG standard (~/.cache/mjcfutil/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

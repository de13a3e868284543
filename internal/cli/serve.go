package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/internal/server"
	"github.com/janelia-anibody/mjcfutil/pkg/cache"
	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// shutdownTimeout bounds graceful server shutdown on interrupt.
const shutdownTimeout = 5 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	bodiesOnly bool
	noCache    bool
}

// serveCommand creates the serve command exposing a model over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <model.xml>",
		Short: "Serve a model's tree views over HTTP",
		Long: `Serve starts a local HTTP server exposing the model source, the
kinematic tree as JSON, and an SVG rendering. Rendered SVGs are cached
by model content hash.

Endpoints: /  /healthz  /model.xml  /tree.json  /tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:8329", "listen address")
	cmd.Flags().BoolVarP(&opts.bodiesOnly, "bodies-only", "b", false, "restrict tree views to body elements")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", input)
	}
	m, err := c.loadModel(input)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, keyer := c.newCache(ctx, cfg, opts.noCache)
	defer store.Close()

	ttl := cache.DefaultTTL
	if d, err := cfg.CacheTTL(); err == nil {
		ttl = d
	}

	srv := server.New(m, raw, c.Logger, server.Options{
		Addr:       opts.addr,
		BodiesOnly: opts.bodiesOnly,
		Cache:      store,
		Keyer:      keyer,
		TTL:        ttl,
	})

	printInfo("Serving %s on %s", StyleValue.Render(input), StyleValue.Render("http://"+opts.addr))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/cache"
	"github.com/janelia-anibody/mjcfutil/pkg/config"
	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
	"github.com/janelia-anibody/mjcfutil/pkg/render"
)

// pngScale is the raster scale for PNG export (2x for high-DPI displays).
const pngScale = 2.0

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	formats    []string
	output     string
	bodiesOnly bool
	detailed   bool
	noCache    bool
}

// renderCommand creates the render command for node-link diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <model.xml>",
		Short: "Render the kinematic tree as a node-link diagram",
		Long: `Render extracts the kinematic tree and draws it with Graphviz. SVG is
rendered in-process; PNG and PDF additionally require rsvg-convert.
Rendered artifacts are cached by model content hash, so re-rendering an
unchanged model is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				opts.formats = []string{cfg.Render.Format}
			}
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = cfg.Render.Detailed
			}
			return c.runRender(cmd.Context(), args[0], cfg, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{"svg"}, "output formats: svg, png, pdf, dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (extension replaced per format)")
	cmd.Flags().BoolVarP(&opts.bodiesOnly, "bodies-only", "b", false, "render only body elements")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include element metadata in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts renderOpts) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", input)
	}
	m, err := c.loadModel(input)
	if err != nil {
		return err
	}

	tr, err := mjcf.Tree(m, mjcf.TreeOptions{BodiesOnly: opts.bodiesOnly})
	if err != nil {
		return err
	}
	dot := render.ToDOT(tr, render.Options{Detailed: opts.detailed})

	store, keyer := c.newCache(ctx, cfg, opts.noCache)
	defer store.Close()
	modelHash := cache.Hash(raw)

	ttl := cache.DefaultTTL
	if d, err := cfg.CacheTTL(); err == nil {
		ttl = d
	}

	for _, format := range opts.formats {
		format = strings.ToLower(strings.TrimSpace(format))
		outPath := outputPath(input, opts.output, format)

		if format == "dot" {
			if err := os.WriteFile(outPath, []byte(dot), 0644); err != nil {
				return err
			}
			printSuccess("Rendered %s", format)
			printFile(outPath)
			continue
		}

		key := keyer.ArtifactKey(modelHash, cache.ArtifactKeyOpts{
			Format:     format,
			BodiesOnly: opts.bodiesOnly,
			Detailed:   opts.detailed,
		})
		if data, ok, err := store.Get(ctx, key); err == nil && ok {
			c.Logger.Debug("artifact cache hit", "format", format)
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return err
			}
			printSuccess("Rendered %s (cached)", format)
			printFile(outPath)
			continue
		}

		spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", format))
		spin.Start()
		data, err := renderFormat(dot, format)
		if err != nil {
			spin.StopWithError(fmt.Sprintf("Rendering %s failed", format))
			return err
		}
		spin.Stop()

		if err := store.Set(ctx, key, data, ttl); err != nil {
			c.Logger.Warn("failed to cache artifact", "format", format, "err", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return err
		}
		printSuccess("Rendered %s", format)
		printFile(outPath)
	}
	return nil
}

// renderFormat renders the DOT source to the requested format.
func renderFormat(dot, format string) ([]byte, error) {
	switch format {
	case "svg":
		return render.RenderSVG(dot)
	case "png":
		return render.RenderPNG(dot, pngScale)
	case "pdf":
		return render.RenderPDF(dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown format %q (expected svg, png, pdf, or dot)", format)
	}
}

// outputPath derives the output file for a format: an explicit --output
// has its extension replaced, otherwise the input path's.
func outputPath(input, output, format string) string {
	base := input
	if output != "" {
		base = output
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + format
}

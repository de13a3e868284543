package cli

import (
	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// rerootOpts holds the command-line flags for the reroot command.
type rerootOpts struct {
	pos    string
	quatS  string
	output string
}

// rerootCommand creates the reroot command for changing a body's
// reference frame.
func (c *CLI) rerootCommand() *cobra.Command {
	var opts rerootOpts

	cmd := &cobra.Command{
		Use:   "reroot <model.xml> <body>",
		Short: "Move a body's reference frame without moving its contents",
		Long: `Reroot sets a body's pos/quat to the requested frame and compensates
every direct child so all geoms, sites, joints, and nested bodies stay
at their previous world locations. Joint axes are rotated along with
the frame. The compiled model is physically identical.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			wopts := mjcf.WriteOptions{
				Precision:     cfg.Export.Precision,
				ZeroThreshold: cfg.Export.ZeroThreshold,
			}
			return c.runReroot(args[0], args[1], opts, wopts)
		},
	}

	cmd.Flags().StringVar(&opts.pos, "pos", "", `new frame position as "x y z" (default origin)`)
	cmd.Flags().StringVar(&opts.quatS, "quat", "", `new frame orientation as "w x y z" (default identity)`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default overwrites the input)")

	return cmd
}

func (c *CLI) runReroot(input, bodyName string, opts rerootOpts, wopts mjcf.WriteOptions) error {
	m, err := c.loadModel(input)
	if err != nil {
		return err
	}

	var ropts mjcf.RerootOptions
	if opts.pos != "" {
		v, err := parseVec3(opts.pos)
		if err != nil {
			return err
		}
		ropts.Pos = &v
	}
	if opts.quatS != "" {
		q, err := parseQuat(opts.quatS)
		if err != nil {
			return err
		}
		ropts.Quat = &q
	}

	if err := mjcf.ChangeBodyFrame(m, bodyName, ropts); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = input
	}
	if err := mjcf.WriteFile(output, m, wopts); err != nil {
		return err
	}
	printSuccess("Rerooted %s", StyleValue.Render(bodyName))
	printFile(output)
	return nil
}

// parseVec3 parses a whitespace-separated "x y z" triple.
func parseVec3(s string) (quat.Vec3, error) {
	vals, err := mjcf.ParseFloats(s)
	if err != nil {
		return quat.Vec3{}, err
	}
	if len(vals) != 3 {
		return quat.Vec3{}, errors.New(errors.ErrCodeInvalidInput,
			"expected 3 components in %q, got %d", s, len(vals))
	}
	return quat.Vec3{vals[0], vals[1], vals[2]}, nil
}

// parseQuat parses a scalar-first "w x y z" quadruple.
func parseQuat(s string) (quat.Quat, error) {
	vals, err := mjcf.ParseFloats(s)
	if err != nil {
		return quat.Quat{}, err
	}
	if len(vals) != 4 {
		return quat.Quat{}, errors.New(errors.ErrCodeInvalidInput,
			"expected 4 components in %q, got %d", s, len(vals))
	}
	return quat.Quat{vals[0], vals[1], vals[2], vals[3]}, nil
}

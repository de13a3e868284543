package cli

import (
	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
)

// attachOpts holds the command-line flags for the attach command.
type attachOpts struct {
	prefix string
	output string
}

// attachCommand creates the attach command for model composition.
func (c *CLI) attachCommand() *cobra.Command {
	var opts attachOpts

	cmd := &cobra.Command{
		Use:   "attach <parent.xml> <child.xml> <body>",
		Short: "Graft one model into another under a body",
		Long: `Attach merges the child model into the parent under the named body
("worldbody" attaches at the top level). Every named element of the
child is renamed to "prefix/name" and all references inside the copied
elements are rewritten to match. Name collisions abort the merge.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			wopts := mjcf.WriteOptions{
				Precision:     cfg.Export.Precision,
				ZeroThreshold: cfg.Export.ZeroThreshold,
			}
			return c.runAttach(args[0], args[1], args[2], opts, wopts)
		},
	}

	cmd.Flags().StringVarP(&opts.prefix, "prefix", "p", "", "namespace prefix (default: the child model's name)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default overwrites the parent)")

	return cmd
}

func (c *CLI) runAttach(parentPath, childPath, bodyName string, opts attachOpts, wopts mjcf.WriteOptions) error {
	parent, err := c.loadModel(parentPath)
	if err != nil {
		return err
	}
	child, err := c.loadModel(childPath)
	if err != nil {
		return err
	}

	if err := mjcf.Attach(parent, child, bodyName, mjcf.AttachOptions{Prefix: opts.prefix}); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = parentPath
	}
	if err := mjcf.WriteFile(output, parent, wopts); err != nil {
		return err
	}
	printSuccess("Attached %s under %s", StyleValue.Render(child.Name()), StyleValue.Render(bodyName))
	printFile(output)
	return nil
}

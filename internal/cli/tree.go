package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/ktree"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	bodiesOnly  bool
	tags        []string
	maxDepth    int
	interactive bool
}

// treeCommand creates the tree command for text rendering of the
// kinematic tree.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree <model.xml>",
		Short: "Print the kinematic tree of a model",
		Long: `Tree extracts the worldbody subtree and prints it with box-drawing
characters, one node per element in document order. Use --bodies-only
for the body chain alone, or --interactive for a navigable browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.bodiesOnly, "bodies-only", "b", false, "show only body elements")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "restrict to the given element tags (e.g. body,joint)")
	cmd.Flags().IntVarP(&opts.maxDepth, "depth", "d", 0, "limit the rendered depth (0 = unlimited)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the tree interactively")

	return cmd
}

func (c *CLI) runTree(input string, opts treeOpts) error {
	m, err := c.loadModel(input)
	if err != nil {
		return err
	}

	tr, err := mjcf.Tree(m, mjcf.TreeOptions{
		BodiesOnly: opts.bodiesOnly,
		Tags:       opts.tags,
	})
	if err != nil {
		return err
	}

	if tr.NodeCount() == 0 {
		printWarning("%s has an empty worldbody", input)
		return nil
	}

	name := m.Name()
	if name == "" {
		name = input
	}

	if opts.interactive {
		return c.browseTree(name, tr)
	}
	fmt.Println(StyleTitle.Render(name))
	if err := ktree.WriteText(os.Stdout, tr, ktree.PrintOptions{MaxDepth: opts.maxDepth}); err != nil {
		return err
	}
	printDetail("%d elements, %d edges, depth %d",
		tr.NodeCount(), tr.EdgeCount(), tr.MaxDepth()+1)
	return nil
}

// metaSummary formats node metadata as "k=v" pairs for detail lines.
func metaSummary(meta ktree.Metadata) string {
	if len(meta) == 0 {
		return ""
	}
	parts := make([]string, 0, len(meta))
	for _, k := range []string{"type", "pos", "mass", "class"} {
		if v, ok := meta[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

package ktree

import (
	"fmt"
	"io"
)

// Box-drawing runes for the text rendering.
const (
	branchMid  = "├─── "
	branchLast = "└─── "
	pipeIndent = "│    "
	lastIndent = "     "
)

// PrintOptions configures the text rendering of a tree.
type PrintOptions struct {
	// MaxDepth limits the rendered depth. Zero means unlimited.
	MaxDepth int

	// Label formats a node into its display label. When nil, nodes render
	// as "tag: name" the way the interactive browser shows them.
	Label func(*Node) string
}

// DefaultLabel renders a node as "tag: name", with unnamed elements shown
// as "tag: (unnamed)".
func DefaultLabel(n *Node) string {
	name := n.ID
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s: %s", n.Tag, name)
}

// WriteText renders the tree to w using unicode box-drawing characters:
//
//	├─── body: torso
//	│    ├─── joint: root
//	│    └─── body: thigh
//	│         └─── geom: thigh_capsule
//	└─── body: floor
//
// Children are rendered in document order. Returns the first write error
// encountered.
func WriteText(w io.Writer, t *Tree, opts PrintOptions) error {
	label := opts.Label
	if label == nil {
		label = DefaultLabel
	}

	var render func(n *Node, prefix string, last bool, depth int) error
	render = func(n *Node, prefix string, last bool, depth int) error {
		connector := branchMid
		indent := pipeIndent
		if last {
			connector = branchLast
			indent = lastIndent
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label(n)); err != nil {
			return err
		}
		if opts.MaxDepth > 0 && depth+1 >= opts.MaxDepth {
			return nil
		}
		kids := t.Children(n.ID)
		for i, id := range kids {
			child, ok := t.Node(id)
			if !ok {
				continue
			}
			if err := render(child, prefix+indent, i == len(kids)-1, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	roots := t.Roots()
	for i, r := range roots {
		if err := render(r, "", i == len(roots)-1, 0); err != nil {
			return err
		}
	}
	return nil
}

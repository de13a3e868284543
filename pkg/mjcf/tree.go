package mjcf

import (
	"fmt"

	"github.com/janelia-anibody/mjcfutil/pkg/ktree"
)

// TreeOptions configures kinematic tree extraction.
type TreeOptions struct {
	// BodiesOnly keeps only body elements, re-parenting each body to its
	// nearest body ancestor.
	BodiesOnly bool

	// Tags limits extraction to the given element tags. Empty means all
	// worldbody descendants. Ignored when BodiesOnly is set.
	Tags []string
}

// treeMetaAttrs are MJCF attributes surfaced as node metadata when present.
var treeMetaAttrs = []string{"type", "pos", "mass", "class"}

// Tree extracts the kinematic tree of the model's worldbody subtree.
// Node IDs are element names; unnamed elements get positional IDs of the
// form "tag#n" so the tree structure survives even for anonymous geoms.
// MJCF namespaces names per element kind, so a body and its joint may
// legally share one name; the later element gets a "tag:name" ID to keep
// IDs unique across the tree. Children appear in document order and node
// depth equals XML nesting depth below the worldbody.
func Tree(m *Model, opts TreeOptions) (*ktree.Tree, error) {
	t := ktree.New()
	wb := m.Worldbody()
	if wb == nil {
		return t, nil
	}

	keep := map[string]bool{}
	for _, tag := range opts.Tags {
		keep[tag] = true
	}

	used := map[string]bool{}
	anon := map[string]int{}
	positional := func(tag string) string {
		for {
			anon[tag]++
			cand := fmt.Sprintf("%s#%d", tag, anon[tag])
			if !used[cand] {
				return cand
			}
		}
	}
	id := func(el *Element) string {
		cand := el.Name()
		if cand == "" {
			cand = positional(el.Tag)
		} else if used[cand] {
			cand = el.Tag + ":" + cand
			if used[cand] {
				cand = positional(el.Tag)
			}
		}
		used[cand] = true
		return cand
	}

	var add func(el *Element, parentID string, depth int) error
	add = func(el *Element, parentID string, depth int) error {
		for _, c := range el.Children {
			if len(keep) > 0 && !keep[c.Tag] {
				// Skipped tags do not contribute depth; their children are
				// not part of the kinematic tree either (only bodies nest).
				continue
			}
			cid := id(c)
			meta := ktree.Metadata{}
			for _, attr := range treeMetaAttrs {
				if v, ok := c.Attr(attr); ok {
					meta[attr] = v
				}
			}
			if err := t.AddNode(ktree.Node{ID: cid, Tag: c.Tag, Depth: depth, Meta: meta}); err != nil {
				return err
			}
			if parentID != "" {
				if err := t.AddEdge(ktree.Edge{From: parentID, To: cid}); err != nil {
					return err
				}
			}
			if err := add(c, cid, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := add(wb, "", 0); err != nil {
		return nil, err
	}

	if opts.BodiesOnly {
		return t.FilterTags("body"), nil
	}
	return t, nil
}

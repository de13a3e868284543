package ktree

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique across the tree.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownParentNode is returned by [Tree.AddEdge] when the parent
	// node does not exist.
	ErrUnknownParentNode = errors.New("unknown parent node")

	// ErrUnknownChildNode is returned by [Tree.AddEdge] when the child node
	// does not exist.
	ErrUnknownChildNode = errors.New("unknown child node")

	// ErrInvalidEdgeEndpoint is returned by [Tree.Validate] when an edge
	// references a node that doesn't exist. This indicates tree corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNonConsecutiveDepths is returned by [Tree.Validate] when an edge
	// connects nodes whose depths are not adjacent (parent.Depth+1 !=
	// child.Depth). Kinematic trees are strictly layered by nesting depth.
	ErrNonConsecutiveDepths = errors.New("edges must connect consecutive depths")

	// ErrMultipleParents is returned by [Tree.Validate] when a node has
	// more than one incoming edge. A kinematic chain never shares a child
	// body between two parents.
	ErrMultipleParents = errors.New("node has multiple parents")

	// ErrTreeHasCycle is returned by [Tree.Validate] when a cycle is
	// detected via depth-first search with white/gray/black coloring.
	ErrTreeHasCycle = errors.New("tree contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
// It typically carries MJCF attributes worth surfacing in visualizations
// (joint type, geom type, mass). Metadata maps are never nil - they are
// automatically initialized to empty maps when needed.
type Metadata map[string]any

// Node represents an element in the kinematic tree with its nesting depth.
// The ID is the element's qualified name; Tag is the MJCF element tag
// (body, joint, geom, site, camera, light, ...).
//
// The zero value is not usable - ID must be set before adding to a Tree.
type Node struct {
	ID    string   // Unique identifier (qualified element name)
	Tag   string   // MJCF element tag
	Depth int      // Nesting depth (0 = worldbody children, increasing downward)
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge represents a parent-child relation between two nodes in consecutive
// depths. For a valid edge, child.Depth == parent.Depth + 1. This
// constraint is enforced by Validate.
type Edge struct {
	From string // Parent node ID
	To   string // Child node ID
}

// Tree is a kinematic tree extracted from an MJCF model, organized into
// horizontal layers by nesting depth. The layering mirrors the XML nesting
// of the worldbody subtree and enables depth-by-depth traversal for text
// and graph rendering.
//
// The zero value is not usable - use New to create a valid Tree instance.
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	nodes    map[string]*Node
	edges    []Edge
	children map[string][]string // nodeID -> child IDs, insertion order
	parent   map[string]string   // nodeID -> parent ID
	depths   map[int][]*Node     // depth -> nodes at that depth
}

// New creates an empty Tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parent:   make(map[string]string),
		depths:   make(map[int][]*Node),
	}
}

// AddNode adds a node to the tree and indexes it by its Depth.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. The node's Meta field is
// automatically initialized to an empty map if nil.
func (t *Tree) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	t.nodes[node.ID] = node
	t.depths[node.Depth] = append(t.depths[node.Depth], node)
	return nil
}

// AddEdge adds a parent-child edge between two existing nodes.
// Returns ErrUnknownParentNode if the From node doesn't exist, or
// ErrUnknownChildNode if the To node doesn't exist.
//
// AddEdge does not validate that From.Depth+1 == To.Depth - use Validate
// to check this constraint after building the tree.
func (t *Tree) AddEdge(e Edge) error {
	if _, ok := t.nodes[e.From]; !ok {
		return ErrUnknownParentNode
	}
	if _, ok := t.nodes[e.To]; !ok {
		return ErrUnknownChildNode
	}
	t.edges = append(t.edges, e)
	t.children[e.From] = append(t.children[e.From], e.To)
	t.parent[e.To] = e.From
	return nil
}

// Nodes returns all nodes in the tree.
// The order is not guaranteed. The returned slice contains pointers to
// the actual node structs, so modifications affect the tree.
func (t *Tree) Nodes() []*Node {
	nodes := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (t *Tree) Edges() []Edge { return slices.Clone(t.edges) }

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of edges in the tree.
func (t *Tree) EdgeCount() int { return len(t.edges) }

// Node returns the node with the given ID and true, or nil and false if
// not found.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Children returns the IDs of the node's children in insertion order,
// which matches MJCF document order. The returned slice should not be
// modified - use it as a read-only view.
func (t *Tree) Children(id string) []string { return t.children[id] }

// Parent returns the ID of the node's parent and true, or "" and false
// for roots and unknown nodes.
func (t *Tree) Parent(id string) (string, bool) {
	p, ok := t.parent[id]
	return p, ok
}

// NodesAtDepth returns all nodes assigned to the given depth in insertion
// order. Returns nil if the depth is empty.
func (t *Tree) NodesAtDepth(depth int) []*Node { return t.depths[depth] }

// MaxDepth returns the highest depth index, or 0 if the tree is empty.
func (t *Tree) MaxDepth() int {
	max := 0
	for d := range t.depths {
		if d > max {
			max = d
		}
	}
	return max
}

// Depths returns all depth indices in sorted ascending order.
func (t *Tree) Depths() []int {
	return slices.Sorted(maps.Keys(t.depths))
}

// Roots returns nodes with no parent (direct children of the worldbody)
// in document order.
func (t *Tree) Roots() []*Node {
	var roots []*Node
	for _, d := range t.Depths() {
		for _, n := range t.depths[d] {
			if _, ok := t.parent[n.ID]; !ok {
				roots = append(roots, n)
			}
		}
	}
	return roots
}

// Leaves returns nodes with no children. The order is not guaranteed.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	for _, n := range t.nodes {
		if len(t.children[n.ID]) == 0 {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

// FilterTags returns a new tree containing only nodes whose Tag is in
// keep, re-parented transitively: a kept node's parent becomes its nearest
// kept ancestor. Depths are recomputed from the surviving structure.
// This backs the bodies-only view of a kinematic tree.
func (t *Tree) FilterTags(keep ...string) *Tree {
	keepSet := make(map[string]bool, len(keep))
	for _, tag := range keep {
		keepSet[tag] = true
	}

	out := New()

	// nearestKept walks up the parent chain to the closest surviving node.
	nearestKept := func(id string) (string, bool) {
		p, ok := t.parent[id]
		for ok {
			if n := t.nodes[p]; keepSet[n.Tag] {
				return p, true
			}
			p, ok = t.parent[p]
		}
		return "", false
	}

	newDepth := make(map[string]int)
	var depthOf func(id string) int
	depthOf = func(id string) int {
		if d, ok := newDepth[id]; ok {
			return d
		}
		d := 0
		if p, ok := nearestKept(id); ok {
			d = depthOf(p) + 1
		}
		newDepth[id] = d
		return d
	}

	for _, d := range t.Depths() {
		for _, n := range t.depths[d] {
			if !keepSet[n.Tag] {
				continue
			}
			_ = out.AddNode(Node{ID: n.ID, Tag: n.Tag, Depth: depthOf(n.ID), Meta: n.Meta})
		}
	}
	for _, d := range t.Depths() {
		for _, n := range t.depths[d] {
			if !keepSet[n.Tag] {
				continue
			}
			if p, ok := nearestKept(n.ID); ok {
				_ = out.AddEdge(Edge{From: p, To: n.ID})
			}
		}
	}
	return out
}

// Validate checks tree integrity and returns nil if valid.
// It verifies three constraints:
//
//  1. All edges connect existing nodes in consecutive depths
//     (From.Depth+1 == To.Depth)
//  2. No node has more than one parent
//  3. The structure is acyclic
//
// Returns ErrInvalidEdgeEndpoint, ErrNonConsecutiveDepths,
// ErrMultipleParents, or ErrTreeHasCycle accordingly. Use this before
// rendering or traversals that assume a well-formed kinematic tree.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (t *Tree) Validate() error {
	seen := make(map[string]int)
	for _, e := range t.edges {
		src, okS := t.nodes[e.From]
		dst, okD := t.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if dst.Depth != src.Depth+1 {
			return ErrNonConsecutiveDepths
		}
		seen[e.To]++
		if seen[e.To] > 1 {
			return ErrMultipleParents
		}
	}
	return t.detectCycles()
}

func (t *Tree) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(t.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range t.children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for id := range t.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrTreeHasCycle
			}
		}
	}
	return nil
}

// Package mjcf implements parsing, validation, manipulation, and clean
// re-export of MuJoCo MJCF model files.
//
// MJCF is an XML dialect in which attribute and child order carry meaning
// (defaults cascade, bodies nest into a kinematic tree, and degrees of
// freedom are assigned in document order). The package therefore keeps
// models as an ordered element tree rather than mapping them onto fixed
// structs, with typed accessors layered on top for the attributes the
// tooling manipulates (pos, quat, name, class).
//
// The main entry points are [ParseFile] to load a model, [Model] for
// navigation and manipulation, and [Write] for clean deterministic export.
package mjcf

import (
	"slices"
	"strings"
)

// Attr is a single XML attribute. Order is preserved so that re-exported
// models diff cleanly against their source.
type Attr struct {
	Key   string
	Value string
}

// Element is a node in the MJCF document tree. Both attributes and
// children keep document order.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the value of the named attribute, or def when absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// SetAttr sets the named attribute, replacing an existing value in place
// or appending a new attribute at the end.
func (e *Element) SetAttr(key, value string) {
	for i, a := range e.Attrs {
		if a.Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
}

// DelAttr removes the named attribute if present.
func (e *Element) DelAttr(key string) {
	e.Attrs = slices.DeleteFunc(e.Attrs, func(a Attr) bool { return a.Key == key })
}

// Name returns the element's name attribute, or "" for unnamed elements.
func (e *Element) Name() string {
	return e.AttrOr("name", "")
}

// Child returns the first child with the given tag, or nil.
func (e *Element) Child(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns all direct children with the given tag in
// document order.
func (e *Element) ChildrenByTag(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Append adds a child element at the end.
func (e *Element) Append(c *Element) {
	e.Children = append(e.Children, c)
}

// Remove deletes the first occurrence of child, comparing by pointer.
// It reports whether the child was found.
func (e *Element) Remove(child *Element) bool {
	for i, c := range e.Children {
		if c == child {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Walk visits e and every descendant in document order. The visitor
// receives each element together with its parent (nil for e itself).
// Returning false from fn stops descent into that element's children.
func (e *Element) Walk(fn func(el, parent *Element) bool) {
	var walk func(el, parent *Element)
	walk = func(el, parent *Element) {
		if !fn(el, parent) {
			return
		}
		for _, c := range el.Children {
			walk(c, el)
		}
	}
	walk(e, nil)
}

// Find returns the first descendant (not e itself) with the given tag and
// name attribute, or nil.
func (e *Element) Find(tag, name string) *Element {
	var found *Element
	e.Walk(func(el, parent *Element) bool {
		if found != nil {
			return false
		}
		if parent != nil && el.Tag == tag && el.Name() == name {
			found = el
			return false
		}
		return true
	})
	return found
}

// Clone returns a deep copy of the element subtree.
func (e *Element) Clone() *Element {
	out := &Element{
		Tag:   e.Tag,
		Attrs: slices.Clone(e.Attrs),
	}
	for _, c := range e.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

// String returns a compact single-line description for logs and errors,
// e.g. `<body name="torso">`.
func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(e.Tag)
	if n := e.Name(); n != "" {
		sb.WriteString(` name="`)
		sb.WriteString(n)
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	return sb.String()
}

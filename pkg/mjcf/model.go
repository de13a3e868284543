package mjcf

import (
	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// Model wraps a parsed MJCF document. Root is always the <mujoco> element.
// Path is the source file (empty for models parsed from a reader).
type Model struct {
	Root *Element
	Path string
}

// jointTags are the element tags that introduce degrees of freedom.
var jointTags = map[string]bool{"joint": true, "freejoint": true}

// Name returns the model name (the <mujoco model="..."> attribute).
func (m *Model) Name() string {
	return m.Root.AttrOr("model", "")
}

// SetName sets the model name attribute.
func (m *Model) SetName(name string) {
	m.Root.SetAttr("model", name)
}

// Section returns the first top-level section with the given tag
// (worldbody, asset, actuator, default, ...), or nil if absent.
func (m *Model) Section(tag string) *Element {
	return m.Root.Child(tag)
}

// EnsureSection returns the named top-level section, creating an empty one
// if the model does not have it yet.
func (m *Model) EnsureSection(tag string) *Element {
	if s := m.Root.Child(tag); s != nil {
		return s
	}
	s := &Element{Tag: tag}
	m.Root.Append(s)
	return s
}

// Worldbody returns the <worldbody> section, or nil for a model without one.
func (m *Model) Worldbody() *Element {
	return m.Section("worldbody")
}

// FindBody returns the named body in the worldbody subtree.
// Returns a BODY_NOT_FOUND error if the body does not exist.
func (m *Model) FindBody(name string) (*Element, error) {
	if wb := m.Worldbody(); wb != nil {
		if b := wb.Find("body", name); b != nil {
			return b, nil
		}
	}
	return nil, errors.New(errors.ErrCodeBodyNotFound, "no body named %q", name)
}

// FindJoint returns the named joint in the worldbody subtree.
// Returns a JOINT_NOT_FOUND error if the joint does not exist.
func (m *Model) FindJoint(name string) (*Element, error) {
	wb := m.Worldbody()
	if wb != nil {
		var found *Element
		wb.Walk(func(el, parent *Element) bool {
			if found == nil && parent != nil && jointTags[el.Tag] && el.Name() == name {
				found = el
			}
			return found == nil
		})
		if found != nil {
			return found, nil
		}
	}
	return nil, errors.New(errors.ErrCodeJointNotFound, "no joint named %q", name)
}

// FindSite returns the named site in the worldbody subtree.
// Returns a SITE_NOT_FOUND error if the site does not exist.
func (m *Model) FindSite(name string) (*Element, error) {
	if wb := m.Worldbody(); wb != nil {
		if s := wb.Find("site", name); s != nil {
			return s, nil
		}
	}
	return nil, errors.New(errors.ErrCodeSiteNotFound, "no site named %q", name)
}

// FindActuator returns the named actuator (any transmission type) from the
// <actuator> section. Returns an ACTUATOR_NOT_FOUND error if absent.
func (m *Model) FindActuator(name string) (*Element, error) {
	if sec := m.Section("actuator"); sec != nil {
		for _, a := range sec.Children {
			if a.Name() == name {
				return a, nil
			}
		}
	}
	return nil, errors.New(errors.ErrCodeActuatorNotFound, "no actuator named %q", name)
}

// Bodies returns every body in the worldbody subtree in document order.
func (m *Model) Bodies() []*Element {
	var out []*Element
	if wb := m.Worldbody(); wb != nil {
		wb.Walk(func(el, parent *Element) bool {
			if parent != nil && el.Tag == "body" {
				out = append(out, el)
			}
			return true
		})
	}
	return out
}

// Joints returns every joint and freejoint in the worldbody subtree in
// document order. Document order determines MuJoCo's DoF addressing.
func (m *Model) Joints() []*Element {
	var out []*Element
	if wb := m.Worldbody(); wb != nil {
		wb.Walk(func(el, parent *Element) bool {
			if parent != nil && jointTags[el.Tag] {
				out = append(out, el)
			}
			return true
		})
	}
	return out
}

// Actuators returns the children of the <actuator> section in document
// order. Document order determines actuator addressing.
func (m *Model) Actuators() []*Element {
	if sec := m.Section("actuator"); sec != nil {
		return sec.Children
	}
	return nil
}

// BodyOf returns the body element that directly contains el in the
// worldbody subtree, or the worldbody itself for top-level elements.
// Returns nil if el is not in the worldbody subtree.
func (m *Model) BodyOf(el *Element) *Element {
	wb := m.Worldbody()
	if wb == nil {
		return nil
	}
	parents := map[*Element]*Element{}
	wb.Walk(func(e, parent *Element) bool {
		if parent != nil {
			parents[e] = parent
		}
		return true
	})
	p, ok := parents[el]
	for ok {
		if p.Tag == "body" || p.Tag == "worldbody" {
			return p
		}
		p, ok = parents[p]
	}
	return nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	return &Model{Root: m.Root.Clone(), Path: m.Path}
}

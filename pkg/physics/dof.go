package physics

import (
	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
)

// Joint types and their degree-of-freedom counts. MuJoCo assigns DoF
// addresses in document order: a free joint consumes 6 velocity DoFs, a
// ball joint 3, hinge and slide 1 each.
const (
	JointFree  = "free"
	JointBall  = "ball"
	JointHinge = "hinge"
	JointSlide = "slide"
)

// DofCount returns the number of velocity degrees of freedom for a joint
// type. Unknown types count as hinge, matching the MJCF default.
func DofCount(jointType string) int {
	switch jointType {
	case JointFree:
		return 6
	case JointBall:
		return 3
	default:
		return 1
	}
}

// JointInfo describes one joint of the model with its assigned DoF
// address range.
type JointInfo struct {
	Name   string // joint name ("" for anonymous joints)
	Type   string // free, ball, hinge, or slide
	Body   string // name of the body carrying the joint
	DofAdr int    // first DoF index
	DofIDs []int  // all DoF indices, len == DofCount(Type)

	// Declared dynamics attributes, zero when absent.
	Stiffness float64
	Damping   float64
}

// jointType resolves the effective type of a joint element: <freejoint>
// is free, <joint> defaults to hinge.
func jointType(el *mjcf.Element) string {
	if el.Tag == "freejoint" {
		return JointFree
	}
	return el.AttrOr("type", JointHinge)
}

// DofTable enumerates all joints in document order with their DoF
// address assignments, mirroring mjModel.jnt_dofadr.
func DofTable(m *mjcf.Model) []JointInfo {
	var table []JointInfo
	adr := 0
	for _, el := range m.Joints() {
		jt := jointType(el)
		n := DofCount(jt)
		ids := make([]int, n)
		for i := range ids {
			ids[i] = adr + i
		}

		info := JointInfo{
			Name:   el.Name(),
			Type:   jt,
			DofAdr: adr,
			DofIDs: ids,
		}
		if body := bodyNameOf(m, el); body != "" {
			info.Body = body
		}
		if v, ok := el.Attr("stiffness"); ok {
			if vals, err := mjcf.ParseFloats(v); err == nil && len(vals) == 1 {
				info.Stiffness = vals[0]
			}
		}
		if v, ok := el.Attr("damping"); ok {
			if vals, err := mjcf.ParseFloats(v); err == nil && len(vals) == 1 {
				info.Damping = vals[0]
			}
		}

		table = append(table, info)
		adr += n
	}
	return table
}

// JointDofs returns the DoF indices for the named joint. A free joint
// yields 6 indices, a ball joint 3, hinge and slide a single index.
// These indices address qvel, qfrc_applied, and the other per-DoF arrays
// of a compiled model.
func JointDofs(m *mjcf.Model, jointName string) ([]int, error) {
	if jointName == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "joint name must be provided")
	}
	for _, info := range DofTable(m) {
		if info.Name == jointName {
			return info.DofIDs, nil
		}
	}
	return nil, errors.New(errors.ErrCodeJointNotFound, "no joint named %q", jointName)
}

// bodyNameOf returns the name of the body directly containing el.
func bodyNameOf(m *mjcf.Model, el *mjcf.Element) string {
	if b := m.BodyOf(el); b != nil {
		if b.Tag == "worldbody" {
			return "worldbody"
		}
		return b.Name()
	}
	return ""
}

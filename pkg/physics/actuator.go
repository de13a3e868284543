package physics

import (
	"math"

	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
)

// ActuatorParams holds the gain/bias parametrization of an actuator in
// mjModel terms. MJCF shorthand elements (<motor>, <position>, <velocity>)
// expand to the same parametrization the <general> element declares
// explicitly.
type ActuatorParams struct {
	Name     string
	BiasType string // "none" or "affine"
	GainPrm  [3]float64
	BiasPrm  [3]float64
}

// attrFloat reads a scalar float attribute with a default.
func attrFloat(el *mjcf.Element, key string, def float64) float64 {
	v, ok := el.Attr(key)
	if !ok {
		return def
	}
	vals, err := mjcf.ParseFloats(v)
	if err != nil || len(vals) == 0 {
		return def
	}
	return vals[0]
}

// attrFloat3 reads up to three floats into a fixed array, zero-padded.
func attrFloat3(el *mjcf.Element, key string) [3]float64 {
	var out [3]float64
	v, ok := el.Attr(key)
	if !ok {
		return out
	}
	vals, err := mjcf.ParseFloats(v)
	if err != nil {
		return out
	}
	for i := 0; i < len(vals) && i < 3; i++ {
		out[i] = vals[i]
	}
	return out
}

// Params expands an actuator element into its gain/bias parametrization,
// applying MuJoCo's shorthand rules:
//
//	motor:    gainprm=(1,0,0)      biasprm=0          biastype=none
//	position: gainprm=(kp,0,0)     biasprm=(0,-kp,-kv) biastype=affine
//	velocity: gainprm=(kv,0,0)     biasprm=(0,0,-kv)  biastype=affine
//	general:  declared attributes  (biastype defaults to none)
func Params(el *mjcf.Element) ActuatorParams {
	p := ActuatorParams{Name: el.Name(), BiasType: "none"}
	switch el.Tag {
	case "position":
		kp := attrFloat(el, "kp", 1)
		kv := attrFloat(el, "kv", 0)
		p.BiasType = "affine"
		p.GainPrm = [3]float64{kp, 0, 0}
		p.BiasPrm = [3]float64{0, -kp, -kv}
	case "velocity":
		kv := attrFloat(el, "kv", 1)
		p.BiasType = "affine"
		p.GainPrm = [3]float64{kv, 0, 0}
		p.BiasPrm = [3]float64{0, 0, -kv}
	case "motor":
		p.GainPrm = [3]float64{1, 0, 0}
	default: // general and cylinder-style elements declare parameters
		p.BiasType = el.AttrOr("biastype", "none")
		p.GainPrm = attrFloat3(el, "gainprm")
		if _, ok := el.Attr("gainprm"); !ok {
			p.GainPrm = [3]float64{1, 0, 0}
		}
		p.BiasPrm = attrFloat3(el, "biasprm")
	}
	return p
}

const closeTol = 1e-9

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= closeTol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// IsPositionActuator reports whether the actuator implements pure
// position servo control, parametrized as:
//
//	biastype: affine
//	gainprm:  (kp, 0, 0)
//	biasprm:  (0, -kp, 0)
//
// A position actuator with explicit velocity feedback (kv != 0) is not
// "pure" under this definition and reports false.
func IsPositionActuator(el *mjcf.Element) bool {
	p := Params(el)
	return p.BiasType == "affine" &&
		isClose(p.GainPrm[0], -p.BiasPrm[1]) &&
		p.GainPrm[1] == 0 && p.GainPrm[2] == 0 &&
		p.BiasPrm[0] == 0 && p.BiasPrm[2] == 0
}

// DampingOptions configures [CriticalDamping].
type DampingOptions struct {
	// ActuatorName selects the actuator supplying the servo spring
	// constant. Empty means an actuator with the same name as the joint.
	ActuatorName string

	// JointSpring includes the joint's stiffness attribute in the spring
	// constant.
	JointSpring bool

	// ActuatorSpring includes the actuator's gainprm[0] (servo kp) in the
	// spring constant.
	ActuatorSpring bool
}

// CriticalDamping computes the critical damping coefficient for a scalar
// joint: 2*sqrt(k*I), where k combines the joint stiffness spring and/or
// the actuator servo gain, and I is the subtree inertia about the joint
// axis at the reference pose (subtree mass for slide joints).
//
// Ball and free joints have no scalar damping coefficient and are
// rejected with an UNSUPPORTED error. Bodies in the subtree must declare
// explicit <inertial> elements; otherwise a NO_INERTIAL error is
// returned.
func CriticalDamping(m *mjcf.Model, jointName string, opts DampingOptions) (float64, error) {
	joint, err := m.FindJoint(jointName)
	if err != nil {
		return 0, err
	}

	spring := 0.0
	if opts.JointSpring {
		spring += attrFloat(joint, "stiffness", 0)
	}
	if opts.ActuatorSpring {
		name := opts.ActuatorName
		if name == "" {
			name = jointName
		}
		act, err := m.FindActuator(name)
		if err != nil {
			return 0, err
		}
		spring += Params(act).GainPrm[0]
	}

	inertia, err := SubtreeAxisInertia(m, jointName)
	if err != nil {
		return 0, err
	}

	return 2 * math.Sqrt(spring*inertia), nil
}

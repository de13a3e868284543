package physics

import (
	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// inertial is the parsed form of a body's <inertial> element.
type inertial struct {
	Mass        float64
	Pos         quat.Vec3 // center of mass in the body frame
	Quat        quat.Quat // inertial frame orientation in the body frame
	DiagInertia quat.Vec3 // principal moments in the inertial frame
}

func parseInertial(m *mjcf.Model, body *mjcf.Element) (*inertial, error) {
	el := body.Child("inertial")
	if el == nil {
		return nil, nil
	}
	in := &inertial{Quat: quat.Identity()}
	in.Mass = attrFloat(el, "mass", 0)

	pos, err := el.Pos()
	if err != nil {
		return nil, err
	}
	in.Pos = pos

	q, err := m.Orientation(el)
	if err != nil {
		return nil, err
	}
	in.Quat = q

	if v, ok := el.Attr("diaginertia"); ok {
		vals, err := mjcf.ParseFloats(v)
		if err != nil {
			return nil, err
		}
		if len(vals) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidModel,
				"%s: diaginertia must have 3 components", el)
		}
		in.DiagInertia = quat.Vec3{vals[0], vals[1], vals[2]}
	}
	return in, nil
}

// bodyPoses computes the world pose of every body element at the
// reference pose, keyed by element pointer so anonymous bodies resolve
// too.
func bodyPoses(m *mjcf.Model) (map[*mjcf.Element]Pose, error) {
	poses := make(map[*mjcf.Element]Pose)
	wb := m.Worldbody()
	if wb == nil {
		return poses, nil
	}
	poses[wb] = Pose{Quat: quat.Identity()}

	var walk func(el *mjcf.Element, parent Pose) error
	walk = func(el *mjcf.Element, parent Pose) error {
		for _, c := range el.Children {
			if c.Tag != "body" {
				continue
			}
			pos, err := c.Pos()
			if err != nil {
				return err
			}
			q, err := m.Orientation(c)
			if err != nil {
				return err
			}
			pose := Pose{Pos: parent.Transform(pos), Quat: quat.Mul(parent.Quat, q)}
			poses[c] = pose
			if err := walk(c, pose); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(wb, poses[wb]); err != nil {
		return nil, err
	}
	return poses, nil
}

// subtreeBodies returns body and every descendant body element.
func subtreeBodies(body *mjcf.Element) []*mjcf.Element {
	var out []*mjcf.Element
	body.Walk(func(el, parent *mjcf.Element) bool {
		if el.Tag == "body" {
			out = append(out, el)
		}
		return true
	})
	return out
}

// SubtreeAxisInertia computes the inertia seen by a scalar joint at the
// reference pose, with all other joints locked: the total subtree mass
// for slide joints, and for hinge joints the subtree moment of inertia
// about the joint's world axis line, combining each body's declared
// principal moments (rotated into the world frame) with the parallel
// axis term for its center of mass offset.
//
// This matches the diagonal of the reference-pose mass matrix that
// MuJoCo exposes as dof_M0 for the joint's degree of freedom.
func SubtreeAxisInertia(m *mjcf.Model, jointName string) (float64, error) {
	joint, err := m.FindJoint(jointName)
	if err != nil {
		return 0, err
	}
	jt := jointType(joint)
	if jt != JointHinge && jt != JointSlide {
		return 0, errors.New(errors.ErrCodeUnsupported,
			"joint %q has type %s; axis inertia is defined for hinge and slide joints", jointName, jt)
	}

	body := m.BodyOf(joint)
	if body == nil || body.Tag != "body" {
		return 0, errors.New(errors.ErrCodeInvalidModel, "joint %q is not inside a body", jointName)
	}

	poses, err := bodyPoses(m)
	if err != nil {
		return 0, err
	}
	bodyPose, ok := poses[body]
	if !ok {
		return 0, errors.New(errors.ErrCodeInternal, "no pose for body of joint %q", jointName)
	}

	// World-frame anchor point and axis of the joint.
	jpos, err := joint.Pos()
	if err != nil {
		return 0, err
	}
	anchor := bodyPose.Transform(jpos)

	axis := quat.Vec3{0, 0, 1}
	if v, ok := joint.Attr("axis"); ok {
		vals, err := mjcf.ParseFloats(v)
		if err != nil {
			return 0, err
		}
		if len(vals) == 3 {
			axis = quat.Vec3{vals[0], vals[1], vals[2]}
		}
	}
	axis = quat.RotateVec(axis, bodyPose.Quat)
	if n := quat.VecNorm(axis); n > 0 {
		axis = quat.Scale(axis, 1/n)
	}

	total := 0.0
	for _, b := range subtreeBodies(body) {
		in, err := parseInertial(m, b)
		if err != nil {
			return 0, err
		}
		if in == nil {
			// Massless connector bodies are fine; bodies with geometry
			// but no explicit inertial would need the compiler's
			// mass inference, which we do not replicate.
			if b.Child("geom") != nil {
				return 0, errors.New(errors.ErrCodeNoInertial,
					"body %q has geoms but no explicit <inertial>; cannot compute subtree inertia", b.Name())
			}
			continue
		}

		pose := poses[b]
		if jt == JointSlide {
			total += in.Mass
			continue
		}

		// World center of mass and inertial frame orientation.
		com := pose.Transform(in.Pos)
		rot := quat.Mul(pose.Quat, in.Quat)

		// Principal moments projected on the axis direction:
		// a^T (R diag R^T) a = sum_i diag_i * (R e_i . a)^2
		var proj float64
		basis := [3]quat.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		for i, e := range basis {
			col := quat.RotateVec(e, rot)
			d := quat.Dot(col, axis)
			proj += in.DiagInertia[i] * d * d
		}

		// Parallel axis: perpendicular distance of the COM from the
		// joint axis line.
		r := quat.Sub(com, anchor)
		rPar := quat.Scale(axis, quat.Dot(r, axis))
		rPerp := quat.Sub(r, rPar)
		proj += in.Mass * quat.Dot(rPerp, rPerp)

		total += proj
	}
	return total, nil
}

// SubtreeMass returns the total declared inertial mass of the named
// body's subtree.
func SubtreeMass(m *mjcf.Model, bodyName string) (float64, error) {
	body, err := m.FindBody(bodyName)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, b := range subtreeBodies(body) {
		in, err := parseInertial(m, b)
		if err != nil {
			return 0, err
		}
		if in != nil {
			total += in.Mass
		}
	}
	return total, nil
}

package mjcf

import (
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// posedTags are the element tags whose pos attribute is interpreted in
// the parent body frame and must be compensated when that frame moves.
var posedTags = map[string]bool{
	"body": true, "geom": true, "site": true, "joint": true,
	"camera": true, "light": true, "inertial": true,
}

// orientedTags are the posed tags that additionally carry an orientation.
// Joints are oriented through their axis attribute instead of quat.
var orientedTags = map[string]bool{
	"body": true, "geom": true, "site": true, "camera": true, "inertial": true,
}

// RerootOptions specifies the new frame for [ChangeBodyFrame].
// Nil fields keep MJCF defaults: origin position, identity rotation.
type RerootOptions struct {
	Pos  *quat.Vec3
	Quat *quat.Quat
}

// ChangeBodyFrame changes the reference frame of the named body in place
// while keeping every child element at its previous world location. The
// body's pos/quat are set to the requested frame and all direct children
// are translated and rotated to compensate, so the compiled model is
// physically identical.
//
// Joint axes are rotated along with the frame so joint motion directions
// are preserved.
func ChangeBodyFrame(m *Model, bodyName string, opts RerootOptions) error {
	body, err := m.FindBody(bodyName)
	if err != nil {
		return err
	}

	framePos := quat.Vec3{}
	if opts.Pos != nil {
		framePos = *opts.Pos
	}
	frameQuat := quat.Identity()
	if opts.Quat != nil {
		frameQuat = quat.Normalize(*opts.Quat)
	}

	bodyPos, err := body.Pos()
	if err != nil {
		return err
	}
	bodyQuat, err := m.Orientation(body)
	if err != nil {
		return err
	}

	// Frame transformation from the new frame to the old one.
	dpos := quat.Sub(bodyPos, framePos)
	dquat := quat.Mul(quat.Conj(frameQuat), bodyQuat)

	// Move the body to the new frame.
	body.SetPos(framePos)
	body.SetQuat(frameQuat)

	// Restore each child's world pose.
	for _, child := range body.Children {
		if !posedTags[child.Tag] {
			continue
		}
		if orientedTags[child.Tag] {
			// Resolve euler/axisangle/xyaxes/zaxis too; SetQuat drops the
			// alternative specifier along with writing the compensated quat.
			childQuat, err := m.Orientation(child)
			if err != nil {
				return err
			}
			child.SetQuat(quat.Mul(dquat, childQuat))
		}
		if child.Tag == "joint" && dquat != quat.Identity() {
			if err := rotateJointAxis(child, dquat); err != nil {
				return err
			}
		}

		childPos, err := child.Pos()
		if err != nil {
			return err
		}
		posInParent := quat.Add(quat.RotateVec(childPos, bodyQuat), dpos)
		child.SetPos(quat.RotateVec(posInParent, quat.Conj(frameQuat)))
	}

	return nil
}

// rotateJointAxis rotates an explicit joint axis by dq. Joints without an
// axis attribute use the MJCF default (0 0 1), which must then be written
// out explicitly to survive the frame change.
func rotateJointAxis(joint *Element, dq quat.Quat) error {
	axis := quat.Vec3{0, 0, 1}
	if v, ok := joint.Attr("axis"); ok {
		vals, err := ParseFloats(v)
		if err != nil {
			return err
		}
		if len(vals) == 3 {
			axis = quat.Vec3{vals[0], vals[1], vals[2]}
		}
	}
	rotated := quat.RotateVec(axis, dq)
	joint.SetAttr("axis", formatFull(rotated[:]))
	return nil
}

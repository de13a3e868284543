// Package physics implements model queries that MuJoCo answers from a
// compiled mjModel, recomputed here directly from the declared MJCF
// attributes: forward kinematics at the reference pose, joint to
// degree-of-freedom mapping, actuator classification, and critical
// damping estimates.
//
// All quantities are evaluated at qpos0, the model's reference
// configuration, which is the only pose fully determined by the XML.
package physics

import (
	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// Pose is a world-frame position and orientation.
type Pose struct {
	Pos  quat.Vec3
	Quat quat.Quat
}

// Transform maps a point from the local frame of the pose into the world
// frame.
func (p Pose) Transform(local quat.Vec3) quat.Vec3 {
	return quat.Add(p.Pos, quat.RotateVec(local, p.Quat))
}

// Kinematics holds world poses for every named body and site of a model,
// evaluated at the reference pose qpos0 (all joint values zero).
type Kinematics struct {
	bodies map[string]Pose
	sites  map[string]Pose
}

// Forward computes forward kinematics over the worldbody subtree.
// Each body's world pose composes its parent's pose with the body's
// declared pos/quat; unset attributes default to origin and identity.
// Unnamed bodies are traversed but not indexed.
func Forward(m *mjcf.Model) (*Kinematics, error) {
	k := &Kinematics{
		bodies: make(map[string]Pose),
		sites:  make(map[string]Pose),
	}
	wb := m.Worldbody()
	if wb == nil {
		return k, nil
	}

	world := Pose{Quat: quat.Identity()}
	k.bodies["worldbody"] = world

	var walk func(el *mjcf.Element, parent Pose) error
	walk = func(el *mjcf.Element, parent Pose) error {
		for _, c := range el.Children {
			switch c.Tag {
			case "body":
				pos, err := c.Pos()
				if err != nil {
					return err
				}
				q, err := m.Orientation(c)
				if err != nil {
					return err
				}
				pose := Pose{
					Pos:  parent.Transform(pos),
					Quat: quat.Mul(parent.Quat, q),
				}
				if name := c.Name(); name != "" {
					k.bodies[name] = pose
				}
				if err := walk(c, pose); err != nil {
					return err
				}
			case "site":
				pos, err := c.Pos()
				if err != nil {
					return err
				}
				q, err := m.Orientation(c)
				if err != nil {
					return err
				}
				if name := c.Name(); name != "" {
					k.sites[name] = Pose{
						Pos:  parent.Transform(pos),
						Quat: quat.Mul(parent.Quat, q),
					}
				}
			}
		}
		return nil
	}

	if err := walk(wb, world); err != nil {
		return nil, err
	}
	return k, nil
}

// BodyPose returns the world pose of the named body ("worldbody" for the
// world frame).
func (k *Kinematics) BodyPose(name string) (Pose, error) {
	p, ok := k.bodies[name]
	if !ok {
		return Pose{}, errors.New(errors.ErrCodeBodyNotFound, "no body named %q", name)
	}
	return p, nil
}

// SiteWorldPos returns the world position of the named site.
func (k *Kinematics) SiteWorldPos(name string) (quat.Vec3, error) {
	p, ok := k.sites[name]
	if !ok {
		return quat.Vec3{}, errors.New(errors.ErrCodeSiteNotFound, "no site named %q", name)
	}
	return p.Pos, nil
}

// SitePosInBodyFrame returns the position of a world-frame point in the
// local reference frame of the named body, as if the point were a child
// of that body. The site can live anywhere in the model, not only under
// the queried body.
func (k *Kinematics) SitePosInBodyFrame(bodyName string, siteWorld quat.Vec3) (quat.Vec3, error) {
	body, err := k.BodyPose(bodyName)
	if err != nil {
		return quat.Vec3{}, err
	}
	rel := quat.Sub(siteWorld, body.Pos)
	return quat.RotateVec(rel, quat.Reciprocal(body.Quat)), nil
}

// SiteInBodyFrame is a convenience wrapper resolving the site by name
// before calling [Kinematics.SitePosInBodyFrame].
func (k *Kinematics) SiteInBodyFrame(bodyName, siteName string) (quat.Vec3, error) {
	world, err := k.SiteWorldPos(siteName)
	if err != nil {
		return quat.Vec3{}, err
	}
	return k.SitePosInBodyFrame(bodyName, world)
}

// BodyNames returns the indexed body names, for diagnostics.
func (k *Kinematics) BodyNames() []string {
	names := make([]string, 0, len(k.bodies))
	for n := range k.bodies {
		names = append(names, n)
	}
	return names
}

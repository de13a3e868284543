package mjcf

import (
	"math"
	"strings"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// altOrientationAttrs are the orientation specifiers MJCF accepts in
// place of quat. An element may carry at most one orientation specifier.
var altOrientationAttrs = []string{"euler", "axisangle", "xyaxes", "zaxis"}

// compilerSetting reads an attribute of the <compiler> section with an
// MJCF default.
func (m *Model) compilerSetting(key, def string) string {
	if c := m.Section("compiler"); c != nil {
		if v, ok := c.Attr(key); ok {
			return v
		}
	}
	return def
}

// angleToRadians converts a declared angle to radians per the compiler's
// angle setting. MJCF defaults to degrees.
func (m *Model) angleToRadians(v float64) float64 {
	if m.compilerSetting("angle", "degree") == "degree" {
		return v * math.Pi / 180
	}
	return v
}

// Orientation resolves the effective orientation of an element from
// whichever specifier it carries: quat, euler (per the compiler's angle
// unit and eulerseq), axisangle, xyaxes, or zaxis. An absent specifier
// means identity; more than one is rejected with an INVALID_FRAME error,
// matching the MuJoCo compiler.
func (m *Model) Orientation(el *Element) (quat.Quat, error) {
	var found []string
	for _, k := range append([]string{"quat"}, altOrientationAttrs...) {
		if _, ok := el.Attr(k); ok {
			found = append(found, k)
		}
	}
	switch len(found) {
	case 0:
		return quat.Identity(), nil
	case 1:
	default:
		return quat.Identity(), errors.New(errors.ErrCodeInvalidFrame,
			"%s: multiple orientation specifiers (%s)", el, strings.Join(found, ", "))
	}

	switch found[0] {
	case "quat":
		return el.Quat()
	case "euler":
		vals, err := orientationFloats(el, "euler", 3)
		if err != nil {
			return quat.Identity(), err
		}
		angles := quat.Vec3{
			m.angleToRadians(vals[0]),
			m.angleToRadians(vals[1]),
			m.angleToRadians(vals[2]),
		}
		return quat.FromEuler(m.compilerSetting("eulerseq", "xyz"), angles), nil
	case "axisangle":
		vals, err := orientationFloats(el, "axisangle", 4)
		if err != nil {
			return quat.Identity(), err
		}
		axis := quat.Vec3{vals[0], vals[1], vals[2]}
		return quat.FromAxisAngle(axis, m.angleToRadians(vals[3])), nil
	case "zaxis":
		vals, err := orientationFloats(el, "zaxis", 3)
		if err != nil {
			return quat.Identity(), err
		}
		return zAxisQuat(quat.Vec3{vals[0], vals[1], vals[2]}), nil
	default: // xyaxes
		vals, err := orientationFloats(el, "xyaxes", 6)
		if err != nil {
			return quat.Identity(), err
		}
		x := quat.Vec3{vals[0], vals[1], vals[2]}
		y := quat.Vec3{vals[3], vals[4], vals[5]}
		return xyAxesQuat(x, y)
	}
}

func orientationFloats(el *Element, key string, n int) ([]float64, error) {
	vals, err := ParseFloats(el.AttrOr(key, ""))
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, errors.New(errors.ErrCodeInvalidFrame,
			"%s: %s must have %d components, got %d", el, key, n, len(vals))
	}
	return vals, nil
}

// zAxisQuat returns the minimal rotation mapping (0,0,1) onto v.
func zAxisQuat(v quat.Vec3) quat.Quat {
	n := quat.VecNorm(v)
	if n == 0 {
		return quat.Identity()
	}
	v = quat.Scale(v, 1/n)

	z := quat.Vec3{0, 0, 1}
	axis := quat.Cross(z, v)
	s := quat.VecNorm(axis)
	c := quat.Dot(z, v)
	if s < 1e-12 {
		if c > 0 {
			return quat.Identity()
		}
		// Antiparallel: any perpendicular axis works.
		return quat.FromAxisAngle(quat.Vec3{1, 0, 0}, math.Pi)
	}
	return quat.FromAxisAngle(axis, math.Atan2(s, c))
}

// xyAxesQuat builds the orientation whose frame x and y axes are the
// given vectors, orthogonalizing y against x the way the MuJoCo compiler
// does.
func xyAxesQuat(x, y quat.Vec3) (quat.Quat, error) {
	nx := quat.VecNorm(x)
	if nx == 0 {
		return quat.Identity(), errors.New(errors.ErrCodeInvalidFrame, "xyaxes x axis must be nonzero")
	}
	x = quat.Scale(x, 1/nx)

	z := quat.Cross(x, y)
	nz := quat.VecNorm(z)
	if nz == 0 {
		return quat.Identity(), errors.New(errors.ErrCodeInvalidFrame, "xyaxes axes must not be parallel")
	}
	z = quat.Scale(z, 1/nz)
	y = quat.Cross(z, x)

	return matQuat(x, y, z), nil
}

// matQuat converts a rotation matrix given by its column vectors to a
// quaternion.
func matQuat(x, y, z quat.Vec3) quat.Quat {
	m00, m01, m02 := x[0], y[0], z[0]
	m10, m11, m12 := x[1], y[1], z[1]
	m20, m21, m22 := x[2], y[2], z[2]

	var q quat.Quat
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Quat{s / 4, (m21 - m12) / s, (m02 - m20) / s, (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Quat{(m21 - m12) / s, s / 4, (m01 + m10) / s, (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Quat{(m02 - m20) / s, (m01 + m10) / s, s / 4, (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Quat{(m10 - m01) / s, (m02 + m20) / s, (m12 + m21) / s, s / 4}
	}
	return quat.Normalize(q)
}

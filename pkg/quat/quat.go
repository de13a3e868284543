// Package quat implements the small set of quaternion and 3-vector
// operations needed for MJCF frame manipulation.
//
// Quaternions use MuJoCo's (w, x, y, z) scalar-first convention and are
// represented as plain [4]float64 arrays, so model attribute values can be
// passed through without conversion. All rotation operations assume unit
// quaternions unless stated otherwise.
package quat

import "math"

// Quat is a quaternion in scalar-first (w, x, y, z) order, matching the
// MJCF `quat` attribute convention.
type Quat [4]float64

// Vec3 is a 3-vector, matching the MJCF `pos` attribute convention.
type Vec3 [3]float64

// Identity returns the identity rotation (1, 0, 0, 0).
func Identity() Quat { return Quat{1, 0, 0, 0} }

// Mul returns the Hamilton product a*b, the rotation b followed by a.
func Mul(a, b Quat) Quat {
	return Quat{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

// Conj returns the conjugate (w, -x, -y, -z). For unit quaternions this is
// the inverse rotation.
func Conj(q Quat) Quat { return Quat{q[0], -q[1], -q[2], -q[3]} }

// Norm returns the Euclidean norm of q.
func Norm(q Quat) float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalize returns q scaled to unit norm. A zero quaternion normalizes to
// the identity rotation rather than NaN, so un-set model attributes behave
// as "no rotation".
func Normalize(q Quat) Quat {
	n := Norm(q)
	if n == 0 {
		return Identity()
	}
	return Quat{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// Reciprocal returns the multiplicative inverse q^-1 = conj(q)/|q|^2.
// For unit quaternions this equals Conj. The reciprocal of a zero
// quaternion is the identity.
func Reciprocal(q Quat) Quat {
	n2 := q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3]
	if n2 == 0 {
		return Identity()
	}
	c := Conj(q)
	return Quat{c[0] / n2, c[1] / n2, c[2] / n2, c[3] / n2}
}

// RotateVec rotates v by the unit quaternion q, computing q * (0,v) * q^-1.
func RotateVec(v Vec3, q Quat) Vec3 {
	p := Quat{0, v[0], v[1], v[2]}
	r := Mul(Mul(q, p), Reciprocal(q))
	return Vec3{r[1], r[2], r[3]}
}

// FromAxisAngle returns the unit quaternion for a rotation of angle radians
// about axis. The axis is normalized internally; a zero axis yields the
// identity rotation.
func FromAxisAngle(axis Vec3, angle float64) Quat {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n == 0 {
		return Identity()
	}
	s := math.Sin(angle/2) / n
	return Quat{math.Cos(angle / 2), axis[0] * s, axis[1] * s, axis[2] * s}
}

// FromEuler returns the unit quaternion for the Euler angles (radians)
// applied per seq, one axis letter per angle. Lowercase letters rotate
// about the axes of the moving frame (intrinsic), uppercase about the
// fixed parent axes (extrinsic), matching the MJCF compiler's eulerseq
// attribute. The default MJCF sequence is "xyz".
func FromEuler(seq string, angles Vec3) Quat {
	axes := map[byte]Vec3{
		'x': {1, 0, 0}, 'y': {0, 1, 0}, 'z': {0, 0, 1},
		'X': {1, 0, 0}, 'Y': {0, 1, 0}, 'Z': {0, 0, 1},
	}
	q := Identity()
	for i := 0; i < len(seq) && i < 3; i++ {
		axis, ok := axes[seq[i]]
		if !ok {
			continue
		}
		r := FromAxisAngle(axis, angles[i])
		if seq[i] >= 'a' {
			q = Mul(q, r)
		} else {
			q = Mul(r, q)
		}
	}
	return q
}

// Angle returns the rotation angle of the unit quaternion q in radians,
// in [0, pi].
func Angle(q Quat) float64 {
	w := q[0]
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	return 2 * math.Acos(math.Abs(w))
}

// Add returns a+b componentwise.
func Add(a, b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

// Sub returns a-b componentwise.
func Sub(a, b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

// Scale returns v scaled by s.
func Scale(v Vec3, s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// Cross returns the cross product a x b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// VecNorm returns the Euclidean norm of v.
func VecNorm(v Vec3) float64 { return math.Sqrt(Dot(v, v)) }

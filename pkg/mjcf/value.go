package mjcf

import (
	"math"
	"strconv"
	"strings"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// ParseFloats parses a space-separated MJCF float list such as
// "0 0 1.5 -0.25". It returns an error if any field is not numeric.
func ParseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty float list")
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad float %q", f)
		}
		out[i] = v
	}
	return out, nil
}

// FormatFloats renders values as a space-separated MJCF float list.
// Each value is printed with at most precision significant digits, and
// values whose absolute magnitude falls below zeroThreshold are written
// as 0. This mirrors MuJoCo's own XML export options.
func FormatFloats(values []float64, precision int, zeroThreshold float64) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if math.Abs(v) < zeroThreshold {
			v = 0
		}
		parts[i] = strconv.FormatFloat(v, 'g', precision, 64)
	}
	return strings.Join(parts, " ")
}

// numericAttrs are the MJCF attributes whose values are float lists and
// may be re-formatted on export. String attributes such as name or class
// can look numeric ("007") and must be written back verbatim.
var numericAttrs = map[string]bool{
	"pos": true, "quat": true, "euler": true, "axisangle": true,
	"xyaxes": true, "zaxis": true, "axis": true, "size": true,
	"fromto": true, "rgba": true, "mass": true, "diaginertia": true,
	"fullinertia": true, "range": true, "ctrlrange": true,
	"forcerange": true, "actuatorfrcrange": true, "gear": true,
	"gainprm": true, "biasprm": true, "dynprm": true, "kp": true,
	"kv": true, "solref": true, "solimp": true, "solreffriction": true,
	"solimpfriction": true, "stiffness": true, "damping": true,
	"armature": true, "frictionloss": true, "friction": true,
	"margin": true, "gap": true, "ref": true, "springref": true,
	"timestep": true, "gravity": true, "wind": true, "density": true,
	"viscosity": true, "scale": true, "fovy": true, "ipd": true,
	"dir": true, "diffuse": true, "specular": true, "ambient": true,
	"springlength": true, "gravcomp": true,
}

// isFloatList reports whether s parses entirely as a list of floats.
// Used by the writer to decide which attribute values to re-format.
func isFloatList(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}

// Pos returns the element's pos attribute as a vector. Absent attributes
// default to the origin, matching MJCF semantics.
func (e *Element) Pos() (quat.Vec3, error) {
	v, ok := e.Attr("pos")
	if !ok {
		return quat.Vec3{}, nil
	}
	vals, err := ParseFloats(v)
	if err != nil {
		return quat.Vec3{}, err
	}
	if len(vals) != 3 {
		return quat.Vec3{}, errors.New(errors.ErrCodeInvalidFrame,
			"%s: pos must have 3 components, got %d", e, len(vals))
	}
	return quat.Vec3{vals[0], vals[1], vals[2]}, nil
}

// Quat returns the element's quat attribute. Absent attributes default to
// the identity rotation, matching MJCF semantics.
func (e *Element) Quat() (quat.Quat, error) {
	v, ok := e.Attr("quat")
	if !ok {
		return quat.Identity(), nil
	}
	vals, err := ParseFloats(v)
	if err != nil {
		return quat.Identity(), err
	}
	if len(vals) != 4 {
		return quat.Identity(), errors.New(errors.ErrCodeInvalidFrame,
			"%s: quat must have 4 components, got %d", e, len(vals))
	}
	return quat.Quat{vals[0], vals[1], vals[2], vals[3]}, nil
}

// SetPos writes the element's pos attribute at full precision. Rounding
// happens at export time, not on mutation.
func (e *Element) SetPos(p quat.Vec3) {
	e.SetAttr("pos", formatFull(p[:]))
}

// SetQuat writes the element's quat attribute at full precision and
// drops any alternative orientation specifier (euler, axisangle, xyaxes,
// zaxis), so the element carries exactly one orientation.
func (e *Element) SetQuat(q quat.Quat) {
	e.SetAttr("quat", formatFull(q[:]))
	for _, k := range altOrientationAttrs {
		e.DelAttr(k)
	}
}

// formatFull renders floats with the shortest exact representation.
func formatFull(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

package mjcf

import (
	"fmt"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// Severity classifies a validation finding.
type Severity int

const (
	// SeverityWarning marks constructs that load but usually indicate a
	// modeling mistake.
	SeverityWarning Severity = iota
	// SeverityError marks constructs MuJoCo's compiler would reject.
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Finding is a single validation result.
type Finding struct {
	Severity Severity
	Code     errors.Code
	Element  string // compact element description, e.g. `<geom name="foot">`
	Message  string
}

// String renders the finding for terminal output.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Element, f.Message)
}

// HasErrors reports whether any finding has SeverityError.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the model for constructs MuJoCo's compiler would reject:
// duplicate names within a namespace, dangling references (actuator
// joints, geom meshes, material textures, equality bodies, tendon sites),
// malformed frame attributes, and misplaced free joints. Results are
// returned in document order, errors and warnings interleaved.
func Validate(m *Model) []Finding {
	v := &validator{model: m}
	v.collectNames()
	v.checkDuplicates()
	v.checkFrames()
	v.checkWorldbody()
	v.checkReferences()
	v.checkFreeJoints()
	return v.findings
}

type validator struct {
	model    *Model
	findings []Finding

	// names[namespace][name] = occurrence count
	names map[string]map[string]int
}

func (v *validator) errorf(el *Element, code errors.Code, format string, args ...any) {
	v.findings = append(v.findings, Finding{
		Severity: SeverityError,
		Code:     code,
		Element:  el.String(),
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) warnf(el *Element, code errors.Code, format string, args ...any) {
	v.findings = append(v.findings, Finding{
		Severity: SeverityWarning,
		Code:     code,
		Element:  el.String(),
		Message:  fmt.Sprintf(format, args...),
	})
}

// namespaceOf maps an element tag to its MuJoCo name namespace.
// Joints and freejoints share a namespace; all actuator transmission
// types share the "actuator" namespace.
func namespaceOf(el *Element, parent *Element) string {
	switch el.Tag {
	case "body", "geom", "site", "camera", "light",
		"mesh", "material", "texture", "hfield", "skin":
		return el.Tag
	case "joint", "freejoint":
		return "joint"
	}
	if parent != nil {
		switch parent.Tag {
		case "actuator":
			return "actuator"
		case "sensor":
			return "sensor"
		case "tendon":
			return "tendon"
		}
	}
	return ""
}

func (v *validator) collectNames() {
	v.names = make(map[string]map[string]int)
	v.model.Root.Walk(func(el, parent *Element) bool {
		ns := namespaceOf(el, parent)
		if ns == "" {
			return true
		}
		name := el.Name()
		if name == "" {
			return true
		}
		if v.names[ns] == nil {
			v.names[ns] = make(map[string]int)
		}
		v.names[ns][name]++
		return true
	})
}

func (v *validator) checkDuplicates() {
	reported := make(map[string]bool)
	v.model.Root.Walk(func(el, parent *Element) bool {
		ns := namespaceOf(el, parent)
		if ns == "" {
			return true
		}
		name := el.Name()
		if name == "" {
			return true
		}
		key := ns + "\x00" + name
		if v.names[ns][name] > 1 && !reported[key] {
			reported[key] = true
			v.errorf(el, errors.ErrCodeInvalidModel,
				"duplicate %s name %q (%d occurrences)", ns, name, v.names[ns][name])
		}
		return true
	})
}

// frameAttrs are attributes with a fixed float arity.
var frameAttrs = map[string]int{
	"pos":       3,
	"quat":      4,
	"axis":      3,
	"euler":     3,
	"axisangle": 4,
	"xyaxes":    6,
	"zaxis":     3,
}

func (v *validator) checkFrames() {
	v.model.Root.Walk(func(el, parent *Element) bool {
		for attr, arity := range frameAttrs {
			val, ok := el.Attr(attr)
			if !ok {
				continue
			}
			vals, err := ParseFloats(val)
			if err != nil {
				v.errorf(el, errors.ErrCodeInvalidFrame, "%s: %s", attr, errors.UserMessage(err))
				continue
			}
			if len(vals) != arity {
				v.errorf(el, errors.ErrCodeInvalidFrame,
					"%s must have %d components, got %d", attr, arity, len(vals))
			}
		}
		return true
	})
}

func (v *validator) checkWorldbody() {
	wb := v.model.Worldbody()
	if wb == nil {
		v.warnf(v.model.Root, errors.ErrCodeInvalidModel, "model has no <worldbody>")
		return
	}
	for _, attr := range []string{"name", "pos", "quat"} {
		if _, ok := wb.Attr(attr); ok {
			v.errorf(wb, errors.ErrCodeInvalidModel,
				"worldbody cannot have a %s attribute", attr)
		}
	}
}

// refAttrs maps reference attributes to the namespace they must resolve
// in. Checked on every element; MJCF reuses these attribute names
// consistently across actuators, sensors, equality and contact sections.
var refAttrs = map[string]string{
	"joint":      "joint",
	"joint1":     "joint",
	"joint2":     "joint",
	"site":       "site",
	"refsite":    "site",
	"cranksite":  "site",
	"slidersite": "site",
	"body1":      "body",
	"body2":      "body",
	"mesh":       "mesh",
	"material":   "material",
	"texture":    "texture",
	"hfield":     "hfield",
	"tendon":     "tendon",
	"tendon1":    "tendon",
	"tendon2":    "tendon",
}

// refCheckSkip lists elements whose attributes happen to collide with
// reference attribute names but mean something else.
func refCheckSkip(el *Element, parent *Element) bool {
	// <body name=...> has no reference attributes; its "childclass" and
	// frame attributes are handled elsewhere. Asset definitions are the
	// targets of references, not sources.
	if parent != nil && parent.Tag == "asset" {
		// A <texture> or <mesh> definition carries no references except
		// material->texture, which is not an asset child.
		return el.Tag != "material"
	}
	return false
}

func (v *validator) checkReferences() {
	v.model.Root.Walk(func(el, parent *Element) bool {
		if refCheckSkip(el, parent) {
			return true
		}
		for attr, ns := range refAttrs {
			val, ok := el.Attr(attr)
			if !ok || val == "" {
				continue
			}
			if v.names[ns][val] == 0 {
				v.errorf(el, errors.ErrCodeInvalidReference,
					"%s references unknown %s %q", attr, ns, val)
			}
		}
		return true
	})
}

func (v *validator) checkFreeJoints() {
	wb := v.model.Worldbody()
	if wb == nil {
		return
	}
	wb.Walk(func(el, parent *Element) bool {
		if el.Tag != "freejoint" && !(el.Tag == "joint" && el.AttrOr("type", "") == "free") {
			return true
		}
		// A free joint is only valid on a body whose parent is the
		// worldbody itself.
		if parent == nil || parent.Tag != "body" {
			v.errorf(el, errors.ErrCodeInvalidModel, "free joint outside a body")
			return true
		}
		if grand := v.model.BodyOf(parent); grand != nil && grand.Tag != "worldbody" {
			v.warnf(el, errors.ErrCodeInvalidModel,
				"free joint on nested body %q", parent.Name())
		}
		return true
	})
}

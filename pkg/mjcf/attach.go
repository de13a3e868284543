package mjcf

import (
	"strings"

	"github.com/google/uuid"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// AttachOptions configures [Attach].
type AttachOptions struct {
	// Prefix namespaces every named element of the attached model as
	// "prefix/name", following MuJoCo's attachment convention. When empty,
	// the child model's name is used; an unnamed child model gets a short
	// random identifier.
	Prefix string
}

// namespaced sections of the child model that are merged into the parent
// alongside the worldbody subtree.
var mergedSections = []string{"asset", "actuator", "tendon", "sensor", "equality", "contact"}

// Attach grafts the child model into the parent under the named body
// ("worldbody" attaches at the top level). Every named element of the
// child is renamed to "prefix/name" and all reference attributes inside
// the copied elements are rewritten to match. The child's asset,
// actuator, tendon, sensor, equality, and contact sections are merged
// into the parent's.
//
// The parent model is modified in place; the child is not. Name
// collisions after prefixing are reported as ATTACH_CONFLICT errors
// rather than silently renamed.
func Attach(parent, child *Model, bodyName string, opts AttachOptions) error {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = child.Name()
	}
	if prefix == "" {
		prefix = "attachment-" + uuid.NewString()[:8]
	}
	if err := errors.ValidateAttachPrefix(prefix); err != nil {
		return err
	}

	var target *Element
	if bodyName == "worldbody" || bodyName == "" {
		target = parent.EnsureSection("worldbody")
	} else {
		b, err := parent.FindBody(bodyName)
		if err != nil {
			return err
		}
		target = b
	}

	childCopy := child.Clone()
	rename := renameNamespaced(childCopy, prefix)

	if err := checkCollisions(parent, rename); err != nil {
		return err
	}

	// Graft the worldbody subtree.
	if wb := childCopy.Worldbody(); wb != nil {
		for _, c := range wb.Children {
			target.Append(c)
		}
	}

	// Merge the auxiliary sections.
	for _, tag := range mergedSections {
		src := childCopy.Section(tag)
		if src == nil || len(src.Children) == 0 {
			continue
		}
		dst := parent.EnsureSection(tag)
		for _, c := range src.Children {
			dst.Append(c)
		}
	}

	return nil
}

// renameNamespaced prefixes every name attribute and reference attribute
// in the model and returns the old-name -> new-name mapping per namespace.
func renameNamespaced(m *Model, prefix string) map[string]map[string]string {
	rename := make(map[string]map[string]string)

	m.Root.Walk(func(el, par *Element) bool {
		ns := namespaceOf(el, par)
		if ns == "" {
			return true
		}
		name := el.Name()
		if name == "" {
			return true
		}
		renamed := prefix + "/" + name
		el.SetAttr("name", renamed)
		if rename[ns] == nil {
			rename[ns] = make(map[string]string)
		}
		rename[ns][name] = renamed
		return true
	})

	// Rewrite references to the renamed elements.
	m.Root.Walk(func(el, par *Element) bool {
		for attr, ns := range refAttrs {
			val, ok := el.Attr(attr)
			if !ok || val == "" {
				continue
			}
			if renamed, ok := rename[ns][val]; ok {
				el.SetAttr(attr, renamed)
			}
		}
		// Sensor object references carry their namespace in a sibling
		// objtype/reftype attribute.
		for _, pair := range [][2]string{{"objtype", "objname"}, {"reftype", "refname"}} {
			val, ok := el.Attr(pair[1])
			if !ok || val == "" {
				continue
			}
			ns := el.AttrOr(pair[0], "")
			if renamed, ok := rename[ns][val]; ok {
				el.SetAttr(pair[1], renamed)
			}
		}
		// Default class references keep working because class names are
		// not namespaced; childclass and class attributes pass through.
		return true
	})

	return rename
}

// checkCollisions verifies that no renamed element clashes with an
// existing parent name in the same namespace.
func checkCollisions(parent *Model, rename map[string]map[string]string) error {
	existing := make(map[string]map[string]bool)
	parent.Root.Walk(func(el, par *Element) bool {
		ns := namespaceOf(el, par)
		if ns == "" {
			return true
		}
		if name := el.Name(); name != "" {
			if existing[ns] == nil {
				existing[ns] = make(map[string]bool)
			}
			existing[ns][name] = true
		}
		return true
	})

	var clashes []string
	for ns, names := range rename {
		for _, renamed := range names {
			if existing[ns][renamed] {
				clashes = append(clashes, ns+" "+renamed)
			}
		}
	}
	if len(clashes) > 0 {
		return errors.New(errors.ErrCodeAttachConflict,
			"name collision after prefixing: %s", strings.Join(clashes, ", "))
	}
	return nil
}

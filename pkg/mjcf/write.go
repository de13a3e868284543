package mjcf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// Default export options, matching MuJoCo's XML save conventions.
const (
	// DefaultPrecision is the number of significant digits for floating
	// point attribute values.
	DefaultPrecision = 5

	// DefaultZeroThreshold is the magnitude below which floating point
	// attribute values are written as exact zero.
	DefaultZeroThreshold = 1e-7
)

// WriteOptions configures clean XML export.
type WriteOptions struct {
	// Precision is the number of significant digits for float attributes.
	// Zero selects DefaultPrecision.
	Precision int

	// ZeroThreshold clamps float attributes with smaller magnitude to 0.
	// Negative disables clamping; zero selects DefaultZeroThreshold.
	ZeroThreshold float64
}

func (o WriteOptions) precision() int {
	if o.Precision <= 0 {
		return DefaultPrecision
	}
	return o.Precision
}

func (o WriteOptions) zeroThreshold() float64 {
	if o.ZeroThreshold < 0 {
		return 0
	}
	if o.ZeroThreshold == 0 {
		return DefaultZeroThreshold
	}
	return o.ZeroThreshold
}

// Write serializes the model to w as clean, deterministic MJCF:
//
//   - float attribute values re-formatted to the configured precision,
//     with near-zero values clamped to exact zero
//   - redundant attributes dropped (class="/" and gravcomp="0", which
//     MuJoCo's dirty export emits on every body)
//   - a single top-level default class hoisted out of its wrapper
//   - two-space indentation with a blank line between top-level sections
//
// The model itself is not modified; cleaning happens on a copy.
func Write(w io.Writer, m *Model, opts WriteOptions) error {
	root := m.Root.Clone()
	clean(root)

	bw := &errWriter{w: w}
	writeElement(bw, root, 0, opts)
	return bw.err
}

// String renders the model to a string using [Write].
func String(m *Model, opts WriteOptions) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, m, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteFile renders the model to the named file using [Write].
func WriteFile(path string, m *Model, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return Write(f, m, opts)
}

// clean removes export artifacts in place.
func clean(root *Element) {
	// Hoist a lone default wrapper: dirty exports wrap all defaults in an
	// outer <default class="/"> element.
	if def := root.Child("default"); def != nil {
		if len(def.Children) == 1 && def.Children[0].Tag == "default" {
			inner := def.Children[0]
			if c, ok := inner.Attr("class"); !ok || c == "/" {
				def.Attrs = nil
				def.Children = inner.Children
			}
		}
		if len(def.Children) == 0 {
			root.Remove(def)
		}
	}

	root.Walk(func(el, parent *Element) bool {
		if v, ok := el.Attr("class"); ok && v == "/" {
			el.DelAttr("class")
		}
		if v, ok := el.Attr("gravcomp"); ok && v == "0" {
			el.DelAttr("gravcomp")
		}
		return true
	})
}

// errWriter sticks at the first error so the recursive writer does not
// need error plumbing at every call site.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) writef(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func writeElement(w *errWriter, el *Element, depth int, opts WriteOptions) {
	indent := strings.Repeat("  ", depth)

	w.writef("%s<%s", indent, el.Tag)
	for _, a := range el.Attrs {
		v := a.Value
		if numericAttrs[a.Key] && isFloatList(v) {
			vals, err := ParseFloats(v)
			if err == nil {
				v = FormatFloats(vals, opts.precision(), opts.zeroThreshold())
			}
		}
		w.writef(" %s=\"%s\"", a.Key, escapeAttr(v))
	}

	if len(el.Children) == 0 {
		w.writef("/>\n")
		return
	}
	w.writef(">\n")
	for i, c := range el.Children {
		writeElement(w, c, depth+1, opts)
		// Blank lines separate top-level sections for readability.
		if depth == 0 && i < len(el.Children)-1 {
			w.writef("\n")
		}
	}
	w.writef("%s</%s>\n", indent, el.Tag)
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

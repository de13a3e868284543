package mjcf

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

// MaxIncludeDepth bounds nested <include> resolution. MuJoCo itself allows
// arbitrary nesting; the bound exists to turn include cycles that survive
// path canonicalization into errors instead of stack exhaustion.
const MaxIncludeDepth = 16

// Parse reads an MJCF document from r. The root element must be <mujoco>.
// <include> elements are left in place because a plain reader has no base
// directory; use [ParseFile] to load a model with includes resolved.
func Parse(r io.Reader) (*Model, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidXML, "no root element found")
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidXML, err, "read token")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "mujoco" {
			return nil, errors.New(errors.ErrCodeInvalidModel,
				"root element must be <mujoco>, got <%s>", start.Name.Local)
		}
		root, err := decodeElement(dec, start)
		if err != nil {
			return nil, err
		}
		return &Model{Root: root}, nil
	}
}

// ParseFile loads an MJCF model from path and resolves <include> elements
// relative to the file's directory. Include cycles and nesting beyond
// [MaxIncludeDepth] are reported as errors.
func ParseFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "parse %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m.Path = abs

	seen := map[string]bool{abs: true}
	if err := resolveIncludes(m.Root, filepath.Dir(abs), seen, 0); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeElement reads the subtree rooted at start into an Element.
// Character data and comments are dropped: MJCF elements carry no text
// content, and MuJoCo's own save path discards comments as well.
func decodeElement(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	el := &Element{Tag: start.Name.Local}
	for _, a := range start.Attr {
		// Drop namespace declarations; MJCF does not use them.
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		el.Attrs = append(el.Attrs, Attr{Key: a.Name.Local, Value: a.Value})
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidXML, "unexpected EOF inside <%s>", el.Tag)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidXML, err, "read token inside <%s>", el.Tag)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		case xml.EndElement:
			return el, nil
		}
	}
}

// resolveIncludes splices the children of each included file's <mujoco>
// root in place of the <include> element, recursively. Cycles are detected
// by canonical absolute path.
func resolveIncludes(el *Element, dir string, seen map[string]bool, depth int) error {
	if depth > MaxIncludeDepth {
		return errors.New(errors.ErrCodeIncludeDepth,
			"includes nested deeper than %d levels", MaxIncludeDepth)
	}

	var expanded []*Element
	for _, c := range el.Children {
		if c.Tag != "include" {
			if err := resolveIncludes(c, dir, seen, depth); err != nil {
				return err
			}
			expanded = append(expanded, c)
			continue
		}

		file, ok := c.Attr("file")
		if !ok || file == "" {
			return errors.New(errors.ErrCodeInvalidModel, "<include> without file attribute")
		}
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return errors.New(errors.ErrCodeIncludeCycle, "include cycle via %s", abs)
		}
		seen[abs] = true

		f, err := os.Open(abs)
		if err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "include %s", file)
		}
		inc, err := Parse(f)
		f.Close()
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "include %s", file)
		}
		if err := resolveIncludes(inc.Root, filepath.Dir(abs), seen, depth+1); err != nil {
			return err
		}
		expanded = append(expanded, inc.Root.Children...)
	}
	el.Children = expanded
	return nil
}

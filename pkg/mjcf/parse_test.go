package mjcf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

func TestParseRejectsNonMujocoRoot(t *testing.T) {
	_, err := Parse(strings.NewReader(`<robot name="r"/>`))
	if !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("expected INVALID_MODEL for non-mujoco root, got %v", err)
	}
}

func TestParseMalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader(`<mujoco><worldbody></mujoco>`))
	if !errors.Is(err, errors.ErrCodeInvalidXML) {
		t.Errorf("expected INVALID_XML for malformed input, got %v", err)
	}
}

func TestParseDropsNonElementContent(t *testing.T) {
	m := parse(t, `<mujoco>
  <!-- a comment -->
  <worldbody>
    some stray text
    <body name="b"/>
  </worldbody>
</mujoco>`)

	wb := m.Worldbody()
	if wb == nil {
		t.Fatal("no worldbody")
	}
	if len(wb.Children) != 1 || wb.Children[0].Tag != "body" {
		t.Errorf("comments and chardata should be dropped: %v", wb.Children)
	}
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseFileResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "arm.xml", `<mujoco>
  <worldbody>
    <body name="arm"><joint name="elbow"/></body>
  </worldbody>
</mujoco>`)
	main := writeTestFile(t, dir, "main.xml", `<mujoco model="robot">
  <include file="arm.xml"/>
  <worldbody>
    <body name="torso"/>
  </worldbody>
</mujoco>`)

	m, err := ParseFile(main)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	// The included file's children are spliced in place of <include>.
	if m.Root.Child("include") != nil {
		t.Error("include element should be replaced by the included content")
	}
	if _, err := m.FindBody("arm"); err != nil {
		t.Errorf("included body not found: %v", err)
	}
	if _, err := m.FindBody("torso"); err != nil {
		t.Errorf("own body not found: %v", err)
	}
}

func TestParseFileNestedIncludePathsAreRelative(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "parts")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, sub, "hand.xml", `<mujoco>
  <worldbody><body name="hand"/></worldbody>
</mujoco>`)
	main := writeTestFile(t, dir, "main.xml", `<mujoco>
  <include file="parts/hand.xml"/>
  <worldbody/>
</mujoco>`)

	m, err := ParseFile(main)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if _, err := m.FindBody("hand"); err != nil {
		t.Errorf("nested include body not found: %v", err)
	}
}

func TestParseFileIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.xml", `<mujoco><include file="b.xml"/></mujoco>`)
	writeTestFile(t, dir, "b.xml", `<mujoco><include file="a.xml"/></mujoco>`)

	_, err := ParseFile(filepath.Join(dir, "a.xml"))
	if !errors.Is(err, errors.ErrCodeIncludeCycle) {
		t.Errorf("expected INCLUDE_CYCLE, got %v", err)
	}
}

func TestParseFileMissingInclude(t *testing.T) {
	dir := t.TempDir()
	main := writeTestFile(t, dir, "main.xml", `<mujoco><include file="missing.xml"/></mujoco>`)

	_, err := ParseFile(main)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.xml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

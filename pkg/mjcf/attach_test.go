package mjcf

import (
	"strings"
	"testing"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
)

const gripperXML = `<mujoco model="gripper">
  <asset>
    <mesh name="palm_mesh" file="palm.stl"/>
  </asset>
  <worldbody>
    <body name="palm">
      <joint name="grip"/>
      <geom name="palm_geom" type="mesh" mesh="palm_mesh"/>
      <site name="tip"/>
    </body>
  </worldbody>
  <actuator>
    <position name="grip_servo" joint="grip" kp="20"/>
  </actuator>
  <sensor>
    <framepos name="tip_pos" objtype="site" objname="tip"/>
  </sensor>
</mujoco>`

const armXML = `<mujoco model="arm">
  <worldbody>
    <body name="forearm">
      <joint name="elbow"/>
      <body name="wrist"/>
    </body>
  </worldbody>
</mujoco>`

func TestAttachToBody(t *testing.T) {
	parent := parse(t, armXML)
	child := parse(t, gripperXML)

	if err := Attach(parent, child, "wrist", AttachOptions{}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	// The default prefix is the child model's name.
	palm, err := parent.FindBody("gripper/palm")
	if err != nil {
		t.Fatalf("prefixed body not found: %v", err)
	}

	// Grafted under the target body.
	wrist, _ := parent.FindBody("wrist")
	found := false
	for _, c := range wrist.Children {
		if c == palm {
			found = true
		}
	}
	if !found {
		t.Error("attached body should be a direct child of the target")
	}

	// References inside the attached copy are rewritten.
	servo, err := parent.FindActuator("gripper/grip_servo")
	if err != nil {
		t.Fatalf("merged actuator not found: %v", err)
	}
	if got := servo.AttrOr("joint", ""); got != "gripper/grip" {
		t.Errorf("actuator joint = %q, want gripper/grip", got)
	}
	geom := parent.Root.Find("geom", "gripper/palm_geom")
	if geom == nil {
		t.Fatal("prefixed geom not found")
	}
	if got := geom.AttrOr("mesh", ""); got != "gripper/palm_mesh" {
		t.Errorf("geom mesh = %q, want gripper/palm_mesh", got)
	}

	// Sensor object references are rewritten via their objtype namespace.
	sensor := parent.Root.Find("framepos", "gripper/tip_pos")
	if sensor == nil {
		t.Fatal("merged sensor not found")
	}
	if got := sensor.AttrOr("objname", ""); got != "gripper/tip" {
		t.Errorf("sensor objname = %q, want gripper/tip", got)
	}

	// The combined model still validates.
	if findings := Validate(parent); HasErrors(findings) {
		t.Errorf("attached model should validate: %v", findings)
	}
}

func TestAttachToWorldbody(t *testing.T) {
	parent := parse(t, armXML)
	child := parse(t, gripperXML)

	if err := Attach(parent, child, "worldbody", AttachOptions{Prefix: "g2"}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	palm, err := parent.FindBody("g2/palm")
	if err != nil {
		t.Fatalf("prefixed body not found: %v", err)
	}
	if got := parent.BodyOf(palm); got == nil || got.Tag != "worldbody" {
		t.Errorf("palm should hang off the worldbody, got %v", got)
	}
}

func TestAttachChildUnmodified(t *testing.T) {
	parent := parse(t, armXML)
	child := parse(t, gripperXML)

	if err := Attach(parent, child, "wrist", AttachOptions{}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := child.FindBody("palm"); err != nil {
		t.Errorf("child model should keep its original names: %v", err)
	}
	if _, err := child.FindBody("gripper/palm"); err == nil {
		t.Error("child model should not be renamed")
	}
}

func TestAttachCollision(t *testing.T) {
	parent := parse(t, armXML)
	// Pre-existing body with the name the attachment would produce.
	wb := parent.Worldbody()
	wb.Append(&Element{Tag: "body", Attrs: []Attr{{Key: "name", Value: "gripper/palm"}}})

	child := parse(t, gripperXML)
	err := Attach(parent, child, "wrist", AttachOptions{})
	if !errors.Is(err, errors.ErrCodeAttachConflict) {
		t.Fatalf("expected ATTACH_CONFLICT, got %v", err)
	}

	// A failed attach must not leave partial state behind.
	if _, err := parent.FindActuator("gripper/grip_servo"); err == nil {
		t.Error("failed attach should not merge sections")
	}
}

func TestAttachTwiceDistinctPrefixes(t *testing.T) {
	parent := parse(t, armXML)
	for _, prefix := range []string{"left", "right"} {
		child := parse(t, gripperXML)
		if err := Attach(parent, child, "wrist", AttachOptions{Prefix: prefix}); err != nil {
			t.Fatalf("Attach %s: %v", prefix, err)
		}
	}
	for _, name := range []string{"left/palm", "right/palm"} {
		if _, err := parent.FindBody(name); err != nil {
			t.Errorf("body %s not found: %v", name, err)
		}
	}
	if findings := Validate(parent); HasErrors(findings) {
		t.Errorf("double attachment should validate: %v", findings)
	}
}

func TestAttachUnnamedChildGetsRandomPrefix(t *testing.T) {
	parent := parse(t, armXML)
	child := parse(t, `<mujoco>
  <worldbody><body name="thing"/></worldbody>
</mujoco>`)

	if err := Attach(parent, child, "wrist", AttachOptions{}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	found := ""
	for _, b := range parent.Bodies() {
		if strings.HasPrefix(b.Name(), "attachment-") && strings.HasSuffix(b.Name(), "/thing") {
			found = b.Name()
		}
	}
	if found == "" {
		t.Error("unnamed child should get a generated attachment prefix")
	}
}

func TestAttachInvalidPrefix(t *testing.T) {
	parent := parse(t, armXML)
	child := parse(t, gripperXML)
	err := Attach(parent, child, "wrist", AttachOptions{Prefix: "bad/prefix"})
	if !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("expected INVALID_NAME for slash in prefix, got %v", err)
	}
}

func TestAttachUnknownBody(t *testing.T) {
	parent := parse(t, armXML)
	child := parse(t, gripperXML)
	err := Attach(parent, child, "ghost", AttachOptions{})
	if !errors.Is(err, errors.ErrCodeBodyNotFound) {
		t.Errorf("expected BODY_NOT_FOUND, got %v", err)
	}
}

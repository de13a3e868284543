package mjcf

import (
	"math"
	"testing"

	"github.com/janelia-anibody/mjcfutil/pkg/errors"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// sameRotation compares two quaternions by their action, which ignores
// the q/-q sign ambiguity.
func sameRotation(a, b quat.Quat) bool {
	for _, v := range []quat.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		ra := quat.RotateVec(v, a)
		rb := quat.RotateVec(v, b)
		for i := range ra {
			if math.Abs(ra[i]-rb[i]) > 1e-9 {
				return false
			}
		}
	}
	return true
}

func TestOrientationSpecifiers(t *testing.T) {
	rz90 := quat.FromAxisAngle(quat.Vec3{0, 0, 1}, math.Pi/2)
	ry90 := quat.FromAxisAngle(quat.Vec3{0, 1, 0}, math.Pi/2)

	tests := []struct {
		name string
		site string
		want quat.Quat
	}{
		{"absent", `<site name="s"/>`, quat.Identity()},
		{"quat", `<site name="s" quat="0.70710678 0 0 0.70710678"/>`, rz90},
		{"euler_degrees", `<site name="s" euler="0 0 90"/>`, rz90},
		{"axisangle_degrees", `<site name="s" axisangle="0 1 0 90"/>`, ry90},
		{"zaxis", `<site name="s" zaxis="1 0 0"/>`, ry90},
		{"xyaxes", `<site name="s" xyaxes="0 1 0 -1 0 0"/>`, rz90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, `<mujoco><worldbody><body name="b">`+tt.site+`</body></worldbody></mujoco>`)
			s, err := m.FindSite("s")
			if err != nil {
				t.Fatalf("FindSite: %v", err)
			}
			got, err := m.Orientation(s)
			if err != nil {
				t.Fatalf("Orientation: %v", err)
			}
			if !sameRotation(got, tt.want) {
				t.Errorf("Orientation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrientationCompilerSettings(t *testing.T) {
	// angle="radian" switches euler and axisangle units.
	m := parse(t, `<mujoco>
  <compiler angle="radian"/>
  <worldbody>
    <body name="b">
      <site name="s" euler="0 0 1.5707963267948966"/>
    </body>
  </worldbody>
</mujoco>`)
	s, err := m.FindSite("s")
	if err != nil {
		t.Fatalf("FindSite: %v", err)
	}
	got, err := m.Orientation(s)
	if err != nil {
		t.Fatalf("Orientation: %v", err)
	}
	rz90 := quat.FromAxisAngle(quat.Vec3{0, 0, 1}, math.Pi/2)
	if !sameRotation(got, rz90) {
		t.Errorf("radian euler = %v, want %v", got, rz90)
	}
}

func TestOrientationEulerSeq(t *testing.T) {
	// eulerseq reorders the axis letters: with "zyx" the first angle
	// rotates about z.
	m := parse(t, `<mujoco>
  <compiler eulerseq="zyx"/>
  <worldbody>
    <body name="b">
      <site name="s" euler="90 0 0"/>
    </body>
  </worldbody>
</mujoco>`)
	s, err := m.FindSite("s")
	if err != nil {
		t.Fatalf("FindSite: %v", err)
	}
	got, err := m.Orientation(s)
	if err != nil {
		t.Fatalf("Orientation: %v", err)
	}
	rz90 := quat.FromAxisAngle(quat.Vec3{0, 0, 1}, math.Pi/2)
	if !sameRotation(got, rz90) {
		t.Errorf("zyx euler = %v, want %v", got, rz90)
	}
}

func TestOrientationRejectsMultipleSpecifiers(t *testing.T) {
	m := parse(t, `<mujoco>
  <worldbody>
    <body name="b">
      <site name="s" quat="1 0 0 0" euler="0 0 90"/>
    </body>
  </worldbody>
</mujoco>`)
	s, err := m.FindSite("s")
	if err != nil {
		t.Fatalf("FindSite: %v", err)
	}
	if _, err := m.Orientation(s); !errors.Is(err, errors.ErrCodeInvalidFrame) {
		t.Errorf("expected INVALID_FRAME for quat+euler, got %v", err)
	}
}

func TestOrientationBadArity(t *testing.T) {
	m := parse(t, `<mujoco>
  <worldbody>
    <body name="b">
      <site name="s" euler="0 0"/>
    </body>
  </worldbody>
</mujoco>`)
	s, err := m.FindSite("s")
	if err != nil {
		t.Fatalf("FindSite: %v", err)
	}
	if _, err := m.Orientation(s); !errors.Is(err, errors.ErrCodeInvalidFrame) {
		t.Errorf("expected INVALID_FRAME for 2-component euler, got %v", err)
	}
}

func TestSetQuatDropsAlternateSpecifiers(t *testing.T) {
	m := parse(t, `<mujoco>
  <worldbody>
    <body name="b">
      <geom name="g" euler="0 0 90" size="0.1"/>
    </body>
  </worldbody>
</mujoco>`)
	g := m.Worldbody().Find("geom", "g")
	if g == nil {
		t.Fatal("geom missing")
	}
	g.SetQuat(quat.Identity())
	if _, ok := g.Attr("euler"); ok {
		t.Error("SetQuat should remove the euler attribute")
	}
	if _, ok := g.Attr("quat"); !ok {
		t.Error("SetQuat should write the quat attribute")
	}
}

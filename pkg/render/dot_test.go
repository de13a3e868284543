package render

import (
	"strings"
	"testing"

	"github.com/janelia-anibody/mjcfutil/pkg/ktree"
)

func buildTree(t *testing.T) *ktree.Tree {
	t.Helper()
	tr := ktree.New()
	nodes := []ktree.Node{
		{ID: "torso", Tag: "body", Depth: 0, Meta: ktree.Metadata{"mass": 2.5}},
		{ID: "root", Tag: "joint", Depth: 1},
		{ID: "torso_geom", Tag: "geom", Depth: 1, Meta: ktree.Metadata{"type": "capsule"}},
		{ID: "thigh", Tag: "body", Depth: 1},
	}
	for _, n := range nodes {
		if err := tr.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	edges := []ktree.Edge{
		{From: "torso", To: "root"},
		{From: "torso", To: "torso_geom"},
		{From: "torso", To: "thigh"},
	}
	for _, e := range edges {
		if err := tr.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e.From, e.To, err)
		}
	}
	return tr
}

func TestToDOT(t *testing.T) {
	tr := buildTree(t)
	dot := ToDOT(tr, Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("DOT should start with digraph: %s", dot[:20])
	}
	for _, want := range []string{
		`"torso" [label="torso"];`,
		`"torso" -> "root";`,
		`"torso" -> "thigh";`,
		"rankdir=TB",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTStyling(t *testing.T) {
	tr := buildTree(t)
	dot := ToDOT(tr, Options{})

	// Joints are dashed ellipses, geoms are dimmed.
	for _, line := range strings.Split(dot, "\n") {
		switch {
		case strings.Contains(line, `"root" [`):
			if !strings.Contains(line, "shape=ellipse") || !strings.Contains(line, "dashed") {
				t.Errorf("joint node should be dashed ellipse: %s", line)
			}
		case strings.Contains(line, `"torso_geom" [`):
			if !strings.Contains(line, "lightgrey") {
				t.Errorf("geom node should be dimmed: %s", line)
			}
		case strings.Contains(line, `"torso" [`):
			if strings.Contains(line, "ellipse") || strings.Contains(line, "lightgrey") {
				t.Errorf("body node should use default styling: %s", line)
			}
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	tr := buildTree(t)
	dot := ToDOT(tr, Options{Detailed: true})

	if !strings.Contains(dot, "tag: body") {
		t.Error("detailed labels should include the tag")
	}
	if !strings.Contains(dot, "mass: 2.5") {
		t.Error("detailed labels should include metadata")
	}

	plain := ToDOT(tr, Options{})
	if strings.Contains(plain, "mass: 2.5") {
		t.Error("plain labels should not include metadata")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	tr := buildTree(t)
	first := ToDOT(tr, Options{Detailed: true})
	for i := 0; i < 5; i++ {
		if got := ToDOT(tr, Options{Detailed: true}); got != first {
			t.Fatal("ToDOT output should be deterministic")
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?>
<svg width="134pt" height="116pt" viewBox="0.00 0.00 134.00 116.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)

	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 134.00 116.00"`) {
		t.Errorf("viewBox should be re-anchored at origin: %s", got)
	}
	if !strings.Contains(got, `width="134" height="116"`) {
		t.Errorf("width/height should be pixel values: %s", got)
	}

	// SVG without a viewBox passes through unchanged.
	plain := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should pass through unchanged")
	}
}

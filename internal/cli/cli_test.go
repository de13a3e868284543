package cli

import (
	"io"
	"path/filepath"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	want := filepath.Join("/tmp/xdg-cache", "mjcfutil")
	if dir != want {
		t.Errorf("cacheDir = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/tmp/testhome")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	want := filepath.Join("/tmp/testhome", ".cache", "mjcfutil")
	if dir != want {
		t.Errorf("cacheDir = %q, want %q", dir, want)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{
		"format", "validate", "tree", "render", "reroot",
		"attach", "inspect", "serve", "cache", "completion",
	}
	have := map[string]bool{}
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3("1 -2.5 3e-2")
	if err != nil {
		t.Fatalf("parseVec3: %v", err)
	}
	if v[0] != 1 || v[1] != -2.5 || v[2] != 0.03 {
		t.Errorf("parseVec3 = %v", v)
	}

	if _, err := parseVec3("1 2"); err == nil {
		t.Error("expected error for 2 components")
	}
	if _, err := parseVec3("a b c"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestParseQuat(t *testing.T) {
	q, err := parseQuat("1 0 0 0")
	if err != nil {
		t.Fatalf("parseQuat: %v", err)
	}
	if q[0] != 1 || q[1] != 0 || q[2] != 0 || q[3] != 0 {
		t.Errorf("parseQuat = %v", q)
	}

	if _, err := parseQuat("1 0 0"); err == nil {
		t.Error("expected error for 3 components")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, format, want string
	}{
		{"model.xml", "", "svg", "model.svg"},
		{"model.xml", "", "png", "model.png"},
		{"dir/model.xml", "", "pdf", "dir/model.pdf"},
		{"model.xml", "out/diagram.svg", "svg", "out/diagram.svg"},
		{"model.xml", "out/diagram", "dot", "out/diagram.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q",
				tt.input, tt.output, tt.format, got, tt.want)
		}
	}
}

func TestRenderFormatUnknown(t *testing.T) {
	if _, err := renderFormat("digraph G {}", "gif"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFmtBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := fmtBytes(tt.n); got != tt.want {
			t.Errorf("fmtBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFmtInts(t *testing.T) {
	if got := fmtInts([]int{0, 1, 2}); got != "0,1,2" {
		t.Errorf("fmtInts = %q", got)
	}
	if got := fmtInts(nil); got != "" {
		t.Errorf("fmtInts(nil) = %q", got)
	}
}

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

func TestResolveDefaults(t *testing.T) {
	var c Config
	c.Resolve(Flags{})

	if c.Mesh != "head.obj" || c.Texture != "head_diffuse.tga" || c.Output != "result.ppm" {
		t.Errorf("paths = %q %q %q", c.Mesh, c.Texture, c.Output)
	}
	if c.Width != 1000 || c.Height != 1000 {
		t.Errorf("size = %dx%d, want 1000x1000", c.Width, c.Height)
	}
	if c.EyePosition() != math3d.V3(100, 0, 300) {
		t.Errorf("eye = %v, want (100, 0, 300)", c.EyePosition())
	}
	if c.TargetPosition() != math3d.Zero3() {
		t.Errorf("target = %v, want origin", c.TargetPosition())
	}
	if c.ModelScale != 100 || c.OrbitFPS != 24 || c.OrbitFrames != 0 {
		t.Errorf("scale=%v fps=%d frames=%d", c.ModelScale, c.OrbitFPS, c.OrbitFrames)
	}
	if c.WrapMode() != render.WrapClamp || c.ParsePolicy() != models.Lenient {
		t.Errorf("wrap=%v policy=%v", c.WrapMode(), c.ParsePolicy())
	}

	rc := c.Render()
	if math.Abs(rc.FOVY-math.Pi/4) > 1e-12 || rc.Near != 0.1 {
		t.Errorf("render config = %+v", rc)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	src := `{"mesh": "models/cube.obj", "output": "/tmp/out.png", "width": 320, "eye": [0, 1, 5], "target": [0, 1, 0], "wrap": "repeat"}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Resolve(Flags{Height: 240, Strict: true})

	if want := filepath.Join(dir, "models", "cube.obj"); c.Mesh != want {
		t.Errorf("mesh = %q, want %q", c.Mesh, want)
	}
	if c.Output != "/tmp/out.png" {
		t.Errorf("absolute output rewritten to %q", c.Output)
	}
	if c.Width != 320 || c.Height != 240 {
		t.Errorf("size = %dx%d, want 320x240", c.Width, c.Height)
	}
	if c.EyePosition() != math3d.V3(0, 1, 5) {
		t.Errorf("eye = %v", c.EyePosition())
	}
	if c.TargetPosition() != math3d.V3(0, 1, 0) {
		t.Errorf("target = %v", c.TargetPosition())
	}
	if c.WrapMode() != render.WrapRepeat || c.ParsePolicy() != models.Strict {
		t.Errorf("wrap=%v policy=%v", c.WrapMode(), c.ParsePolicy())
	}

	c.Resolve(Flags{Mesh: "other.obj"})
	if c.Mesh != "other.obj" {
		t.Errorf("flag mesh = %q, want other.obj", c.Mesh)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{width: 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"negative near", func(c *Config) { c.Near = -0.5 }},
		{"wide fov", func(c *Config) { c.FOVDegrees = 200 }},
		{"bad wrap", func(c *Config) { c.Wrap = "mirror" }},
		{"bad scale", func(c *Config) { c.ModelScale = -2 }},
		{"eye at target", func(c *Config) { c.Target = &[3]float64{100, 0, 300} }},
		{"orbit to ppm", func(c *Config) { c.OrbitFrames = 10; c.Output = "x.ppm" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			c.Resolve(Flags{})
			tc.modify(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestOrbitDefaultOutput(t *testing.T) {
	var c Config
	c.Resolve(Flags{OrbitFrames: 12})
	if c.Output != "result.webp" {
		t.Errorf("output = %q, want result.webp", c.Output)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("orbit config invalid: %v", err)
	}
}

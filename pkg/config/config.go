// Package config loads the run configuration for softraster.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config holds input paths, camera placement and output settings.
type Config struct {
	// Paths
	Mesh    string `json:"mesh"`
	Texture string `json:"texture"`
	Output  string `json:"output"`

	// Render settings
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	FOVDegrees float64     `json:"fov_degrees"`
	Near       float64     `json:"near"`
	Eye        *[3]float64 `json:"eye,omitempty"`
	Target     *[3]float64 `json:"target,omitempty"`
	ModelScale float64     `json:"model_scale"`
	Wrap       string      `json:"wrap"`
	Strict     bool        `json:"strict"`

	// Orbit animation; disabled when OrbitFrames is 0
	OrbitFrames int `json:"orbit_frames"`
	OrbitFPS    int `json:"orbit_fps"`

	// dir is the directory of the loaded file; relative paths from the
	// file are resolved against it.
	dir string
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Mesh        string
	Texture     string
	Output      string
	Width       int
	Height      int
	Wrap        string
	Strict      bool
	OrbitFrames int
}

// Resolve applies flag overrides and fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// Paths from the file are relative to the file
	if c.dir != "" {
		c.Mesh = c.fromFile(c.Mesh)
		c.Texture = c.fromFile(c.Texture)
		c.Output = c.fromFile(c.Output)
		c.dir = ""
	}

	// CLI flags override config file
	if flags.Mesh != "" {
		c.Mesh = flags.Mesh
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Wrap != "" {
		c.Wrap = flags.Wrap
	}
	if flags.Strict {
		c.Strict = true
	}
	if flags.OrbitFrames > 0 {
		c.OrbitFrames = flags.OrbitFrames
	}

	// Defaults
	if c.Mesh == "" {
		c.Mesh = "head.obj"
	}
	if c.Texture == "" {
		c.Texture = "head_diffuse.tga"
	}
	if c.Output == "" {
		c.Output = "result.ppm"
		if c.OrbitFrames > 0 {
			c.Output = "result.webp"
		}
	}
	if c.Width <= 0 {
		c.Width = 1000
	}
	if c.Height <= 0 {
		c.Height = 1000
	}
	if c.FOVDegrees == 0 {
		c.FOVDegrees = 45
	}
	if c.Near == 0 {
		c.Near = 0.1
	}
	if c.Eye == nil {
		c.Eye = &[3]float64{100, 0, 300}
	}
	if c.Target == nil {
		c.Target = &[3]float64{0, 0, 0}
	}
	if c.ModelScale == 0 {
		c.ModelScale = 100
	}
	if c.Wrap == "" {
		c.Wrap = render.WrapClamp.String()
	}
	if c.OrbitFPS <= 0 {
		c.OrbitFPS = 24
	}
}

func (c *Config) fromFile(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Validate reports every setting that cannot be rendered.
func (c Config) Validate() error {
	var errs []error
	if err := c.Render().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.EyePosition() == c.TargetPosition() {
		errs = append(errs, fmt.Errorf("eye and target are both %v", c.EyePosition()))
	}
	if c.ModelScale <= 0 || math.IsInf(c.ModelScale, 0) {
		errs = append(errs, fmt.Errorf("model scale %v must be positive", c.ModelScale))
	}
	if _, err := render.ParseWrapMode(c.Wrap); err != nil {
		errs = append(errs, err)
	}
	if c.OrbitFrames < 0 {
		errs = append(errs, fmt.Errorf("orbit frames %d is negative", c.OrbitFrames))
	}
	if c.OrbitFrames > 0 && !strings.EqualFold(filepath.Ext(c.Output), ".webp") {
		errs = append(errs, fmt.Errorf("orbit output %q must be .webp", c.Output))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Render returns the rasterizer settings.
func (c Config) Render() render.Config {
	return render.Config{
		Width:  c.Width,
		Height: c.Height,
		FOVY:   c.FOVDegrees * math.Pi / 180,
		Near:   c.Near,
	}
}

// EyePosition returns the camera position, or the origin if unset.
func (c Config) EyePosition() math3d.Vec3 {
	if c.Eye == nil {
		return math3d.Zero3()
	}
	return math3d.V3(c.Eye[0], c.Eye[1], c.Eye[2])
}

// TargetPosition returns the point the camera looks at, or the origin if
// unset.
func (c Config) TargetPosition() math3d.Vec3 {
	if c.Target == nil {
		return math3d.Zero3()
	}
	return math3d.V3(c.Target[0], c.Target[1], c.Target[2])
}

// WrapMode returns the texture wrap mode. Unknown names map to clamp;
// Validate reports them.
func (c Config) WrapMode() render.WrapMode {
	m, _ := render.ParseWrapMode(c.Wrap)
	return m
}

// ParsePolicy returns the mesh parse policy.
func (c Config) ParsePolicy() models.ParsePolicy {
	if c.Strict {
		return models.Strict
	}
	return models.Lenient
}

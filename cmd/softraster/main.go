// softraster - CPU Triangle Rasterizer
// Render a textured OBJ or GLB mesh to an image without a GPU.
//
// Output format follows the -o extension: .ppm (default), .png or .webp.
// With -orbit N the camera circles the model and the frames are written as
// an animated WebP. With -preview the result is also shown in the terminal;
// press any key to exit the preview.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/taigrr/softraster/pkg/config"
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

var (
	configPath  = flag.String("config", "", "Path to JSON run configuration")
	texturePath = flag.String("texture", "", "Path to texture image (TGA/PNG/JPG/BMP/TIFF/PPM)")
	outputPath  = flag.String("o", "", "Output image (.ppm, .png or .webp)")
	width       = flag.Int("width", 0, "Output width in pixels (default 1000)")
	height      = flag.Int("height", 0, "Output height in pixels (default 1000)")
	strict      = flag.Bool("strict", false, "Reject malformed numbers in OBJ files")
	wrap        = flag.String("wrap", "", "Texture wrap mode: clamp or repeat")
	orbitFrames = flag.Int("orbit", 0, "Render an N-frame orbit as animated WebP")
	preview     = flag.Bool("preview", false, "Show the result in the terminal")
	verbose     = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softraster - CPU Triangle Rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softraster [options] [model.obj|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	setupLogging(os.Stderr, *verbose)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Context for clean shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *preview); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs one text logger for this command and the render
// and models packages. verbose enables Debug records.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
	models.SetLogger(logger)
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	cfg.Resolve(config.Flags{
		Mesh:        flag.Arg(0),
		Texture:     *texturePath,
		Output:      *outputPath,
		Width:       *width,
		Height:      *height,
		Wrap:        *wrap,
		Strict:      *strict,
		OrbitFrames: *orbitFrames,
	})
	return cfg, cfg.Validate()
}

// scene is everything needed to draw one frame.
type scene struct {
	mesh    *models.Mesh
	texture *render.Texture
	model   math3d.Mat4
	eye     math3d.Vec3
	target  math3d.Vec3
	cfg     render.Config
}

// loadScene reads the mesh and texture. A glTF file's own image is used
// when no texture was given on the command line.
func loadScene(cfg config.Config, textureFlag string) (*scene, error) {
	s := &scene{
		model:  math3d.ScaleUniform(cfg.ModelScale),
		eye:    cfg.EyePosition(),
		target: cfg.TargetPosition(),
		cfg:    cfg.Render(),
	}

	var embedded image.Image
	var err error
	switch strings.ToLower(filepath.Ext(cfg.Mesh)) {
	case ".glb", ".gltf":
		s.mesh, embedded, err = models.LoadGLBWithTexture(cfg.Mesh)
	default:
		s.mesh, err = models.LoadOBJ(cfg.Mesh, cfg.ParsePolicy())
	}
	if err != nil {
		return nil, fmt.Errorf("load mesh: %w", err)
	}

	if embedded != nil && textureFlag == "" {
		s.texture = render.TextureFromImage(embedded)
	} else {
		s.texture, err = render.LoadTexture(cfg.Texture)
		if err != nil {
			return nil, fmt.Errorf("load texture: %w", err)
		}
	}
	s.texture.WrapU = cfg.WrapMode()
	s.texture.WrapV = cfg.WrapMode()

	slog.Debug("scene loaded",
		"mesh", s.mesh.Name,
		"triangles", s.mesh.TriangleCount(),
		"defaulted", s.mesh.Defaulted,
		"texture", fmt.Sprintf("%dx%d", s.texture.Width, s.texture.Height))
	return s, nil
}

// camera returns a camera at the scene eye looking at the scene target.
func (s *scene) camera() *render.Camera {
	cam := render.NewCamera(s.eye, s.cfg)
	cam.LookAt(s.target)
	return cam
}

// draw clears fb and renders the mesh as seen from cam.
func (s *scene) draw(fb *render.Framebuffer, p *render.Pipeline, cam *render.Camera) error {
	fb.Clear(render.ColorBlack)
	u := render.Uniforms{
		MVP:     cam.ViewProjectionMatrix().Mul(s.model),
		Texture: s.texture,
	}
	return p.DrawMesh(s.mesh, cam.Position, u)
}

func run(ctx context.Context, cfg config.Config, showPreview bool) error {
	s, err := loadScene(cfg, *texturePath)
	if err != nil {
		return err
	}

	var fb *render.Framebuffer
	if cfg.OrbitFrames > 0 {
		fb, err = renderOrbit(ctx, s, cfg.OrbitFrames, cfg.OrbitFPS, cfg.Output)
	} else {
		fb, err = renderStill(s, cfg.Output)
	}
	if err != nil {
		return err
	}

	if showPreview {
		if err := showImage(ctx, fb.ToImage()); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("preview: %w", err)
		}
	}
	return nil
}

func renderStill(s *scene, out string) (*render.Framebuffer, error) {
	fb := s.cfg.NewFramebuffer()
	p := render.NewPipeline(render.NewRasterizer(fb, nil))
	cam := s.camera()

	if err := s.draw(fb, p, cam); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	slog.Info("frame rendered",
		"triangles", p.Stats.Triangles,
		"culled", p.Stats.Culled,
		"pixels", p.Stats.Pixels)

	if err := render.SaveImage(out, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

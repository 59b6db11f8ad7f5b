package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// SaveImage writes the framebuffer to path. The format follows the
// extension: .ppm (binary P6), .png, or .webp (lossless).
func SaveImage(path string, fb *Framebuffer) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ppm", ".png", ".webp":
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".ppm":
		err = fb.WritePPM(f)
	case ".png":
		err = png.Encode(f, fb.ToImage())
	case ".webp":
		err = nativewebp.Encode(f, fb.ToImage(), nil)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	Logger().Info("image written", "path", path, "width", fb.Width, "height", fb.Height)
	return nil
}

// SaveAnimation writes frames as a looping animated WebP, showing each
// frame for delay.
func SaveAnimation(path string, frames []image.Image, delay time.Duration) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames for %s", path)
	}

	ms := uint(max(1, delay.Milliseconds()))
	anim := &nativewebp.Animation{
		Images:    frames,
		Durations: make([]uint, len(frames)),
		Disposals: make([]uint, len(frames)),
	}
	for i := range anim.Durations {
		anim.Durations[i] = ms
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create animation: %w", err)
	}
	defer f.Close()

	if err := nativewebp.EncodeAll(f, anim, nil); err != nil {
		return fmt.Errorf("encode animation: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close animation: %w", err)
	}

	Logger().Info("animation written", "path", path, "frames", len(frames))
	return nil
}

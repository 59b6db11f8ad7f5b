package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/softraster/pkg/render"
)

// orbitAngles returns one yaw angle per frame covering a full turn. The
// angle follows a critically damped spring, so the camera eases out of
// rest and settles as it completes the circle. The first angle is 0 and
// the last is short of 2*pi.
func orbitAngles(frames, fps int) []float64 {
	// Frequency scaled so the spring settles over the whole sequence;
	// damping 1.0 = critically damped (no overshoot)
	freq := 6 * float64(fps) / float64(frames)
	spring := harmonica.NewSpring(harmonica.FPS(fps), freq, 1.0)

	raw := make([]float64, frames+1)
	var pos, vel float64
	for i := 1; i <= frames; i++ {
		pos, vel = spring.Update(pos, vel, 1)
		raw[i] = pos
	}

	angles := make([]float64, frames)
	for i := range angles {
		angles[i] = 2 * math.Pi * raw[i] / raw[frames]
	}
	return angles
}

// renderOrbit renders frames while the camera circles the model and writes
// them as an animated WebP. ctx is checked between frames. It returns the
// framebuffer holding the last frame.
func renderOrbit(ctx context.Context, s *scene, frames, fps int, out string) (*render.Framebuffer, error) {
	fb := s.cfg.NewFramebuffer()
	p := render.NewPipeline(render.NewRasterizer(fb, nil))
	cam := s.camera()

	images := make([]image.Image, 0, frames)
	for i, angle := range orbitAngles(frames, fps) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("orbit stopped at frame %d: %w", i, err)
		}

		cam.SetPosition(s.eye)
		cam.Orbit(angle)
		if err := s.draw(fb, p, cam); err != nil {
			return nil, fmt.Errorf("render frame %d: %w", i, err)
		}
		images = append(images, fb.ToImage())

		slog.Debug("orbit frame", "frame", i, "yaw", angle, "pixels", p.Stats.Pixels)
		p.ResetStats()
	}

	if err := render.SaveAnimation(out, images, time.Second/time.Duration(fps)); err != nil {
		return nil, err
	}
	return fb, nil
}

package render

import (
	"errors"
	"fmt"
	"math"
)

// Config holds the output resolution and projection parameters.
type Config struct {
	Width  int
	Height int

	FOVY float64 // Vertical field of view in radians
	Near float64 // Near plane distance; there is no far plane

	// AspectRatio overrides Width/Height when positive.
	AspectRatio float64
}

// DefaultConfig returns a 1000x1000 output with a 45 degree field of view.
func DefaultConfig() Config {
	return Config{
		Width:  1000,
		Height: 1000,
		FOVY:   math.Pi / 4,
		Near:   0.1,
	}
}

// Aspect returns the width/height ratio used by the projection.
func (c Config) Aspect() float64 {
	if c.AspectRatio > 0 {
		return c.AspectRatio
	}
	return float64(c.Width) / float64(c.Height)
}

// Validate reports parameters that cannot produce an image.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if !(c.FOVY > 0 && c.FOVY < math.Pi) {
		errs = append(errs, fmt.Errorf("field of view %v not in (0, pi)", c.FOVY))
	}
	if !(c.Near > 0) {
		errs = append(errs, fmt.Errorf("near plane %v must be positive", c.Near))
	}
	return errors.Join(errs...)
}

// NewFramebuffer allocates a framebuffer of the configured size.
func (c Config) NewFramebuffer() *Framebuffer {
	return NewFramebuffer(c.Width, c.Height)
}

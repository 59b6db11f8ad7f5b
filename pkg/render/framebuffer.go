// Package render provides CPU triangle rasterization.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrOutOfBounds is returned when a pixel write falls outside the
// framebuffer.
var ErrOutOfBounds = errors.New("pixel out of bounds")

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color. Colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 255}.RGBA()
}

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Colors for convenience
var (
	ColorBlack = Color{0, 0, 0}
	ColorWhite = Color{255, 255, 255}
)

// Framebuffer holds a color surface and a depth surface of the same size.
//
// Coordinates have their origin at the bottom-left. Storage is row-major
// starting from the top row, so logical (x, y) lives at
// (Height-1-y)*Width + x and the storage order is the output image order.
type Framebuffer struct {
	Width  int
	Height int
	color  []Color
	depth  []float32
}

// NewFramebuffer creates a black framebuffer with all depths 0.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		color:  make([]Color, width*height),
		depth:  make([]float32, width*height),
	}
}

func (fb *Framebuffer) index(x, y int) int {
	return (fb.Height-1-y)*fb.Width + x
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// WritePixel stores color and depth at (x, y).
func (fb *Framebuffer) WritePixel(x, y int, z float32, c Color) error {
	if !fb.inBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, fb.Width, fb.Height)
	}
	i := fb.index(x, y)
	fb.color[i] = c
	fb.depth[i] = z
	return nil
}

// ReadDepth returns the stored depth at (x, y). The caller guarantees the
// coordinates are in range.
func (fb *Framebuffer) ReadDepth(x, y int) float32 {
	return fb.depth[fb.index(x, y)]
}

// Pixel returns the color at (x, y), or black if out of bounds.
func (fb *Framebuffer) Pixel(x, y int) Color {
	if !fb.inBounds(x, y) {
		return Color{}
	}
	return fb.color[fb.index(x, y)]
}

// Clear fills the color surface with c and resets all depths to 0.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.color {
		fb.color[i] = c
	}
	clear(fb.depth)
}

// ToImage converts the framebuffer to an image.RGBA in storage order, so
// logical y=0 is the bottom row of the image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.color {
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 255
	}
	return img
}

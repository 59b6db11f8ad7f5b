package render

import (
	"image"
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// maxCoord bounds projected pixel coordinates so that the barycentric cross
// product stays exact in float64.
const maxCoord = 1 << 30

// Rasterizer fills triangles given in normalized device coordinates into a
// framebuffer, one pixel at a time.
type Rasterizer struct {
	fb       *Framebuffer
	fragment FragmentShader
}

// NewRasterizer creates a rasterizer drawing into fb. A nil fragment shader
// defaults to LambertFragment.
func NewRasterizer(fb *Framebuffer, fs FragmentShader) *Rasterizer {
	if fs == nil {
		fs = LambertFragment{}
	}
	return &Rasterizer{fb: fb, fragment: fs}
}

// Framebuffer returns the render target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// ToScreen maps NDC x and y in [-1,1] to pixel coordinates, truncating
// toward zero. Non-finite or huge values saturate; NaN maps to 0.
func ToScreen(ndc math3d.Vec3, width, height int) image.Point {
	hw, hh := float64(width/2), float64(height/2)
	return image.Pt(saturate(hw*ndc.X+hw), saturate(hh*ndc.Y+hh))
}

func saturate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= maxCoord:
		return maxCoord
	case f <= -maxCoord:
		return -maxCoord
	}
	return int(f)
}

// BoundingBox returns the triangle's pixel bounds clamped to the canvas.
// Both corners are clamped into [0, size-1] and the box is traversed
// half-open, so its last row and column are never visited. A triangle
// entirely off-canvas yields an empty box.
//
// The result is built as a literal: image.Rect would swap inverted corners.
func BoundingBox(a, b, c image.Point, width, height int) image.Rectangle {
	return image.Rectangle{
		Min: image.Point{
			X: max(0, min(width-1, a.X, b.X, c.X)),
			Y: max(0, min(height-1, a.Y, b.Y, c.Y)),
		},
		Max: image.Point{
			X: min(width-1, max(0, a.X, b.X, c.X)),
			Y: min(height-1, max(0, a.Y, b.Y, c.Y)),
		},
	}
}

// Barycentric returns the weights of p relative to triangle abc. All
// weights are non-negative iff p is inside or on an edge. Triangles with
// less than one pixel of doubled area return (-1, 1, 1), which is always
// outside.
func Barycentric(p, a, b, c image.Point) math3d.Vec3 {
	u := math3d.V3(
		float64(c.X-a.X), float64(b.X-a.X), float64(a.X-p.X),
	).Cross(math3d.V3(
		float64(c.Y-a.Y), float64(b.Y-a.Y), float64(a.Y-p.Y),
	))

	if math.Abs(u.Z) < 1 {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}

// quantize clamps each channel to [0,1] and truncates channel*255. NaN
// becomes 0. Alpha is dropped.
func quantize(c math3d.Vec4) Color {
	return Color{channel(c.X), channel(c.Y), channel(c.Z)}
}

func channel(f float64) uint8 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f * 255)
}

// DrawTriangle rasterizes one triangle. ndc holds the post-divide vertex
// positions; uvs and normals are interpolated affinely. Pixels are visited
// column by column and written when their depth is >= the stored depth.
// It returns the number of pixels written.
func (r *Rasterizer) DrawTriangle(ndc [3]math3d.Vec3, uvs [3]math3d.Vec2, normals [3]math3d.Vec3, u Uniforms) (int, error) {
	w, h := r.fb.Width, r.fb.Height

	var pts [3]image.Point
	for i, v := range ndc {
		pts[i] = ToScreen(v, w, h)
	}
	box := BoundingBox(pts[0], pts[1], pts[2], w, h)

	written := 0
	for x := box.Min.X; x < box.Max.X; x++ {
		for y := box.Min.Y; y < box.Max.Y; y++ {
			bc := Barycentric(image.Pt(x, y), pts[0], pts[1], pts[2])
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := float32(bc.X*ndc[0].Z + bc.Y*ndc[1].Z + bc.Z*ndc[2].Z)
			if !(z >= r.fb.ReadDepth(x, y)) {
				continue
			}

			uv := math3d.Barycentric2(uvs[0], uvs[1], uvs[2], bc)
			uv.Y = 1 - uv.Y
			n := math3d.Barycentric3(normals[0], normals[1], normals[2], bc)

			c := quantize(r.fragment.Shade(uv, n, u))
			if err := r.fb.WritePixel(x, y, z, c); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

package render

import (
	"image/color"

	"github.com/taigrr/softraster/pkg/math3d"
)

// Uniforms are the per-frame inputs shared by every triangle.
type Uniforms struct {
	MVP      math3d.Mat4
	Texture  *Texture
	LightDir math3d.Vec3 // Zero means (0, 0, 1)
}

// VertexShader maps object-space positions to normalized device
// coordinates.
type VertexShader interface {
	Transform(pos [3]math3d.Vec3, u Uniforms) [3]math3d.Vec3
}

// FragmentShader computes an RGBA color in [0,1] for one pixel from the
// interpolated texture coordinate and normal.
type FragmentShader interface {
	Shade(uv math3d.Vec2, n math3d.Vec3, u Uniforms) math3d.Vec4
}

// VertexFunc adapts a function to VertexShader.
type VertexFunc func(pos [3]math3d.Vec3, u Uniforms) [3]math3d.Vec3

func (f VertexFunc) Transform(pos [3]math3d.Vec3, u Uniforms) [3]math3d.Vec3 {
	return f(pos, u)
}

// FragmentFunc adapts a function to FragmentShader.
type FragmentFunc func(uv math3d.Vec2, n math3d.Vec3, u Uniforms) math3d.Vec4

func (f FragmentFunc) Shade(uv math3d.Vec2, n math3d.Vec3, u Uniforms) math3d.Vec4 {
	return f(uv, n, u)
}

// PerspectiveVertex multiplies each position by the MVP matrix and divides
// by w. Vertices on the eye plane produce infinities.
type PerspectiveVertex struct{}

func (PerspectiveVertex) Transform(pos [3]math3d.Vec3, u Uniforms) [3]math3d.Vec3 {
	var out [3]math3d.Vec3
	for i, p := range pos {
		out[i] = u.MVP.MulVec3(p)
	}
	return out
}

var (
	defaultLight = math3d.V3(0, 0, 1)
	whiteTexture = NewSolidTexture(color.RGBA{255, 255, 255, 255})
)

// LambertFragment scales the sampled texel by dot(n, light). The intensity
// is not clamped, so back-lit pixels go negative and quantize to black.
// A nil texture samples as white.
type LambertFragment struct{}

func (LambertFragment) Shade(uv math3d.Vec2, n math3d.Vec3, u Uniforms) math3d.Vec4 {
	tex := u.Texture
	if tex == nil {
		tex = whiteTexture
	}
	texel := tex.Texel(uv)

	light := u.LightDir
	if light == (math3d.Vec3{}) {
		light = defaultLight
	}
	return texel.Scale(n.Dot(light))
}

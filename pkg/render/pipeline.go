package render

import (
	"fmt"

	"github.com/taigrr/softraster/pkg/math3d"
)

// TriangleSource provides indexed triangles with per-corner attributes.
type TriangleSource interface {
	TriangleCount() int
	Triangle(i int) (pos [3]math3d.Vec3, uv [3]math3d.Vec2, n [3]math3d.Vec3)
}

// Stats counts the work done by a Pipeline.
type Stats struct {
	Triangles  int // Triangles submitted
	Culled     int // Rejected as back-facing
	Rasterized int // Passed to the rasterizer
	Pixels     int // Pixels written
}

// Pipeline culls back faces, runs the vertex stage and rasterizes the
// result, one triangle at a time in source order.
type Pipeline struct {
	Vertex                 VertexShader
	Raster                 *Rasterizer
	DisableBackfaceCulling bool // If true, render both sides of triangles
	Stats                  Stats
}

// NewPipeline creates a pipeline using PerspectiveVertex.
func NewPipeline(r *Rasterizer) *Pipeline {
	return &Pipeline{
		Vertex: PerspectiveVertex{},
		Raster: r,
	}
}

// ResetStats zeroes the counters.
func (p *Pipeline) ResetStats() {
	p.Stats = Stats{}
}

// BackFacing reports whether a triangle faces away from eye. The normal is
// (p2-p0) x (p1-p0); triangles whose normal has a non-negative dot product
// with eye-p0 are back-facing.
func BackFacing(pos [3]math3d.Vec3, eye math3d.Vec3) bool {
	n := pos[2].Sub(pos[0]).Cross(pos[1].Sub(pos[0])).Normalize()
	return n.Dot(eye.Sub(pos[0])) >= 0
}

// DrawMesh renders every triangle of src. eye is compared against the
// untransformed positions for culling. A framebuffer write error stops
// the draw and is returned.
func (p *Pipeline) DrawMesh(src TriangleSource, eye math3d.Vec3, u Uniforms) error {
	before := p.Stats
	count := src.TriangleCount()

	for i := range count {
		pos, uvs, normals := src.Triangle(i)
		p.Stats.Triangles++

		if !p.DisableBackfaceCulling && BackFacing(pos, eye) {
			p.Stats.Culled++
			continue
		}

		ndc := p.Vertex.Transform(pos, u)
		n, err := p.Raster.DrawTriangle(ndc, uvs, normals, u)
		p.Stats.Rasterized++
		p.Stats.Pixels += n
		if err != nil {
			return fmt.Errorf("triangle %d: %w", i, err)
		}
	}

	Logger().Debug("mesh drawn",
		"triangles", p.Stats.Triangles-before.Triangles,
		"culled", p.Stats.Culled-before.Culled,
		"pixels", p.Stats.Pixels-before.Pixels)
	return nil
}

// Package models provides triangle mesh loading and representation.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/softraster/pkg/math3d"
)

// ErrIndexRange is returned when a face references an attribute that does
// not exist.
var ErrIndexRange = errors.New("face index out of range")

// Mesh holds separate attribute arrays; each face corner indexes into every
// array independently.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	UVs       []math3d.Vec2
	Normals   []math3d.Vec3
	Faces     []Face

	// Defaulted counts numeric fields replaced by 0 under lenient parsing.
	Defaulted int

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle with 0-based indices into Positions, UVs and Normals.
type Face struct {
	V  [3]int
	UV [3]int
	N  [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Validate checks every face index against its attribute array.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for c := range 3 {
			if err := checkIndex(f.V[c], len(m.Positions)); err != nil {
				return fmt.Errorf("face %d position: %w", i, err)
			}
			if err := checkIndex(f.UV[c], len(m.UVs)); err != nil {
				return fmt.Errorf("face %d uv: %w", i, err)
			}
			if err := checkIndex(f.N[c], len(m.Normals)); err != nil {
				return fmt.Errorf("face %d normal: %w", i, err)
			}
		}
	}
	return nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexRange, i, n)
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box of the positions.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// Triangle returns the attributes of face i.
// Implements render.TriangleSource.
func (m *Mesh) Triangle(i int) (pos [3]math3d.Vec3, uv [3]math3d.Vec2, n [3]math3d.Vec3) {
	f := m.Faces[i]
	for c := range 3 {
		pos[c] = m.Positions[f.V[c]]
		uv[c] = m.UVs[f.UV[c]]
		n[c] = m.Normals[f.N[c]]
	}
	return pos, uv, n
}

// CalculateSmoothNormals replaces Normals with one averaged normal per
// position and points every face corner's normal index at its position.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Positions))

	for _, f := range m.Faces {
		v0 := m.Positions[f.V[0]]
		v1 := m.Positions[f.V[1]]
		v2 := m.Positions[f.V[2]]

		// Area weighted, normalized below
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		for c := range 3 {
			normals[f.V[c]] = normals[f.V[c]].Add(normal)
		}
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}

	for i := range m.Faces {
		m.Faces[i].N = m.Faces[i].V
	}
	m.Normals = normals
}

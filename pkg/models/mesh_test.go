package models

import (
	"errors"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

func TestMeshValidate(t *testing.T) {
	m := NewMesh("t")
	m.Positions = []math3d.Vec3{{}, {X: 1}, {Y: 1}}
	m.UVs = []math3d.Vec2{{}}
	m.Normals = []math3d.Vec3{{Z: 1}}
	m.Faces = []Face{{V: [3]int{0, 1, 2}}}

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	m.Faces[0].N[2] = 1
	err := m.Validate()
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}

	m.Faces[0].N[2] = 0
	m.Faces[0].UV[0] = -1
	if err := m.Validate(); !errors.Is(err, ErrIndexRange) {
		t.Errorf("negative index err = %v, want ErrIndexRange", err)
	}
}

func TestMeshBounds(t *testing.T) {
	m := NewMesh("t")
	m.Positions = []math3d.Vec3{{X: -1, Y: 2, Z: 0}, {X: 3, Y: -2, Z: 4}}
	m.CalculateBounds()

	if m.Center() != math3d.V3(1, 0, 2) {
		t.Errorf("Center = %v, want (1, 0, 2)", m.Center())
	}
	if m.Size() != math3d.V3(4, 4, 4) {
		t.Errorf("Size = %v, want (4, 4, 4)", m.Size())
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := NewMesh("t")
	m.Positions = []math3d.Vec3{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{1, 3, 2}},
	}
	m.CalculateSmoothNormals()

	if len(m.Normals) != 4 {
		t.Fatalf("normals = %d, want 4", len(m.Normals))
	}
	for i, n := range m.Normals {
		if n != math3d.V3(0, 0, 1) {
			t.Errorf("normal[%d] = %v, want +Z", i, n)
		}
	}
	if m.Faces[1].N != m.Faces[1].V {
		t.Errorf("normal indices %v should follow positions %v", m.Faces[1].N, m.Faces[1].V)
	}
}

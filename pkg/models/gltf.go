package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the document has none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(filepath.Base(path), doc)
}

// FromDocument converts every triangle primitive of doc into a single mesh.
// glTF indexes all attributes with one index, so each face corner uses the
// same value for V, UV and N. Missing UVs become (0, 0).
func (l *GLTFLoader) FromDocument(name string, doc *gltf.Document) (*Mesh, error) {
	mesh := NewMesh(name)
	missingNormals := false

	for _, m := range doc.Meshes {
		hasNormals, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		if !hasNormals {
			missingNormals = true
		}
	}

	if missingNormals && l.CalculateNormals {
		Logger().Debug("gltf: computing smooth normals", "mesh", name)
		mesh.CalculateSmoothNormals()
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh. It reports
// whether every primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	allNormals := true

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		normals := make([]math3d.Vec3, len(positions))
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			n, err := readVec3Accessor(doc, normIdx)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
			copy(normals, n)
		} else {
			allNormals = false
		}

		uvs := make([]math3d.Vec2, len(positions))
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			t, err := readVec2Accessor(doc, uvIdx)
			if err != nil {
				return false, fmt.Errorf("read uvs: %w", err)
			}
			for i := range min(len(t), len(uvs)) {
				// glTF puts V=0 at the top; OBJ puts it at the bottom.
				uvs[i] = math3d.V2(t[i].X, 1-t[i].Y)
			}
		}

		base := len(mesh.Positions)
		mesh.Positions = append(mesh.Positions, positions...)
		mesh.Normals = append(mesh.Normals, normals...)
		mesh.UVs = append(mesh.UVs, uvs...)

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// Both glTF and OBJ wind front faces counter-clockwise, so the
		// order is kept.
		for i := 0; i+2 < len(indices); i += 3 {
			v := [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]}
			mesh.Faces = append(mesh.Faces, Face{V: v, UV: v, N: v})
		}
	}

	return allNormals, nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		f := floats[i*3:]
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		result[i] = math3d.V2(float64(floats[i*2]), float64(floats[i*2+1]))
	}
	return result, nil
}

// readIndices reads index data from a scalar GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

func accessorAt(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", idx, ErrIndexRange)
	}
	return doc.Accessors[idx], nil
}

// readFloats reads n float32 components per element.
func readFloats(doc *gltf.Document, accessor *gltf.Accessor, n int) ([]float32, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected FLOAT components, got %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([]float32, accessor.Count*n)
	for i := range accessor.Count {
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[i*stride+j*4:])
			result[i*n+j] = math.Float32frombits(bits)
		}
	}
	return result, nil
}

// accessorBytes returns the accessor's bytes starting at its first element
// and the stride between elements. elemSize is used when the buffer view
// is tightly packed.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d: %w", *accessor.BufferView, ErrIndexRange)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d: %w", bufferView.Buffer, ErrIndexRange)
	}
	buffer := doc.Buffers[bufferView.Buffer]

	// gltf.Open resolves external URIs into Data
	if buffer.Data == nil {
		return nil, 0, errors.New("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	if accessor.Count == 0 {
		return nil, stride, nil
	}
	end := start + (accessor.Count-1)*stride + elemSize
	if start < 0 || end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor reads [%d, %d) past buffer of %d bytes", start, end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// decodable embedded or referenced image. The image is nil when none is
// found.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().FromDocument(filepath.Base(path), doc)
	if err != nil {
		return nil, nil, err
	}

	for i, img := range doc.Images {
		data := imageBytes(doc, img, filepath.Dir(path))
		if len(data) == 0 {
			continue
		}
		decoded, format, err := render.DecodeImage(bytes.NewReader(data), img.URI)
		if err != nil {
			Logger().Warn("gltf: skipping undecodable image", "index", i, "err", err)
			continue
		}
		Logger().Debug("gltf: using embedded texture", "index", i, "format", format)
		return mesh, decoded, nil
	}

	return mesh, nil, nil
}

func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	if img.BufferView != nil {
		if *img.BufferView >= len(doc.BufferViews) {
			return nil
		}
		bv := doc.BufferViews[*img.BufferView]
		if bv.Buffer >= len(doc.Buffers) {
			return nil
		}
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if buf.Data == nil || end > len(buf.Data) {
			return nil
		}
		return buf.Data[bv.ByteOffset:end]
	}
	if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
		data, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
		return data
	}
	return nil
}

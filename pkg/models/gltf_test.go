package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/softraster/pkg/render"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

// triangleDoc builds a single-triangle document in the XY plane with
// ubyte indices and optional UVs.
func triangleDoc(withUVs bool) *gltf.Document {
	var data []byte
	putFloats := func(fs ...float32) {
		for _, f := range fs {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}

	putFloats(0, 0, 0, 1, 0, 0, 0, 1, 0)
	posLen := len(data)
	putFloats(0, 0, 1, 0, 0, 1)
	uvLen := len(data) - posLen
	idxOff := len(data)
	data = append(data, 0, 1, 2, 0)

	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
			{Buffer: 0, ByteOffset: posLen, ByteLength: uvLen},
			{Buffer: 0, ByteOffset: idxOff, ByteLength: 3},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec2},
			{BufferView: gltf.Index(2), ComponentType: gltf.ComponentUbyte, Count: 3, Type: gltf.AccessorScalar},
		},
	}

	attrs := map[string]int{gltf.POSITION: 0}
	if withUVs {
		attrs[gltf.TEXCOORD_0] = 1
	}
	doc.Meshes = []*gltf.Mesh{{
		Name:       "tri",
		Primitives: []*gltf.Primitive{{Attributes: attrs, Indices: gltf.Index(2)}},
	}}
	return doc
}

func TestFromDocument(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument("tri", triangleDoc(true))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	if mesh.TriangleCount() != 1 {
		t.Fatalf("triangles = %d, want 1", mesh.TriangleCount())
	}
	f := mesh.Faces[0]
	if f.V != [3]int{0, 1, 2} || f.UV != f.V || f.N != f.V {
		t.Errorf("face = %+v, want shared indices 0,1,2", f)
	}

	pos, uv, n := mesh.Triangle(0)
	if pos[1].X != 1 || pos[2].Y != 1 {
		t.Errorf("positions = %v", pos)
	}
	// V is flipped: stored (0,0) becomes (0,1)
	if uv[0].X != 0 || uv[0].Y != 1 || uv[2].Y != 0 {
		t.Errorf("uvs = %v", uv)
	}
	// Computed normal of a CCW triangle in the XY plane points at +Z
	for i, v := range n {
		if math.Abs(v.Z-1) > 1e-9 {
			t.Errorf("normal[%d] = %v, want +Z", i, v)
		}
	}
}

func TestFromDocumentMissingUVs(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument("tri", triangleDoc(false))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	_, uv, _ := mesh.Triangle(0)
	for i, v := range uv {
		if v.X != 0 || v.Y != 0 {
			t.Errorf("uv[%d] = %v, want zero", i, v)
		}
	}
}

func TestFromDocumentBadAccessor(t *testing.T) {
	doc := triangleDoc(true)
	doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 7

	_, err := NewGLTFLoader().FromDocument("tri", doc)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestFromDocumentShortBuffer(t *testing.T) {
	doc := triangleDoc(true)
	doc.Accessors[0].Count = 100

	if _, err := NewGLTFLoader().FromDocument("tri", doc); err == nil {
		t.Error("expected error for accessor past end of buffer")
	}
}

func TestLoadGLBWithTexture(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	src.Set(1, 0, color.NRGBA{200, 100, 50, 255})
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, src); err != nil {
		t.Fatal(err)
	}

	doc := triangleDoc(true)
	buf := doc.Buffers[0]
	offset := len(buf.Data)
	buf.Data = append(buf.Data, encoded.Bytes()...)
	buf.ByteLength = len(buf.Data)
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: encoded.Len(),
	})
	doc.Images = []*gltf.Image{{MimeType: "image/png", BufferView: gltf.Index(len(doc.BufferViews) - 1)}}

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}

	mesh, img, err := LoadGLBWithTexture(path)
	if err != nil {
		t.Fatalf("LoadGLBWithTexture: %v", err)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("triangles = %d, want 1", mesh.TriangleCount())
	}
	if img == nil {
		t.Fatal("embedded image not decoded")
	}

	tex := render.TextureFromImage(img)
	if got := tex.GetPixel(1, 0); got != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("texel (1, 0) = %v", got)
	}
}

func TestLoadGLBWithoutTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(triangleDoc(true), path); err != nil {
		t.Fatal(err)
	}

	_, img, err := LoadGLBWithTexture(path)
	if err != nil {
		t.Fatalf("LoadGLBWithTexture: %v", err)
	}
	if img != nil {
		t.Errorf("image = %T, want nil", img)
	}
}

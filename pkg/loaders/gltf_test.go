package loaders

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// quadDocument builds a document with one indexed quad (two triangles) in the XY plane
func quadDocument(indexType gltf.ComponentType) *gltf.Document {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}
	indices := []int{0, 1, 2, 0, 2, 3}

	var data []byte
	for _, p := range positions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(p))
	}
	indexOffset := len(data)
	for _, i := range indices {
		switch indexType {
		case gltf.ComponentUbyte:
			data = append(data, byte(i))
		case gltf.ComponentUshort:
			data = binary.LittleEndian.AppendUint16(data, uint16(i))
		default:
			data = binary.LittleEndian.AppendUint32(data, uint32(i))
		}
	}

	positionView, indexView, indexAccessor := 0, 1, 1
	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: indexOffset},
			{Buffer: 0, ByteOffset: indexOffset, ByteLength: len(data) - indexOffset},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: &positionView, ComponentType: gltf.ComponentFloat, Count: 4, Type: gltf.AccessorVec3},
			{BufferView: &indexView, ComponentType: indexType, Count: len(indices), Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "quad",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    &indexAccessor,
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
	}
}

func TestMeshFromDocument(t *testing.T) {
	tests := []struct {
		name      string
		indexType gltf.ComponentType
	}{
		{"ubyte indices", gltf.ComponentUbyte},
		{"ushort indices", gltf.ComponentUshort},
		{"uint indices", gltf.ComponentUint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := MeshFromDocument(quadDocument(tt.indexType))
			if err != nil {
				t.Fatalf("MeshFromDocument failed: %v", err)
			}
			if len(mesh.Vertices) != 4 {
				t.Errorf("Expected 4 vertices, got %d", len(mesh.Vertices))
			}
			if mesh.TriangleCount() != 2 {
				t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
			}
			if mesh.Vertices[2] != core.NewVec3(1, 1, 0) {
				t.Errorf("Expected vertex 2 at (1,1,0), got %v", mesh.Vertices[2])
			}
			if mesh.Faces[5] != 3 {
				t.Errorf("Expected last index 3, got %d", mesh.Faces[5])
			}

			box := mesh.BoundingBox()
			if !box.Contains(core.NewVec3(0.5, 0.5, 0)) || box.X.Max < 1 {
				t.Errorf("Unexpected bounding box %v", box)
			}
		})
	}
}

func TestMeshFromDocumentUnindexed(t *testing.T) {
	doc := quadDocument(gltf.ComponentUint)
	doc.Meshes[0].Primitives[0].Indices = nil

	mesh, err := MeshFromDocument(doc)
	if err != nil {
		t.Fatalf("MeshFromDocument failed: %v", err)
	}
	// Four positions make one complete sequential triangle
	if mesh.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", mesh.TriangleCount())
	}
}

func TestMeshFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*gltf.Document)
	}{
		{"only points", func(d *gltf.Document) { d.Meshes[0].Primitives[0].Mode = gltf.PrimitivePoints }},
		{"truncated buffer", func(d *gltf.Document) { d.Buffers[0].Data = d.Buffers[0].Data[:20] }},
		{"missing buffer data", func(d *gltf.Document) { d.Buffers[0].Data = nil }},
		{"float indices", func(d *gltf.Document) { d.Accessors[1].ComponentType = gltf.ComponentFloat }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := quadDocument(gltf.ComponentUshort)
			tt.modify(doc)
			if _, err := MeshFromDocument(doc); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadGLTFNotFound(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

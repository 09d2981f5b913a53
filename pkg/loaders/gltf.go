package loaders

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// MeshData contains triangle geometry flattened out of a glTF document
type MeshData struct {
	Name     string
	Vertices []core.Vec3 // Vertex positions
	Faces    []int       // Triangle indices (3 per triangle)
}

// TriangleCount returns the number of triangles in the mesh
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// BoundingBox returns the box around every vertex
func (m *MeshData) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(m.Vertices...)
}

// LoadGLTF loads every triangle primitive of a .gltf or .glb file
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := MeshFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// MeshFromDocument merges the triangle primitives of all meshes in doc.
// Node transforms are not applied.
func MeshFromDocument(doc *gltf.Document) (*MeshData, error) {
	mesh := &MeshData{}

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				// Lines and points have no surface
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := readPositions(doc, posIdx)
			if err != nil {
				return nil, fmt.Errorf("mesh %q positions: %w", m.Name, err)
			}
			baseVertex := len(mesh.Vertices)
			mesh.Vertices = append(mesh.Vertices, positions...)

			if prim.Indices != nil {
				indices, err := readIndices(doc, *prim.Indices)
				if err != nil {
					return nil, fmt.Errorf("mesh %q indices: %w", m.Name, err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					mesh.Faces = append(mesh.Faces,
						baseVertex+indices[i], baseVertex+indices[i+1], baseVertex+indices[i+2])
				}
			} else {
				// Unindexed primitives list their triangles in order
				for i := 0; i+2 < len(positions); i += 3 {
					mesh.Faces = append(mesh.Faces, baseVertex+i, baseVertex+i+1, baseVertex+i+2)
				}
			}
		}
	}

	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("no triangle primitives found")
	}
	return mesh, nil
}

// accessorBytes returns the buffer slice backing accessor plus its element stride
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elementSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data
	if data == nil {
		return nil, 0, fmt.Errorf("buffer %d has no data", view.Buffer)
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elementSize
	}
	start := view.ByteOffset + accessor.ByteOffset
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elementSize
		if end > len(data) {
			return nil, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(data))
		}
	}
	return data[start:], stride, nil
}

func readPositions(doc *gltf.Document, accessorIdx int) ([]core.Vec3, error) {
	if accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v / %v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]core.Vec3, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		result[i] = core.NewVec3(
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
		)
	}
	return result, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
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
		return nil, fmt.Errorf("unsupported index component type %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
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

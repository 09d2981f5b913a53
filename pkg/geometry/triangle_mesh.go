package geometry

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// TriangleMesh represents a collection of triangles with efficient ray intersection
// It uses an internal BVH for fast intersection tests
type TriangleMesh struct {
	triangles []Shape
	bvh       *BVHNode
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Materials []material.Material // Optional per-triangle materials
	Random    *rand.Rand          // Optional source for BVH axis choice
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices.
// Each group of 3 indices in faces forms a triangle.
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat material.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3", len(faces))
	}
	numTriangles := len(faces) / 3

	var random *rand.Rand
	var materials []material.Material
	if options != nil {
		random = options.Random
		materials = options.Materials
		if materials != nil && len(materials) != numTriangles {
			return nil, fmt.Errorf("got %d materials for %d triangles", len(materials), numTriangles)
		}
	}

	triangles := make([]Shape, 0, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("triangle %d: vertex index %d out of range [0,%d)", i, idx, len(vertices))
			}
		}

		triMaterial := mat
		if materials != nil {
			triMaterial = materials[i]
		}
		triangles = append(triangles, NewTriangle(vertices[i0], vertices[i1], vertices[i2], triMaterial))
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       NewBVH(triangles, random),
	}, nil
}

// Hit tests the ray against the mesh's hierarchy
func (tm *TriangleMesh) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	return tm.bvh.Hit(ray, rayT)
}

// BoundingBox returns the bounding box of the whole mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bvh.BoundingBox()
}

// TriangleCount returns the number of triangles in the mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}

// Triangles returns the individual triangles
func (tm *TriangleMesh) Triangles() []Shape {
	return tm.triangles
}

func (tm *TriangleMesh) shape() {}

package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func TestNewTriangleMesh(t *testing.T) {
	// Unit square in the XY plane as two triangles
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	faces := []int{0, 1, 2, 0, 2, 3}

	mesh, err := NewTriangleMesh(vertices, faces, DummyMaterial{}, &TriangleMeshOptions{Random: rand.New(rand.NewSource(1))})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}

	for _, p := range []core.Vec2{{X: 0.8, Y: 0.2}, {X: 0.2, Y: 0.8}} {
		hit, ok := mesh.Hit(core.NewRay(core.NewVec3(p.X, p.Y, 3), core.NewVec3(0, 0, -1)), defaultRayT)
		if !ok {
			t.Fatalf("Expected hit at %v", p)
		}
		if math.Abs(hit.T-3) > tolerance {
			t.Errorf("Expected t=3, got %f", hit.T)
		}
	}

	box := mesh.BoundingBox()
	if !vecNear(box.Max(), core.NewVec3(1, 1, box.Z.Max), tolerance) || box.X.Min != 0 {
		t.Errorf("Unexpected mesh bounds %v", box)
	}
}

func TestNewTriangleMesh_Errors(t *testing.T) {
	vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}

	tests := []struct {
		name    string
		faces   []int
		options *TriangleMeshOptions
	}{
		{"not a multiple of three", []int{0, 1}, nil},
		{"index out of range", []int{0, 1, 3}, nil},
		{"negative index", []int{0, -1, 2}, nil},
		{"material count mismatch", []int{0, 1, 2}, &TriangleMeshOptions{Materials: []material.Material{DummyMaterial{}, DummyMaterial{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTriangleMesh(vertices, tt.faces, DummyMaterial{}, tt.options); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

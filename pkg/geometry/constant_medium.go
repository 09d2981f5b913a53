package geometry

import (
	"math"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// boundaryExitOffset keeps the exit search from finding the entry point again
const boundaryExitOffset = 0.0001

// ConstantMedium is a homogeneous fog filling a closed boundary shape.
// Free-path lengths are drawn from the goroutine-safe top-level math/rand
// source, since Hit has no sampler.
type ConstantMedium struct {
	Boundary      Shape
	PhaseFunction material.Material
	negInvDensity float64
}

// NewConstantMedium fills boundary with a medium of the given density whose
// particles scatter isotropically with the texture's color
func NewConstantMedium(boundary Shape, density float64, albedo material.Texture) *ConstantMedium {
	return &ConstantMedium{
		Boundary:      boundary,
		PhaseFunction: material.NewTexturedIsotropic(albedo),
		negInvDensity: -1.0 / density,
	}
}

// NewConstantMediumColor fills boundary with a solid-colored medium
func NewConstantMediumColor(boundary Shape, density float64, albedo core.Vec3) *ConstantMedium {
	return NewConstantMedium(boundary, density, material.NewSolidColor(albedo))
}

// Hit samples a scattering distance inside the boundary. A density of zero
// gives an infinite free path, so the medium is never hit.
func (m *ConstantMedium) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	entry, ok := m.Boundary.Hit(ray, core.Universe)
	if !ok {
		return nil, false
	}
	exit, ok := m.Boundary.Hit(ray, core.NewInterval(entry.T+boundaryExitOffset, math.Inf(1)))
	if !ok {
		return nil, false
	}

	t1 := math.Max(entry.T, rayT.Min)
	t2 := math.Min(exit.T, rayT.Max)
	if t1 >= t2 {
		return nil, false
	}
	t1 = math.Max(t1, 0)

	rayLength := ray.Direction.Length()
	distanceInsideBoundary := (t2 - t1) * rayLength
	hitDistance := m.negInvDensity * math.Log(rand.Float64())

	if !(hitDistance <= distanceInsideBoundary) {
		return nil, false
	}

	t := t1 + hitDistance/rayLength
	return &material.HitRecord{
		T:         t,
		Point:     ray.At(t),
		Normal:    core.NewVec3(1, 0, 0), // arbitrary
		FrontFace: true,                  // also arbitrary
		Material:  m.PhaseFunction,
	}, true
}

// BoundingBox returns the boundary's box
func (m *ConstantMedium) BoundingBox() core.AABB {
	return m.Boundary.BoundingBox()
}

func (m *ConstantMedium) shape() {}

package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Box is an axis-aligned box made of six quads that share one material
type Box struct {
	Material material.Material
	faces    [6]*Quad
	bbox     core.AABB
}

// NewBox creates the box with opposite corners a and b
func NewBox(a, b core.Vec3, material material.Material) *Box {
	lo := core.NewVec3(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z))
	hi := core.NewVec3(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z))

	dx := core.NewVec3(hi.X-lo.X, 0, 0)
	dy := core.NewVec3(0, hi.Y-lo.Y, 0)
	dz := core.NewVec3(0, 0, hi.Z-lo.Z)

	box := &Box{Material: material}
	box.faces = [6]*Quad{
		NewQuad(core.NewVec3(lo.X, lo.Y, hi.Z), dx, dy, material),          // front
		NewQuad(core.NewVec3(hi.X, lo.Y, hi.Z), dz.Negate(), dy, material), // right
		NewQuad(core.NewVec3(hi.X, lo.Y, lo.Z), dx.Negate(), dy, material), // back
		NewQuad(core.NewVec3(lo.X, lo.Y, lo.Z), dz, dy, material),          // left
		NewQuad(core.NewVec3(lo.X, hi.Y, hi.Z), dx, dz.Negate(), material), // top
		NewQuad(core.NewVec3(lo.X, lo.Y, lo.Z), dx, dz, material),          // bottom
	}

	box.bbox = core.EmptyAABB
	for _, face := range box.faces {
		box.bbox = box.bbox.Union(face.BoundingBox())
	}

	return box
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord

	for _, face := range b.faces {
		if hit, isHit := face.Hit(ray, rayT); isHit {
			rayT.Max = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}

func (b *Box) shape() {}

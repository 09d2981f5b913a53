package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// RotateY rotates the wrapped shape about the world Y axis
type RotateY struct {
	Object   Shape
	sinTheta float64
	cosTheta float64
	bbox     core.AABB
}

// NewRotateY wraps object, rotating it by angle degrees about Y
func NewRotateY(object Shape, angle float64) *RotateY {
	radians := angle * math.Pi / 180
	r := &RotateY{
		Object:   object,
		sinTheta: math.Sin(radians),
		cosTheta: math.Cos(radians),
	}

	r.bbox = core.EmptyAABB
	for _, corner := range object.BoundingBox().Corners() {
		r.bbox = r.bbox.Union(core.NewAABBFromPoints(r.toWorld(corner)))
	}

	return r
}

// toObject rotates a world-space vector by -θ
func (r *RotateY) toObject(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		r.cosTheta*v.X-r.sinTheta*v.Z,
		v.Y,
		r.sinTheta*v.X+r.cosTheta*v.Z,
	)
}

// toWorld rotates an object-space vector by θ
func (r *RotateY) toWorld(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		r.cosTheta*v.X+r.sinTheta*v.Z,
		v.Y,
		-r.sinTheta*v.X+r.cosTheta*v.Z,
	)
}

// Hit intersects the ray in object space and rotates the point and normal back
func (r *RotateY) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	rotated := core.NewRayAtTime(r.toObject(ray.Origin), r.toObject(ray.Direction), ray.Time)

	hit, ok := r.Object.Hit(rotated, rayT)
	if !ok {
		return nil, false
	}

	hit.Point = r.toWorld(hit.Point)
	hit.Normal = r.toWorld(hit.Normal)
	return hit, true
}

// BoundingBox returns the box around the rotated corners of the wrapped box
func (r *RotateY) BoundingBox() core.AABB {
	return r.bbox
}

func (r *RotateY) shape() {}

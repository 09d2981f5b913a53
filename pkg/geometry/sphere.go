package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Sphere represents a sphere whose center may move linearly over ray time [0,1]
type Sphere struct {
	center1  core.Vec3
	motion   core.Vec3 // center2 - center1, zero for a stationary sphere
	Radius   float64
	Material material.Material
	bbox     core.AABB
}

// NewSphere creates a stationary sphere
func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return NewMovingSphere(center, center, radius, material)
}

// NewMovingSphere creates a sphere at center1 at time 0 and center2 at time 1
func NewMovingSphere(center1, center2 core.Vec3, radius float64, material material.Material) *Sphere {
	s := &Sphere{
		center1:  center1,
		motion:   center2.Subtract(center1),
		Radius:   math.Max(0, radius),
		Material: material,
	}
	s.computeBoundingBox()
	return s
}

// Center returns the sphere's center at the given ray time
func (s *Sphere) Center(time float64) core.Vec3 {
	return s.center1.Add(s.motion.Multiply(time))
}

// SetCenter moves the sphere and makes it stationary. Callers must not
// render concurrently with this.
func (s *Sphere) SetCenter(center core.Vec3) {
	s.center1 = center
	s.motion = core.Vec3{}
	s.computeBoundingBox()
}

func (s *Sphere) computeBoundingBox() {
	rvec := core.NewVec3(s.Radius, s.Radius, s.Radius)
	c1, c2 := s.Center(0), s.Center(1)
	box1 := core.NewAABBFromPoints(c1.Subtract(rvec), c1.Add(rvec))
	box2 := core.NewAABBFromPoints(c2.Subtract(rvec), c2.Add(rvec))
	s.bbox = box1.Union(box2)
}

// Hit tests if a ray intersects with the sphere. A sphere of radius 0 has no
// surface and is never hit.
func (s *Sphere) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	if s.Radius <= 0 {
		return nil, false
	}
	center := s.Center(ray.Time)
	oc := ray.Origin.Subtract(center)

	// Quadratic at² + 2·halfB·t + c = 0
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Nearest root inside the open range, else the far one
	root := (-halfB - sqrtD) / a
	if !rayT.Surrounds(root) {
		root = (-halfB + sqrtD) / a
		if !rayT.Surrounds(root) {
			return nil, false
		}
	}

	hitRecord := &material.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}
	outwardNormal := hitRecord.Point.Subtract(center).Multiply(1.0 / s.Radius)
	hitRecord.SetFaceNormal(ray, outwardNormal)
	hitRecord.UV = sphereUV(outwardNormal)

	return hitRecord, true
}

// sphereUV maps a point on the unit sphere to u in [0,1] around the Y axis
// starting at -X, and v in [0,1] from the south pole to the north pole
func sphereUV(p core.Vec3) core.Vec2 {
	theta := math.Acos(-p.Y)
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// BoundingBox returns the box swept by the sphere over the shutter interval
func (s *Sphere) BoundingBox() core.AABB {
	return s.bbox
}

func (s *Sphere) shape() {}

package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Triangle is the half of the parallelogram a + α(b-a) + β(c-b) where β ≤ α
type Triangle struct {
	planar
	Material material.Material
	bbox     core.AABB
}

// NewTriangle creates a triangle from its three vertices
func NewTriangle(a, b, c core.Vec3, material material.Material) *Triangle {
	return &Triangle{
		planar:   newPlanar(a, b.Subtract(a), c.Subtract(b)),
		Material: material,
		bbox:     core.NewAABBFromPoints(a, b, c),
	}
}

// Vertices returns the three corners in construction order
func (t *Triangle) Vertices() (a, b, c core.Vec3) {
	a = t.Q
	b = a.Add(t.U)
	c = b.Add(t.V)
	return a, b, c
}

// Hit tests if a ray intersects with the triangle
func (t *Triangle) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	tHit, alpha, beta, ok := t.intersect(ray, rayT)
	if !ok {
		return nil, false
	}

	unit := core.NewInterval(0, 1)
	if !unit.Contains(alpha) || !unit.Contains(beta) || beta > alpha {
		return nil, false
	}

	hitRecord := &material.HitRecord{
		T:        tHit,
		Point:    ray.At(tHit),
		UV:       core.NewVec2(alpha, beta),
		Material: t.Material,
	}
	hitRecord.SetFaceNormal(ray, t.Normal)

	return hitRecord, true
}

// BoundingBox returns the padded box around the three vertices
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

func (t *Triangle) shape() {}

package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Shape is anything a ray can hit: primitives, transform wrappers and
// aggregates. The set of shapes is closed; only this package implements it.
type Shape interface {
	// Hit returns the nearest intersection with t inside rayT
	Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
	// BoundingBox returns a box enclosing the shape over all ray times
	BoundingBox() core.AABB

	shape()
}

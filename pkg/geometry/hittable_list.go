package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// HittableList is an unordered collection of shapes intersected by linear scan
type HittableList struct {
	Shapes []Shape
	bbox   core.AABB
}

// NewHittableList creates a list holding shapes
func NewHittableList(shapes ...Shape) *HittableList {
	list := &HittableList{bbox: core.EmptyAABB}
	for _, s := range shapes {
		list.Add(s)
	}
	return list
}

// Add appends a shape and grows the bounding box
func (l *HittableList) Add(s Shape) {
	l.Shapes = append(l.Shapes, s)
	l.bbox = l.bbox.Union(s.BoundingBox())
}

// Hit returns the nearest hit among all shapes
func (l *HittableList) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord

	for _, s := range l.Shapes {
		if hit, ok := s.Hit(ray, rayT); ok {
			rayT.Max = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// BoundingBox returns the union of all shape boxes
func (l *HittableList) BoundingBox() core.AABB {
	return l.bbox
}

func (l *HittableList) shape() {}

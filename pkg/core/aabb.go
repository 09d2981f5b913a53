package core

// minimumThickness is the padding applied to any degenerate axis so flat
// primitives still produce a box with volume.
const minimumThickness = 0.0001

// AABB represents an axis-aligned bounding box as one interval per axis
type AABB struct {
	X, Y, Z Interval
}

// EmptyAABB contains nothing and is the identity for Union
var EmptyAABB = AABB{X: Empty, Y: Empty, Z: Empty}

// NewAABB creates a padded AABB from three intervals
func NewAABB(x, y, z Interval) AABB {
	return AABB{X: x, Y: y, Z: z}.padToMinimums()
}

// NewAABBFromPoints creates a padded AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return EmptyAABB
	}

	box := AABB{
		X: Interval{points[0].X, points[0].X},
		Y: Interval{points[0].Y, points[0].Y},
		Z: Interval{points[0].Z, points[0].Z},
	}
	for _, p := range points[1:] {
		box.X = NewIntervalUnion(box.X, Interval{p.X, p.X})
		box.Y = NewIntervalUnion(box.Y, Interval{p.Y, p.Y})
		box.Z = NewIntervalUnion(box.Z, Interval{p.Z, p.Z})
	}

	return box.padToMinimums()
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		X: NewIntervalUnion(aabb.X, other.X),
		Y: NewIntervalUnion(aabb.Y, other.Y),
		Z: NewIntervalUnion(aabb.Z, other.Z),
	}
}

// Axis returns the interval for axis 0 (x), 1 (y) or 2 (z)
func (aabb AABB) Axis(n int) Interval {
	switch n {
	case 1:
		return aabb.Y
	case 2:
		return aabb.Z
	default:
		return aabb.X
	}
}

// Min returns the minimum corner
func (aabb AABB) Min() Vec3 {
	return Vec3{aabb.X.Min, aabb.Y.Min, aabb.Z.Min}
}

// Max returns the maximum corner
func (aabb AABB) Max() Vec3 {
	return Vec3{aabb.X.Max, aabb.Y.Max, aabb.Z.Max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min().Add(aabb.Max()).Multiply(0.5)
}

// Contains reports whether p lies inside the box, boundaries included
func (aabb AABB) Contains(p Vec3) bool {
	return aabb.X.Contains(p.X) && aabb.Y.Contains(p.Y) && aabb.Z.Contains(p.Z)
}

// Translate returns the box shifted by offset
func (aabb AABB) Translate(offset Vec3) AABB {
	return AABB{X: aabb.X.Add(offset.X), Y: aabb.Y.Add(offset.Y), Z: aabb.Z.Add(offset.Z)}
}

// Corners returns the eight corner points of the box
func (aabb AABB) Corners() [8]Vec3 {
	var corners [8]Vec3
	for i := 0; i < 8; i++ {
		x, y, z := aabb.X.Min, aabb.Y.Min, aabb.Z.Min
		if i&1 != 0 {
			x = aabb.X.Max
		}
		if i&2 != 0 {
			y = aabb.Y.Max
		}
		if i&4 != 0 {
			z = aabb.Z.Max
		}
		corners[i] = Vec3{x, y, z}
	}
	return corners
}

// Hit tests if a ray intersects with this AABB within rayT using the slab method
func (aabb AABB) Hit(ray Ray, rayT Interval) bool {
	_, ok := aabb.Clip(ray, rayT)
	return ok
}

// Clip runs the slab test and returns the part of rayT during which the ray
// is inside the box
func (aabb AABB) Clip(ray Ray, rayT Interval) (Interval, bool) {
	for axis := 0; axis < 3; axis++ {
		slab := aabb.Axis(axis)
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)

		// Ray is parallel to this slab
		if direction == 0 {
			if origin < slab.Min || origin > slab.Max {
				return rayT, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t0 := (slab.Min - origin) * invDirection
		t1 := (slab.Max - origin) * invDirection
		if invDirection < 0 {
			t0, t1 = t1, t0
		}

		if t0 > rayT.Min {
			rayT.Min = t0
		}
		if t1 < rayT.Max {
			rayT.Max = t1
		}

		if rayT.Max <= rayT.Min {
			return rayT, false
		}
	}

	return rayT, true
}

// padToMinimums widens any axis thinner than minimumThickness
func (aabb AABB) padToMinimums() AABB {
	if aabb.X.Size() < minimumThickness {
		aabb.X = aabb.X.Expand(minimumThickness)
	}
	if aabb.Y.Size() < minimumThickness {
		aabb.Y = aabb.Y.Expand(minimumThickness)
	}
	if aabb.Z.Size() < minimumThickness {
		aabb.Z = aabb.Z.Expand(minimumThickness)
	}
	return aabb
}

package geometry

import (
	"math/rand"
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// BVHNode is an interior node of a Bounding Volume Hierarchy. Each child is
// either a primitive or another BVHNode.
type BVHNode struct {
	Left  Shape
	Right Shape
	bbox  core.AABB
}

// NewBVH builds a hierarchy over shapes by median splits along a random axis.
// The input slice is not modified. A nil random uses the shared math/rand source.
func NewBVH(shapes []Shape, random *rand.Rand) *BVHNode {
	if len(shapes) == 0 {
		return &BVHNode{bbox: core.EmptyAABB}
	}

	// Copy so that concurrent builders never reorder a caller's slice
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	pickAxis := rand.Intn
	if random != nil {
		pickAxis = random.Intn
	}

	return buildBVH(shapesCopy, pickAxis)
}

// buildBVH recursively splits shapes at the median of their bounding box
// minimum along a randomly chosen axis
func buildBVH(shapes []Shape, pickAxis func(int) int) *BVHNode {
	axis := pickAxis(3)
	less := func(a, b Shape) bool {
		return a.BoundingBox().Axis(axis).Min < b.BoundingBox().Axis(axis).Min
	}

	node := &BVHNode{}
	switch len(shapes) {
	case 1:
		node.Left, node.Right = shapes[0], shapes[0]
	case 2:
		node.Left, node.Right = shapes[0], shapes[1]
		if less(shapes[1], shapes[0]) {
			node.Left, node.Right = shapes[1], shapes[0]
		}
	default:
		sort.SliceStable(shapes, func(i, j int) bool { return less(shapes[i], shapes[j]) })
		mid := len(shapes) / 2
		node.Left = buildBVH(shapes[:mid], pickAxis)
		node.Right = buildBVH(shapes[mid:], pickAxis)
	}

	node.bbox = node.Left.BoundingBox().Union(node.Right.BoundingBox())
	return node
}

// Hit returns the nearer of the two children's hits. The right child is
// searched only up to the left child's hit, so any hit it reports is nearer.
func (n *BVHNode) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	if n.Left == nil || !n.bbox.Hit(ray, rayT) {
		return nil, false
	}

	leftHit, hitLeft := n.Left.Hit(ray, rayT)
	if hitLeft {
		rayT.Max = leftHit.T
	}

	if rightHit, hitRight := n.Right.Hit(ray, rayT); hitRight {
		return rightHit, true
	}
	return leftHit, hitLeft
}

// BoundingBox returns the union of both children's boxes
func (n *BVHNode) BoundingBox() core.AABB {
	return n.bbox
}

func (n *BVHNode) shape() {}

// BVHStats describes the shape of a hierarchy
type BVHStats struct {
	TotalNodes  int
	LeafNodes   int
	MaxDepth    int
	AvgDepth    float64
	TotalShapes int
}

// Stats walks the hierarchy and returns its statistics
func (n *BVHNode) Stats() BVHStats {
	stats := BVHStats{}
	if n.Left == nil {
		return stats
	}

	n.collectStats(0, &stats)
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics, counting each primitive child as a leaf
func (n *BVHNode) collectStats(depth int, stats *BVHStats) {
	stats.TotalNodes++

	children := []Shape{n.Left, n.Right}
	if n.Left == n.Right {
		children = children[:1]
	}

	for _, child := range children {
		if inner, ok := child.(*BVHNode); ok {
			inner.collectStats(depth+1, stats)
			continue
		}
		stats.LeafNodes++
		stats.TotalShapes++
		stats.AvgDepth += float64(depth + 1)
		if depth+1 > stats.MaxDepth {
			stats.MaxDepth = depth + 1
		}
	}
}

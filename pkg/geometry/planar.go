package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// parallelEpsilon is the smallest |n·d| for which a ray is not treated as
// parallel to a plane
const parallelEpsilon = 1e-8

// planar holds the plane basis shared by quads and triangles: the plane
// through Q spanned by U and V, with W used to recover planar coordinates
type planar struct {
	Q, U, V core.Vec3
	W       core.Vec3
	Normal  core.Vec3
	D       float64
}

func newPlanar(q, u, v core.Vec3) planar {
	n := u.Cross(v)
	normal := n.Normalize()
	return planar{
		Q:      q,
		U:      u,
		V:      v,
		W:      n.Multiply(1.0 / n.Dot(n)),
		Normal: normal,
		D:      normal.Dot(q),
	}
}

// intersect solves the ray-plane hit and returns t and the planar
// coordinates (alpha, beta) of the hit point in the U, V basis
func (p *planar) intersect(ray core.Ray, rayT core.Interval) (t, alpha, beta float64, ok bool) {
	denom := p.Normal.Dot(ray.Direction)
	if math.Abs(denom) < parallelEpsilon {
		return 0, 0, 0, false
	}

	t = (p.D - p.Normal.Dot(ray.Origin)) / denom
	if !rayT.Contains(t) {
		return 0, 0, 0, false
	}

	hitVector := ray.At(t).Subtract(p.Q)
	alpha = p.W.Dot(hitVector.Cross(p.V))
	beta = p.W.Dot(p.U.Cross(hitVector))
	return t, alpha, beta, true
}

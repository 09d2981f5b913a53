package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// DummyMaterial absorbs everything; tests only care about geometry
type DummyMaterial struct{}

func (DummyMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{}, false
}

func (DummyMaterial) Emitted(uv core.Vec2, point core.Vec3) core.Vec3 {
	return core.Vec3{}
}

const tolerance = 1e-9

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

var defaultRayT = core.NewInterval(0.001, math.Inf(1))

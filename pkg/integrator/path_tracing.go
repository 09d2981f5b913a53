package integrator

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// shadowAcneEpsilon is the smallest accepted hit distance; it keeps scattered
// rays from re-hitting the surface they leave
const shadowAcneEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing with the
// scene's background as the only light besides emissive materials
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor traces ray through the scene, bounded by the camera's max depth
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3 {
	return pt.radiance(ray, scene, sampler, scene.CameraConfig.MaxDepth)
}

// radiance returns emitted light plus attenuated light gathered along the
// scattered ray. Depth 0 gathers nothing.
func (pt *PathTracingIntegrator) radiance(ray core.Ray, scene *scene.Scene, sampler core.Sampler, depth int) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := scene.Hit(ray, core.NewInterval(shadowAcneEpsilon, math.Inf(1)))
	if !isHit {
		return scene.CameraConfig.Background
	}

	colorEmitted := hit.Material.Emitted(hit.UV, hit.Point)

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return colorEmitted
	}

	colorScattered := scatter.Attenuation.MultiplyVec(pt.radiance(scatter.Scattered, scene, sampler, depth-1))
	return colorEmitted.Add(colorScattered)
}

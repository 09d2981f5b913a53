package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// DiffuseLight is an emitter that absorbs every incoming ray
type DiffuseLight struct {
	Emit Texture
}

// NewDiffuseLight creates a light with a uniform emitted color
func NewDiffuseLight(emission core.Vec3) *DiffuseLight {
	return NewTexturedDiffuseLight(NewSolidColor(emission))
}

// NewTexturedDiffuseLight creates a light whose emission varies over the surface
func NewTexturedDiffuseLight(emit Texture) *DiffuseLight {
	return &DiffuseLight{Emit: emit}
}

// Scatter never scatters
func (l *DiffuseLight) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{}, false
}

// Emitted returns the texture value at the hit
func (l *DiffuseLight) Emitted(uv core.Vec2, point core.Vec3) core.Vec3 {
	return l.Emit.Evaluate(uv, point)
}

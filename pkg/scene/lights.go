package scene

import (
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func init() {
	register(SceneInfo{
		ID:          "quads",
		DisplayName: "Quads",
		Description: "Five colored quads around the camera",
		Group:       "Geometry",
	}, newQuadsScene)
	register(SceneInfo{
		ID:          "simple-light",
		DisplayName: "Simple Light",
		Description: "Marble spheres lit by an emissive quad and sphere",
		Group:       "Lights",
	}, newSimpleLightScene)
}

func newQuadsScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := skyCamera(core.NewVec3(0, 0, 9), core.NewVec3(0, 0, 0), 80)
	config.AspectRatio = 1
	s, err := New("quads", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	leftRed := material.NewLambertian(core.NewVec3(1.0, 0.2, 0.2))
	backGreen := material.NewLambertian(core.NewVec3(0.2, 1.0, 0.2))
	rightBlue := material.NewLambertian(core.NewVec3(0.2, 0.2, 1.0))
	upperOrange := material.NewLambertian(core.NewVec3(1.0, 0.5, 0.0))
	lowerTeal := material.NewLambertian(core.NewVec3(0.2, 0.8, 0.8))

	s.AddAll(
		geometry.NewQuad(core.NewVec3(-3, -2, 5), core.NewVec3(0, 0, -4), core.NewVec3(0, 4, 0), leftRed),
		geometry.NewQuad(core.NewVec3(-2, -2, 0), core.NewVec3(4, 0, 0), core.NewVec3(0, 4, 0), backGreen),
		geometry.NewQuad(core.NewVec3(3, -2, 1), core.NewVec3(0, 0, 4), core.NewVec3(0, 4, 0), rightBlue),
		geometry.NewQuad(core.NewVec3(-2, 3, 1), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, 4), upperOrange),
		geometry.NewQuad(core.NewVec3(-2, -3, 5), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, -4), lowerTeal),
	)
	return s, nil
}

func newSimpleLightScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := skyCamera(core.NewVec3(26, 3, 6), core.NewVec3(0, 2, 0), 20)
	config.Background = core.Vec3{}
	s, err := New("simple-light", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	marble := material.NewTexturedLambertian(material.NewNoiseTexture(4, random))
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, marble))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(0, 2, 0), 2, marble))

	light := material.NewDiffuseLight(core.NewVec3(20, 20, 20))
	s.Add(geometry.NewQuad(core.NewVec3(3, 1, -2), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), light))
	s.Add(geometry.NewSphere(core.NewVec3(0, 7, 0), 2, light))

	return s, nil
}

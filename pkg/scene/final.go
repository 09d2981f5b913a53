package scene

import (
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func init() {
	register(SceneInfo{
		ID:          "final",
		DisplayName: "Final Scene",
		Description: "Every feature at once: boxes, motion blur, glass, smoke, textures and instancing",
		Group:       "Showcase",
	}, newFinalScene)
}

func newFinalScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := geometry.CameraConfig{
		Center:          core.NewVec3(478, 278, -600),
		LookAt:          core.NewVec3(278, 278, 0),
		Up:              core.NewVec3(0, 1, 0),
		Width:           400,
		AspectRatio:     1,
		VFov:            40,
		FocusDistance:   10,
		SamplesPerPixel: 1,
		MaxDepth:        10,
	}
	s, err := New("final", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	// Ground of random-height boxes, grouped under one hierarchy
	ground := material.NewLambertian(core.NewVec3(0.48, 0.83, 0.53))
	const boxesPerSide = 20
	boxes := make([]geometry.Shape, 0, boxesPerSide*boxesPerSide)
	for i := 0; i < boxesPerSide; i++ {
		for j := 0; j < boxesPerSide; j++ {
			const w = 100.0
			x0 := -1000 + float64(i)*w
			z0 := -1000 + float64(j)*w
			y1 := 1 + 100*random.Float64()
			boxes = append(boxes, geometry.NewBox(core.NewVec3(x0, 0, z0), core.NewVec3(x0+w, y1, z0+w), ground))
		}
	}
	s.Add(geometry.NewBVH(boxes, random))

	light := material.NewDiffuseLight(core.NewVec3(7, 7, 7))
	s.Add(geometry.NewQuad(core.NewVec3(123, 554, 147), core.NewVec3(300, 0, 0), core.NewVec3(0, 0, 265), light))

	// Motion blurred sphere
	center1 := core.NewVec3(400, 400, 200)
	center2 := center1.Add(core.NewVec3(30, 0, 0))
	s.Add(geometry.NewMovingSphere(center1, center2, 50, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.1))))

	s.Add(geometry.NewSphere(core.NewVec3(260, 150, 45), 50, material.NewDielectric(1.5)))
	s.Add(geometry.NewSphere(core.NewVec3(0, 150, 145), 50, material.NewMetal(core.NewVec3(0.8, 0.8, 0.9), 1.0)))

	// Glass shell filled with blue subsurface fog
	boundary := geometry.NewSphere(core.NewVec3(360, 150, 145), 70, material.NewDielectric(1.5))
	s.Add(boundary)
	s.Add(geometry.NewConstantMediumColor(boundary, 0.2, core.NewVec3(0.2, 0.4, 0.9)))

	// Thin mist over everything
	mist := geometry.NewSphere(core.NewVec3(0, 0, 0), 5000, material.NewDielectric(1.5))
	s.Add(geometry.NewConstantMediumColor(mist, 0.0001, core.NewVec3(1, 1, 1)))

	s.Add(geometry.NewSphere(core.NewVec3(400, 200, 400), 100, material.NewTexturedLambertian(earthTexture(opts))))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(220, 280, 300), 80,
		material.NewTexturedLambertian(material.NewNoiseTexture(0.1, random))))

	// Cluster of small spheres, instanced as one rotated and translated hierarchy
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	cluster := make([]geometry.Shape, 0, 1000)
	for i := 0; i < 1000; i++ {
		center := core.NewVec3(165*random.Float64(), 165*random.Float64(), 165*random.Float64())
		cluster = append(cluster, geometry.NewSphere(center, 10, white))
	}
	s.Add(geometry.NewTranslate(
		geometry.NewRotateY(geometry.NewBVH(cluster, random), 15),
		core.NewVec3(-100, 270, 395),
	))

	return s, nil
}

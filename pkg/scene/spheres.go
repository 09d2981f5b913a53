package scene

import (
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

var skyBlue = core.NewVec3(0.7, 0.8, 1.0)

func init() {
	register(SceneInfo{
		ID:          "random-spheres",
		DisplayName: "Random Spheres",
		Description: "Diffuse, metal and glass spheres scattered over a checkered ground",
		Group:       "Spheres",
	}, newRandomSpheresScene)
	register(SceneInfo{
		ID:          "two-spheres",
		DisplayName: "Two Spheres",
		Description: "Two large checkered spheres",
		Group:       "Textures",
	}, newTwoSpheresScene)
	register(SceneInfo{
		ID:          "earth",
		DisplayName: "Earth",
		Description: "Image-textured globe",
		Group:       "Textures",
	}, newEarthScene)
	register(SceneInfo{
		ID:          "perlin",
		DisplayName: "Perlin Spheres",
		Description: "Marble noise texture on a sphere and the ground",
		Group:       "Textures",
	}, newPerlinScene)
}

// skyCamera is the shared default for the outdoor scenes
func skyCamera(from, at core.Vec3, vfov float64) geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:          from,
		LookAt:          at,
		Up:              core.NewVec3(0, 1, 0),
		Width:           400,
		AspectRatio:     16.0 / 9.0,
		VFov:            vfov,
		FocusDistance:   10,
		SamplesPerPixel: 1,
		MaxDepth:        50,
		Background:      skyBlue,
	}
}

// earthTexture loads the configured earth image, falling back to a checker
// pattern when none is configured or it fails to load
func earthTexture(opts Options) material.Texture {
	if opts.EarthTexture != "" {
		image, err := loaders.LoadImage(opts.EarthTexture)
		if err == nil {
			return material.NewImageTexture(image)
		}
		opts.logger().Warn("earth texture unavailable, using checker", "path", opts.EarthTexture, "error", err)
	}
	return material.NewCheckerColors(0.1, core.NewVec3(0.1, 0.3, 0.7), core.NewVec3(0.2, 0.6, 0.2))
}

func newRandomSpheresScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := skyCamera(core.NewVec3(15, 2.5, 8), core.NewVec3(0, 0, -1), 20)
	config.DefocusAngle = 0.15
	s, err := New("random-spheres", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	ground := material.NewCheckerColors(0.32, core.NewVec3(0.2, 0.3, 0.1), core.NewVec3(0.9, 0.9, 0.9))
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewTexturedLambertian(ground)))

	earth := material.NewTexturedLambertian(earthTexture(opts))
	for a := -7; a < 7; a += 4 {
		for b := -5; b < 5; b += 2 {
			chooseMaterial := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(core.NewVec3(4, 0.2, 0)).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMaterial < 0.8:
				mat = earth
			case chooseMaterial < 0.95:
				albedo := core.NewVec3(0.5+0.5*random.Float64(), 0.5+0.5*random.Float64(), 0.5+0.5*random.Float64())
				mat = material.NewMetal(albedo, 0.5*random.Float64())
			default:
				mat = material.NewDielectric(1.5)
			}
			s.Add(geometry.NewSphere(center, 0.2, mat))
		}
	}

	s.Add(geometry.NewSphere(core.NewVec3(2, 1, 0), 1, material.NewDielectric(1.5)))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(-2, 1, 0), 1, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	s.Add(geometry.NewSphere(core.NewVec3(6, 1, 0), 1, material.NewMetal(core.NewVec3(0.4, 0.4, 0.4), 0.025)))
	s.Add(geometry.NewSphere(core.NewVec3(-6, 1, 0), 1, earth))

	return s, nil
}

func newTwoSpheresScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := skyCamera(core.NewVec3(13, 2, 3), core.NewVec3(0, 0, 0), 20)
	s, err := New("two-spheres", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	checker := material.NewTexturedLambertian(
		material.NewCheckerColors(0.32, core.NewVec3(0.2, 0.3, 0.1), core.NewVec3(0.9, 0.9, 0.9)))
	s.Add(geometry.NewSphere(core.NewVec3(0, -10, 0), 10, checker))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(0, 10, 0), 10, checker))

	return s, nil
}

func newEarthScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := skyCamera(core.NewVec3(0, 0, 12), core.NewVec3(0, 0, 0), 20)
	s, err := New("earth", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(0, 0, 0), 2, material.NewTexturedLambertian(earthTexture(opts))))
	return s, nil
}

func newPerlinScene(random *rand.Rand, opts Options) (*Scene, error) {
	config := skyCamera(core.NewVec3(13, 2, 3), core.NewVec3(0, 0, 0), 20)
	s, err := New("perlin", opts.mergeCameraConfig(config), random)
	if err != nil {
		return nil, err
	}

	marble := material.NewTexturedLambertian(material.NewNoiseTexture(4, random))
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, marble))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(0, 2, 0), 2, marble))

	return s, nil
}

package renderer

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testCameraConfig looks down -Z from the origin
func testCameraConfig(width int, background core.Vec3) geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:          core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		Width:           width,
		AspectRatio:     1,
		VFov:            90,
		FocusDistance:   1,
		SamplesPerPixel: 2,
		MaxDepth:        3,
		Background:      background,
	}
}

func createTestScene(t *testing.T, config geometry.CameraConfig, shapes ...geometry.Shape) *scene.Scene {
	t.Helper()
	s, err := scene.New("test", config, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("scene.New failed: %v", err)
	}
	s.AddAll(shapes...)
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	return s
}

// backgroundOnlyScene has a single sphere behind the camera, so every camera
// ray returns the background exactly
func backgroundOnlyScene(t *testing.T, width int, background core.Vec3) *scene.Scene {
	hidden := geometry.NewSphere(core.NewVec3(0, 0, 10), 1, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	return createTestScene(t, testCameraConfig(width, background), hidden)
}

// sphereScene has the unit test sphere in view and a quad behind the camera.
// It returns the sphere and quad handles.
func sphereScene(t *testing.T, width int) (*scene.Scene, scene.Handle, scene.Handle) {
	t.Helper()
	s, err := scene.New("spheres", testCameraConfig(width, core.NewVec3(0.5, 0.7, 1.0)), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("scene.New failed: %v", err)
	}
	sphere := s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))))
	quad := s.Add(geometry.NewQuad(core.NewVec3(-1, -1, 5), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), material.NewLambertian(core.NewVec3(0.2, 0.2, 0.2))))
	s.Focus = sphere
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	return s, sphere, quad
}

func testRenderer(t *testing.T, s *scene.Scene) *ProgressiveRenderer {
	t.Helper()
	pr := NewProgressiveRenderer(s, integrator.NewPathTracingIntegrator(), ProgressiveConfig{NumWorkers: 3, BandHeight: 8, Seed: 1}, quietLogger)
	t.Cleanup(pr.Close)
	return pr
}

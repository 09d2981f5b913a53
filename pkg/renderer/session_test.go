package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func testSession(t *testing.T, s *scene.Scene) *Session {
	t.Helper()
	ss := NewSession(s, ProgressiveConfig{NumWorkers: 2, Seed: 3}, quietLogger)
	t.Cleanup(ss.Close)
	return ss
}

func renderFrames(t *testing.T, ss *Session, n int) FrameStats {
	t.Helper()
	var stats FrameStats
	for i := 0; i < n; i++ {
		var err error
		if stats, err = ss.RenderFrame(context.Background()); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
	}
	return stats
}

func TestSessionSphereMoveRestartsAverage(t *testing.T) {
	s, sphere, _ := sphereScene(t, 12)
	ss := testSession(t, s)
	renderFrames(t, ss, 3)

	target := core.NewVec3(0.3, 0.2, -1.5)
	if err := ss.Submit(SphereMove{Handle: sphere, Center: target}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Queued changes wait for the next frame
	if center, _ := ss.SphereCenter(sphere); center != core.NewVec3(0, 0, -1) {
		t.Errorf("Expected original center before next frame, got %v", center)
	}
	if ss.Frames() != 3 {
		t.Errorf("Expected 3 frames before next frame, got %d", ss.Frames())
	}

	stats := renderFrames(t, ss, 1)
	if stats.Frame != 1 {
		t.Errorf("Expected frame 1 after change, got %d", stats.Frame)
	}
	center, err := ss.SphereCenter(sphere)
	if err != nil {
		t.Fatalf("SphereCenter failed: %v", err)
	}
	if center != target {
		t.Errorf("Expected center %v, got %v", target, center)
	}

	// The rebuilt hierarchy must see the sphere at its new place
	ray := core.NewRay(core.NewVec3(0.3, 0.2, 0), core.NewVec3(0, 0, -1))
	hit, ok := s.Hit(ray, core.NewInterval(0.001, math.Inf(1)))
	if !ok || math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected hit at t=1 after move, got ok=%t hit=%v", ok, hit)
	}
}

func TestSessionSubmitRejectsBadChanges(t *testing.T) {
	s, _, quad := sphereScene(t, 8)
	ss := testSession(t, s)

	badCamera := s.CameraConfig
	badCamera.VFov = 0

	tests := []struct {
		name   string
		change Change
		err    error
	}{
		{"unknown handle", SphereMove{Handle: scene.NewHandle()}, scene.ErrUnknownHandle},
		{"not a sphere", SphereMove{Handle: quad}, scene.ErrNotSphere},
		{"invalid camera", CameraChange{Config: badCamera}, geometry.ErrInvalidCamera},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ss.Submit(tt.change); !errors.Is(err, tt.err) {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
		})
	}

	if err := ss.Submit(nil); err == nil {
		t.Error("Expected error for nil change")
	}
}

func TestSessionCameraChange(t *testing.T) {
	s, _, _ := sphereScene(t, 12)
	ss := testSession(t, s)
	renderFrames(t, ss, 2)

	config := ss.CameraConfig()
	config.Center = core.NewVec3(0, 0, 0.5)
	config.Width = 6
	if err := ss.Submit(CameraChange{Config: config}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	stats := renderFrames(t, ss, 1)
	if stats.Frame != 1 {
		t.Errorf("Expected frame 1 after camera change, got %d", stats.Frame)
	}
	if got := ss.CameraConfig().Center; got != config.Center {
		t.Errorf("Expected camera center %v, got %v", config.Center, got)
	}
	if snap := ss.Snapshot(); snap.Width != 6 || snap.Height != 6 || len(snap.Pixels) != 36 {
		t.Errorf("Expected 6x6 snapshot, got %dx%d with %d pixels", snap.Width, snap.Height, len(snap.Pixels))
	}
}

func TestSessionInspect(t *testing.T) {
	// 101 pixels with a 90 degree field of view puts pixel 50 dead center
	s, sphere, _ := sphereScene(t, 101)
	ss := testSession(t, s)

	got, ok, err := ss.Inspect(50, 50)
	if err != nil || !ok {
		t.Fatalf("Expected center pixel to hit, got ok=%t err=%v", ok, err)
	}
	if got.Handle != sphere || got.Kind != "sphere" {
		t.Errorf("Expected sphere %s, got %s %s", sphere, got.Kind, got.Handle)
	}
	if math.Abs(got.Hit.T-0.5) > 1e-9 {
		t.Errorf("Expected t=0.5, got %f", got.Hit.T)
	}
	if !got.Hit.FrontFace || got.Hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Expected front face normal (0,0,1), got front=%t normal=%v", got.Hit.FrontFace, got.Hit.Normal)
	}

	if _, ok, err := ss.Inspect(0, 0); err != nil || ok {
		t.Errorf("Expected corner pixel to miss, got ok=%t err=%v", ok, err)
	}
	if _, _, err := ss.Inspect(101, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestSessionRenderProgressive(t *testing.T) {
	s, _, _ := sphereScene(t, 8)
	ss := testSession(t, s)

	frames, errs := ss.RenderProgressive(context.Background(), 3)
	count := 0
	for result := range frames {
		count++
		if result.Stats.Frame != count {
			t.Errorf("Expected frame %d, got %d", count, result.Stats.Frame)
		}
		if len(result.Pixels) != result.Width*result.Height {
			t.Errorf("Expected %d pixels, got %d", result.Width*result.Height, len(result.Pixels))
		}
	}
	if err := <-errs; err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 frames, got %d", count)
	}
}

func TestSessionRenderProgressiveStopsOnCancel(t *testing.T) {
	s, _, _ := sphereScene(t, 8)
	ss := testSession(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	frames, errs := ss.RenderProgressive(ctx, 0)
	<-frames
	cancel()

	for range frames {
	}
	if err := <-errs; err != nil {
		t.Errorf("Expected no error after cancel, got %v", err)
	}
}

func TestSessionFocus(t *testing.T) {
	s, sphere, _ := sphereScene(t, 8)
	ss := testSession(t, s)

	if h, ok := ss.Focus(); !ok || h != sphere {
		t.Errorf("Expected focus %s, got %s (%t)", sphere, h, ok)
	}
	if ss.SceneName() != "spheres" {
		t.Errorf("Expected scene name spheres, got %s", ss.SceneName())
	}
}

package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrOutOfBounds is returned when inspecting a pixel outside the image
var ErrOutOfBounds = errors.New("renderer: pixel out of bounds")

// Change is an edit to the scene applied between frames
type Change interface {
	// apply edits s and reports whether geometry moved
	apply(s *scene.Scene) (bool, error)
}

// CameraChange replaces the camera
type CameraChange struct {
	Config geometry.CameraConfig
}

func (c CameraChange) apply(s *scene.Scene) (bool, error) {
	return false, s.SetCameraConfig(c.Config)
}

// SphereMove makes a sphere stationary at Center
type SphereMove struct {
	Handle scene.Handle
	Center core.Vec3
}

func (m SphereMove) apply(s *scene.Scene) (bool, error) {
	if _, err := s.LookupSphere(m.Handle); err != nil {
		return false, err
	}
	s.MoveSphere(m.Handle, m.Center)
	return true, nil
}

// Session owns a scene and its progressive renderer. Changes submitted from
// any goroutine are queued and applied together before the next frame, which
// restarts the average.
type Session struct {
	mu      sync.Mutex // Guards pending
	pending []Change

	frameMu  sync.Mutex // Guards scene and renderer
	scene    *scene.Scene
	renderer *ProgressiveRenderer
	logger   *slog.Logger
}

// FrameResult is a display snapshot taken after a frame
type FrameResult struct {
	Stats  FrameStats
	Width  int
	Height int
	Pixels []uint32 // Packed 0x00RRGGBB, row 0 at the top
}

// Image unpacks the snapshot into an image
func (fr FrameResult) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fr.Width, fr.Height))
	for i, p := range fr.Pixels {
		r, g, b := UnpackColor(p)
		img.SetRGBA(i%fr.Width, i/fr.Width, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return img
}

// NewSession creates a session for a preprocessed scene
func NewSession(s *scene.Scene, config ProgressiveConfig, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("scene", s.Name)
	return &Session{
		scene:    s,
		renderer: NewProgressiveRenderer(s, integrator.NewPathTracingIntegrator(), config, logger),
		logger:   logger,
	}
}

// Submit validates c and queues it for the next frame
func (ss *Session) Submit(c Change) error {
	switch c := c.(type) {
	case CameraChange:
		if err := c.Config.Validate(); err != nil {
			return err
		}
	case SphereMove:
		// The handle index is fixed once the scene is built
		if _, err := ss.scene.LookupSphere(c.Handle); err != nil {
			return err
		}
	case nil:
		return errors.New("renderer: nil change")
	}

	ss.mu.Lock()
	ss.pending = append(ss.pending, c)
	ss.mu.Unlock()
	return nil
}

// RenderFrame applies queued changes and renders one frame
func (ss *Session) RenderFrame(ctx context.Context) (FrameStats, error) {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()

	if err := ss.applyPending(); err != nil {
		return FrameStats{}, err
	}
	return ss.renderer.RenderFrame(ctx)
}

func (ss *Session) applyPending() error {
	ss.mu.Lock()
	changes := ss.pending
	ss.pending = nil
	ss.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}

	geometryChanged := false
	for _, c := range changes {
		moved, err := c.apply(ss.scene)
		if err != nil {
			ss.logger.Warn("change rejected", "change", fmt.Sprintf("%T", c), "err", err)
			continue
		}
		geometryChanged = geometryChanged || moved
	}

	if geometryChanged {
		if err := ss.scene.Preprocess(); err != nil {
			return fmt.Errorf("rebuild scene: %w", err)
		}
	}
	ss.renderer.Reset()
	ss.logger.Debug("scene changed", "changes", len(changes), "rebuilt", geometryChanged)
	return nil
}

// RenderProgressive renders frames until ctx is done or maxFrames frames have
// been rendered (0 = no limit), sending a snapshot after each one. Both
// channels close when rendering stops; a nil or context error is not sent.
func (ss *Session) RenderProgressive(ctx context.Context, maxFrames int) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
			stats, err := ss.RenderFrame(ctx)
			if err != nil {
				if ctx.Err() == nil {
					errChan <- err
				}
				return
			}

			result := ss.Snapshot()
			result.Stats = stats
			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frameChan, errChan
}

// Snapshot packs the current average for display
func (ss *Session) Snapshot() FrameResult {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()

	accum := ss.renderer.Accumulator()
	width, height := accum.Size()
	pixels := make([]uint32, width*height)
	accum.Pack(pixels)
	return FrameResult{Width: width, Height: height, Pixels: pixels}
}

// Image returns the current average as an image
func (ss *Session) Image() *image.RGBA {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()
	return ss.renderer.Image()
}

// Frames returns the number of frames in the current average
func (ss *Session) Frames() int {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()
	return ss.renderer.Frames()
}

// SceneName returns the name of the rendered scene
func (ss *Session) SceneName() string {
	return ss.scene.Name
}

// Focus returns the handle of the scene's interactive sphere, if any
func (ss *Session) Focus() (scene.Handle, bool) {
	return ss.scene.Focus, ss.scene.Focus != ""
}

// CameraConfig returns the camera of the last applied change
func (ss *Session) CameraConfig() geometry.CameraConfig {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()
	return ss.scene.CameraConfig
}

// SphereCenter returns the applied center of the sphere named by h
func (ss *Session) SphereCenter(h scene.Handle) (core.Vec3, error) {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()
	sphere, err := ss.scene.LookupSphere(h)
	if err != nil {
		return core.Vec3{}, err
	}
	return sphere.Center(0), nil
}

// Primitive returns the top-level primitive named by h
func (ss *Session) Primitive(h scene.Handle) (geometry.Shape, error) {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()
	return ss.scene.Lookup(h)
}

// Inspection describes the primitive seen through a pixel
type Inspection struct {
	Handle scene.Handle
	Kind   string
	Hit    material.HitRecord
}

// Inspect casts the ray through the center of pixel (x, y), with y counted
// from the top, and reports the top-level primitive it hits first
func (ss *Session) Inspect(x, y int) (*Inspection, bool, error) {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()

	width, height := ss.scene.Camera.ImageSize()
	if x < 0 || y < 0 || x >= width || y >= height {
		return nil, false, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, width, height)
	}

	handle, hit, ok := ss.scene.Nearest(ss.scene.Camera.GetRayThroughCenter(x, y))
	if !ok {
		return nil, false, nil
	}
	shape, err := ss.scene.Lookup(handle)
	if err != nil {
		return nil, false, err
	}
	return &Inspection{
		Handle: handle,
		Kind:   scene.Kind(shape),
		Hit:    *hit,
	}, true, nil
}

// Close stops the session's workers. Callers must stop rendering first.
func (ss *Session) Close() {
	ss.frameMu.Lock()
	defer ss.frameMu.Unlock()
	ss.renderer.Close()
}

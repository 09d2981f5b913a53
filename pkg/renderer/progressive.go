package renderer

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrPoolClosed is returned when a frame is requested after Close
var ErrPoolClosed = errors.New("renderer: worker pool closed")

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	BandHeight int   // Rows per worker task
	Seed       int64 // Base seed for worker samplers (0 = clock)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		NumWorkers: 0,
		BandHeight: 8,
	}
}

// ProgressiveRenderer renders frames of a scene and keeps their running
// average. It is not safe for concurrent use; Session serializes access.
type ProgressiveRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	config     ProgressiveConfig
	accum      *Accumulator
	frame      []core.Vec3 // Scratch buffer for the frame in flight
	workerPool *WorkerPool
	closed     bool
	logger     *slog.Logger
}

// NewProgressiveRenderer creates a renderer and starts its workers. Close
// releases them.
func NewProgressiveRenderer(s *scene.Scene, integ integrator.Integrator, config ProgressiveConfig, logger *slog.Logger) *ProgressiveRenderer {
	if config.BandHeight <= 0 {
		config.BandHeight = DefaultProgressiveConfig().BandHeight
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = slog.Default()
	}

	pr := &ProgressiveRenderer{
		scene:      s,
		integrator: integ,
		config:     config,
		workerPool: NewWorkerPool(config.NumWorkers, config.Seed),
		logger:     logger,
	}
	pr.Reset()
	pr.workerPool.Start()
	return pr
}

// Reset discards the accumulated frames, resizing the buffers if the camera
// resolution changed
func (pr *ProgressiveRenderer) Reset() {
	width, height := pr.scene.Camera.ImageSize()
	if pr.accum != nil {
		if w, h := pr.accum.Size(); w == width && h == height {
			pr.accum.Reset()
			return
		}
	}
	pr.accum = NewAccumulator(width, height)
	pr.frame = make([]core.Vec3, width*height)
}

// RenderFrame renders one frame of SamplesPerPixel samples per pixel and
// adds it to the running average. A cancelled frame is discarded and leaves
// the accumulator untouched.
func (pr *ProgressiveRenderer) RenderFrame(ctx context.Context) (FrameStats, error) {
	if pr.closed {
		return FrameStats{}, ErrPoolClosed
	}
	start := time.Now()

	width, height := pr.scene.Camera.ImageSize()
	if w, h := pr.accum.Size(); w != width || h != height {
		pr.Reset()
	}

	job := &frameJob{
		ctx:        ctx,
		scene:      pr.scene,
		integrator: pr.integrator,
		width:      width,
		spp:        pr.scene.CameraConfig.SamplesPerPixel,
		dst:        pr.frame,
	}

	var tasks []RowTask
	for y0 := 0; y0 < height; y0 += pr.config.BandHeight {
		tasks = append(tasks, RowTask{
			Y0:     y0,
			Y1:     min(y0+pr.config.BandHeight, height),
			TaskID: len(tasks),
			job:    job,
		})
	}

	// Submit from a goroutine so a short queue can't deadlock with results
	go func() {
		for _, task := range tasks {
			pr.workerPool.SubmitTask(task)
		}
	}()

	var frameErr error
	samples := 0
	for range tasks {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return FrameStats{}, ErrPoolClosed
		}
		if result.Err != nil && frameErr == nil {
			frameErr = result.Err
		}
		samples += result.Samples
	}
	if frameErr != nil {
		pr.logger.Debug("frame discarded", "frame", pr.accum.Frames()+1, "err", frameErr)
		return FrameStats{}, frameErr
	}

	pr.accum.AddFrame(pr.frame)

	stats := FrameStats{
		Frame:         pr.accum.Frames(),
		Duration:      time.Since(start),
		Samples:       samples,
		MeanLuminance: AverageLuminance(pr.frame),
	}
	pr.logger.Debug("frame rendered", stats.LogAttrs()...)
	return stats, nil
}

// Frames returns the number of frames in the running average
func (pr *ProgressiveRenderer) Frames() int {
	return pr.accum.Frames()
}

// Accumulator exposes the running average
func (pr *ProgressiveRenderer) Accumulator() *Accumulator {
	return pr.accum
}

// Image returns the current display image
func (pr *ProgressiveRenderer) Image() *image.RGBA {
	return pr.accum.Image()
}

// GetNumWorkers returns the size of the worker pool
func (pr *ProgressiveRenderer) GetNumWorkers() int {
	return pr.workerPool.GetNumWorkers()
}

// Close stops the workers. It must not be called while a frame renders.
func (pr *ProgressiveRenderer) Close() {
	pr.closed = true
	pr.workerPool.Stop()
}

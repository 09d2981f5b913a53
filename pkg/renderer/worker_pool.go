package renderer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// frameJob is the state shared by every band of one frame. Bands cover
// disjoint rows, so workers write dst without locking.
type frameJob struct {
	ctx        context.Context
	scene      *scene.Scene
	integrator integrator.Integrator
	width      int
	spp        int
	dst        []core.Vec3
}

// RowTask is a band of image rows [Y0, Y1) to render for one frame
type RowTask struct {
	Y0, Y1 int
	TaskID int
	job    *frameJob
}

// RowResult reports a finished band
type RowResult struct {
	TaskID  int
	Samples int
	Err     error
}

// WorkerPool renders row bands in parallel. Workers live as long as the pool
// and each keeps its own sampler.
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// Worker renders bands taken from the pool's task queue
type Worker struct {
	ID          int
	sampler     core.Sampler
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// NewWorkerPool creates a pool of numWorkers workers (CPU count when <= 0).
// Worker i draws from a generator seeded with seed+i.
func NewWorkerPool(numWorkers int, seed int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, numWorkers*2),
		resultQueue: make(chan RowResult, numWorkers*2),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			sampler:     core.NewRandomSampler(rand.New(rand.NewSource(seed + int64(i)))),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop shuts down all workers once the queued tasks drain
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
	})
}

// SubmitTask queues a band, blocking while the queue is full
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed band result
func (wp *WorkerPool) GetResult() (RowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.renderRows(task)
	}
}

// renderRows writes the mean of spp samples for every pixel in the band.
// Cancellation is checked once per row.
func (w *Worker) renderRows(task RowTask) RowResult {
	job := task.job
	camera := job.scene.Camera
	scale := 1.0 / float64(job.spp)
	samples := 0

	for y := task.Y0; y < task.Y1; y++ {
		if err := job.ctx.Err(); err != nil {
			return RowResult{TaskID: task.TaskID, Samples: samples, Err: err}
		}
		row := job.dst[y*job.width : (y+1)*job.width]
		for x := range row {
			var color core.Vec3
			for s := 0; s < job.spp; s++ {
				ray := camera.GetRay(x, y, w.sampler)
				color = color.Add(job.integrator.RayColor(ray, job.scene, w.sampler))
			}
			row[x] = color.Multiply(scale)
			samples += job.spp
		}
	}

	return RowResult{TaskID: task.TaskID, Samples: samples}
}

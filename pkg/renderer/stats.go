package renderer

import (
	"log/slog"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// FrameStats describes one completed frame
type FrameStats struct {
	Frame         int           // Frames accumulated including this one
	Duration      time.Duration // Wall time of the frame
	Samples       int           // Camera rays traced
	MeanLuminance float64       // Average luminance of this frame's estimates
}

// SamplesPerSecond returns the frame's sampling throughput
func (fs FrameStats) SamplesPerSecond() float64 {
	if fs.Duration <= 0 {
		return 0
	}
	return float64(fs.Samples) / fs.Duration.Seconds()
}

// LogAttrs returns the stats as slog key/value pairs
func (fs FrameStats) LogAttrs() []any {
	return []any{
		slog.Int("frame", fs.Frame),
		slog.Duration("elapsed", fs.Duration),
		slog.Int("samples", fs.Samples),
		slog.Float64("samples_per_sec", fs.SamplesPerSecond()),
		slog.Float64("mean_luminance", fs.MeanLuminance),
	}
}

// AverageLuminance returns the mean luminance of a set of pixel colors
func AverageLuminance(pixels []core.Vec3) float64 {
	if len(pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range pixels {
		total += c.Luminance()
	}
	return total / float64(len(pixels))
}

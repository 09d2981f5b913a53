package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Accumulator holds the running per-pixel radiance sum of successive frames
type Accumulator struct {
	width, height int
	sum           []core.Vec3 // Row-major, row 0 at the top
	frames        int
}

// NewAccumulator creates an empty accumulator for a width x height image
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		width:  width,
		height: height,
		sum:    make([]core.Vec3, width*height),
	}
}

// Size returns the image dimensions
func (a *Accumulator) Size() (int, int) {
	return a.width, a.height
}

// Frames returns the number of frames summed since the last reset
func (a *Accumulator) Frames() int {
	return a.frames
}

// AddFrame adds one frame's per-pixel estimates
func (a *Accumulator) AddFrame(frame []core.Vec3) {
	for i, c := range frame {
		a.sum[i] = a.sum[i].Add(c)
	}
	a.frames++
}

// Reset zeroes the sum so the next frame restarts the average
func (a *Accumulator) Reset() {
	clear(a.sum)
	a.frames = 0
}

// Mean returns the average radiance of pixel (x, y)
func (a *Accumulator) Mean(x, y int) core.Vec3 {
	if a.frames == 0 {
		return core.Vec3{}
	}
	return a.sum[y*a.width+x].Multiply(1.0 / float64(a.frames))
}

// Pack writes the display form of every pixel into dst, which must hold
// width*height values
func (a *Accumulator) Pack(dst []uint32) {
	scale := 0.0
	if a.frames > 0 {
		scale = 1.0 / float64(a.frames)
	}
	for i, c := range a.sum {
		dst[i] = PackColor(c.Multiply(scale))
	}
}

// Image returns the display form of the accumulated image
func (a *Accumulator) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, a.width, a.height))
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			r, g, b := displayChannels(a.Mean(x, y))
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// PackColor converts a linear color to 0x00RRGGBB: square-root gamma, each
// channel clamped to [0, 0.999] and scaled to 8 bits
func PackColor(c core.Vec3) uint32 {
	r, g, b := displayChannels(c)
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackColor splits a packed pixel into its 8-bit channels
func UnpackColor(p uint32) (r, g, b uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p)
}

func displayChannels(c core.Vec3) (uint8, uint8, uint8) {
	return toByte(c.X), toByte(c.Y), toByte(c.Z)
}

var displayRange = core.NewInterval(0, 0.999)

func toByte(linear float64) uint8 {
	gamma := 0.0
	if linear > 0 {
		gamma = math.Sqrt(linear)
	}
	return uint8(256 * displayRange.Clamp(gamma))
}

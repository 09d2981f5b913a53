package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// PixelSource is a decoded image addressed in row-major pixel coordinates
// with the origin at the top-left corner
type PixelSource interface {
	Width() int
	Height() int
	PixelAt(x, y int) core.Vec3
}

// debugCyan marks surfaces whose image failed to load
var debugCyan = core.NewVec3(0, 1, 1)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Image PixelSource
}

// NewImageTexture creates a new image texture
func NewImageTexture(image PixelSource) *ImageTexture {
	return &ImageTexture{Image: image}
}

// Evaluate samples the texture at given UV coordinates using nearest-neighbor filtering
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	if t.Image == nil || t.Image.Height() <= 0 || t.Image.Width() <= 0 {
		return debugCyan
	}

	unit := core.NewInterval(0, 1)
	u := unit.Clamp(finiteOrZero(uv.X))
	v := 1.0 - unit.Clamp(finiteOrZero(uv.Y)) // V=0 is bottom, image row 0 is top

	width, height := t.Image.Width(), t.Image.Height()
	x := max(0, min(int(u*float64(width)), width-1))
	y := max(0, min(int(v*float64(height)), height-1))

	return t.Image.PixelAt(x, y)
}

// finiteOrZero maps NaN to 0 so degenerate surface coordinates still index
// the image
func finiteOrZero(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return x
}

// ImageData is an in-memory PixelSource
type ImageData struct {
	width, height int
	Pixels        []core.Vec3 // Row-major: Pixels[y*width + x]
}

// NewImageData wraps a row-major pixel slice
func NewImageData(width, height int, pixels []core.Vec3) *ImageData {
	return &ImageData{width: width, height: height, Pixels: pixels}
}

func (d *ImageData) Width() int  { return d.width }
func (d *ImageData) Height() int { return d.height }

// PixelAt returns the pixel at (x, y)
func (d *ImageData) PixelAt(x, y int) core.Vec3 {
	return d.Pixels[y*d.width+x]
}

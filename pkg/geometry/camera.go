package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrInvalidCamera reports a camera configuration that would produce degenerate rays
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains the declarative view parameters of a camera
type CameraConfig struct {
	Center          core.Vec3 // Look-from point
	LookAt          core.Vec3 // Point the camera looks at
	Up              core.Vec3 // Up direction, need not be orthogonal to the view direction
	Width           int       // Image width in pixels
	AspectRatio     float64   // Width / height
	VFov            float64   // Vertical field of view in degrees
	DefocusAngle    float64   // Cone angle in degrees of rays through each pixel; 0 disables depth of field
	FocusDistance   float64   // Distance from Center to the plane of perfect focus
	SamplesPerPixel int       // Samples averaged into each pixel per frame
	MaxDepth        int       // Maximum ray bounce depth
	Background      core.Vec3 // Radiance of rays that escape the scene
}

// ImageHeight returns the image height implied by Width and AspectRatio, at least 1
func (c CameraConfig) ImageHeight() int {
	return max(1, int(float64(c.Width)/c.AspectRatio))
}

// Validate rejects configurations that would produce NaN or infinite geometry
func (c CameraConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width %d must be positive", ErrInvalidCamera, c.Width)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidCamera, c.AspectRatio)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical fov %v must be in (0, 180)", ErrInvalidCamera, c.VFov)
	case !(c.FocusDistance > 0):
		return fmt.Errorf("%w: focus distance %v must be positive", ErrInvalidCamera, c.FocusDistance)
	case c.DefocusAngle < 0 || c.DefocusAngle >= 180:
		return fmt.Errorf("%w: defocus angle %v must be in [0, 180)", ErrInvalidCamera, c.DefocusAngle)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidCamera, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidCamera, c.MaxDepth)
	}

	forward := c.LookAt.Subtract(c.Center)
	if forward.LengthSquared() < 1e-16 {
		return fmt.Errorf("%w: look-from and look-at coincide at %v", ErrInvalidCamera, c.Center)
	}
	if forward.Cross(c.Up).LengthSquared() < 1e-16 {
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidCamera, c.Up)
	}
	return nil
}

// Camera generates primary rays. All derived vectors are computed once at construction.
type Camera struct {
	config       CameraConfig
	imageHeight  int
	pixel00      core.Vec3 // Center of pixel (0, 0)
	pixelDeltaU  core.Vec3 // Offset to the pixel to the right
	pixelDeltaV  core.Vec3 // Offset to the pixel below
	u, v, w      core.Vec3 // Orthonormal basis: right, up, backward
	defocusDiskU core.Vec3
	defocusDiskV core.Vec3
}

// NewCamera validates config and derives the view basis
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Camera{config: config, imageHeight: config.ImageHeight()}

	theta := config.VFov * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * float64(config.Width) / float64(c.imageHeight)

	c.w = config.Center.Subtract(config.LookAt).Normalize()
	c.u = config.Up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Viewport edges: across the top row and down the left column
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)
	c.pixelDeltaU = viewportU.Multiply(1.0 / float64(config.Width))
	c.pixelDeltaV = viewportV.Multiply(1.0 / float64(c.imageHeight))

	viewportUpperLeft := config.Center.
		Subtract(c.w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	c.pixel00 = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDistance * math.Tan(config.DefocusAngle*math.Pi/360)
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)

	return c, nil
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// ImageSize returns the image width and height in pixels
func (c *Camera) ImageSize() (int, int) {
	return c.config.Width, c.imageHeight
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// GetCameraRight returns the unit direction to the right of the view
func (c *Camera) GetCameraRight() core.Vec3 {
	return c.u
}

// GetRay returns a ray through a random point of pixel (i, j), where j counts
// rows from the top, starting on the defocus disk at a random time in [0,1)
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampler.Get2D()
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y - 0.5))

	origin := c.config.Center
	if c.config.DefocusAngle > 0 {
		p := core.RandomInUnitDisk(sampler)
		origin = origin.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
	}

	return core.NewRayAtTime(origin, pixelSample.Subtract(origin), sampler.Get1D())
}

// GetRayThroughCenter returns the deterministic ray through the middle of
// pixel (i, j) from the camera center, used for picking
func (c *Camera) GetRayThroughCenter(i, j int) core.Ray {
	pixelCenter := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
	return core.NewRay(c.config.Center, pixelCenter.Subtract(c.config.Center))
}

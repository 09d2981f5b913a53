// Package control turns input actions into scene changes. Camera moves glide
// to their target on critically damped springs; sphere moves apply at once.
package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Step is the distance one key press moves the camera or the focus sphere
const Step = 0.25

// settleEpsilon is how close a spring must be to its target to snap
const settleEpsilon = 1e-4

// ErrNoFocus is returned for sphere actions in a scene without a focus sphere
var ErrNoFocus = errors.New("control: scene has no focus sphere")

// Target receives the changes. *renderer.Session implements it.
type Target interface {
	Submit(renderer.Change) error
	CameraConfig() geometry.CameraConfig
	Focus() (scene.Handle, bool)
	SphereCenter(scene.Handle) (core.Vec3, error)
}

// springAxis animates one coordinate of the camera center
type springAxis struct {
	pos, vel float64
	spring   harmonica.Spring
}

func newSpringAxis(fps int, pos float64) springAxis {
	// Frequency 6 settles in a few tenths of a second, damping 1 never overshoots
	return springAxis{pos: pos, spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

func (a *springAxis) update(target float64) {
	a.pos, a.vel = a.spring.Update(a.pos, a.vel, target)
	if math.Abs(a.pos-target) < settleEpsilon && math.Abs(a.vel) < settleEpsilon {
		a.pos, a.vel = target, 0
	}
}

// Controller owns the interactive camera and focus sphere state. It is not
// safe for concurrent use.
type Controller struct {
	target Target
	camera geometry.CameraConfig // Camera with Center at the spring target
	axes   [3]springAxis

	focus        scene.Handle
	hasFocus     bool
	sphereCenter core.Vec3
}

// New creates a controller starting from target's current camera and focus
func New(target Target, fps int) (*Controller, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("control: fps must be positive, got %d", fps)
	}

	c := &Controller{target: target, camera: target.CameraConfig()}
	for i := range c.axes {
		c.axes[i] = newSpringAxis(fps, c.camera.Center.Axis(i))
	}

	if h, ok := target.Focus(); ok {
		center, err := target.SphereCenter(h)
		if err != nil {
			return nil, fmt.Errorf("control: focus sphere: %w", err)
		}
		c.focus, c.hasFocus, c.sphereCenter = h, true, center
	}
	return c, nil
}

// Handle applies one action. Camera actions move the spring target; the
// camera follows on later Ticks.
func (c *Controller) Handle(action Action) error {
	// c.camera passed Validate when it was set
	cam, err := geometry.NewCamera(c.camera)
	if err != nil {
		return err
	}
	forward := cam.GetCameraForward()
	right := cam.GetCameraRight()
	up := c.camera.Up.Normalize()

	switch action {
	case MoveForward:
		return c.moveCamera(forward.Multiply(Step))
	case MoveBack:
		return c.moveCamera(forward.Multiply(-Step))
	case StrafeRight:
		return c.moveCamera(right.Multiply(Step))
	case StrafeLeft:
		return c.moveCamera(right.Multiply(-Step))
	case MoveUp:
		return c.moveCamera(up.Multiply(Step))
	case MoveDown:
		return c.moveCamera(up.Multiply(-Step))
	case SphereLeft:
		return c.moveSphere(core.NewVec3(-Step, 0, 0))
	case SphereRight:
		return c.moveSphere(core.NewVec3(Step, 0, 0))
	case SphereUp:
		return c.moveSphere(core.NewVec3(0, Step, 0))
	case SphereDown:
		return c.moveSphere(core.NewVec3(0, -Step, 0))
	case SphereBack:
		return c.moveSphere(core.NewVec3(0, 0, -Step))
	case SphereForward:
		return c.moveSphere(core.NewVec3(0, 0, Step))
	case None:
		return nil
	}
	return fmt.Errorf("control: unknown action %d", action)
}

// moveCamera shifts the look-from target. The look-at point stays put, so a
// move that would reach it is refused.
func (c *Controller) moveCamera(delta core.Vec3) error {
	next := c.camera
	next.Center = next.Center.Add(delta)
	if err := next.Validate(); err != nil {
		return err
	}
	c.camera = next
	return nil
}

func (c *Controller) moveSphere(delta core.Vec3) error {
	if !c.hasFocus {
		return ErrNoFocus
	}
	next := c.sphereCenter.Add(delta)
	if err := c.target.Submit(renderer.SphereMove{Handle: c.focus, Center: next}); err != nil {
		return err
	}
	c.sphereCenter = next
	return nil
}

// SetView retargets the camera to look from center at lookAt
func (c *Controller) SetView(center, lookAt core.Vec3) error {
	next := c.camera
	next.Center = center
	next.LookAt = lookAt
	if err := next.Validate(); err != nil {
		return err
	}
	c.camera = next
	return nil
}

// MoveSphere places any sphere of the scene, keeping the focus sphere's
// tracked position in step
func (c *Controller) MoveSphere(h scene.Handle, center core.Vec3) error {
	if err := c.target.Submit(renderer.SphereMove{Handle: h, Center: center}); err != nil {
		return err
	}
	if c.hasFocus && h == c.focus {
		c.sphereCenter = center
	}
	return nil
}

// Tick advances the camera springs one step and submits the new camera if it
// moved. It reports whether a change was submitted.
func (c *Controller) Tick() (bool, error) {
	if c.Settled() {
		return false, nil
	}
	for i := range c.axes {
		c.axes[i].update(c.camera.Center.Axis(i))
	}

	config := c.camera
	config.Center = c.Position()
	if err := c.target.Submit(renderer.CameraChange{Config: config}); err != nil {
		return false, err
	}
	return true, nil
}

// Settled reports whether the camera has reached its target
func (c *Controller) Settled() bool {
	for i, a := range c.axes {
		if a.pos != c.camera.Center.Axis(i) || a.vel != 0 {
			return false
		}
	}
	return true
}

// Position returns the current, smoothed camera center
func (c *Controller) Position() core.Vec3 {
	return core.NewVec3(c.axes[0].pos, c.axes[1].pos, c.axes[2].pos)
}

// TargetPosition returns where the camera is heading
func (c *Controller) TargetPosition() core.Vec3 {
	return c.camera.Center
}

// SphereCenter returns the last submitted focus sphere position
func (c *Controller) SphereCenter() (core.Vec3, bool) {
	return c.sphereCenter, c.hasFocus
}

// Resize submits a new image size, keeping the camera where it is now
func (c *Controller) Resize(width int, aspectRatio float64) error {
	next := c.camera
	next.Width = width
	next.AspectRatio = aspectRatio
	if err := next.Validate(); err != nil {
		return err
	}
	c.camera = next

	config := next
	config.Center = c.Position()
	return c.target.Submit(renderer.CameraChange{Config: config})
}

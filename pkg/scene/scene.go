package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

var (
	// ErrUnknownHandle is returned for a handle that names no primitive of the scene
	ErrUnknownHandle = errors.New("unknown primitive handle")
	// ErrNotSphere is returned when a sphere operation targets another primitive kind
	ErrNotSphere = errors.New("primitive is not a sphere")
)

// Scene contains all the elements needed for rendering. It is read-only while
// a frame renders; Add, MoveSphere, SetCameraConfig and Preprocess must only be
// called between frames.
type Scene struct {
	Name         string
	Camera       *geometry.Camera
	CameraConfig geometry.CameraConfig
	Shapes       []geometry.Shape  // Top-level primitives in insertion order
	Handles      []Handle          // Handles[i] names Shapes[i]
	Focus        Handle            // Sphere moved by interactive control, empty if none
	BVH          *geometry.BVHNode // Built by Preprocess

	list   *geometry.HittableList
	index  map[Handle]int
	random *rand.Rand
}

// New creates an empty scene. A nil random uses the shared math/rand source.
func New(name string, config geometry.CameraConfig, random *rand.Rand) (*Scene, error) {
	camera, err := geometry.NewCamera(config)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}

	return &Scene{
		Name:         name,
		Camera:       camera,
		CameraConfig: config,
		list:         geometry.NewHittableList(),
		index:        make(map[Handle]int),
		random:       random,
	}, nil
}

// Add appends a top-level primitive and returns its handle
func (s *Scene) Add(shape geometry.Shape) Handle {
	h := NewHandle()
	s.index[h] = len(s.Shapes)
	s.Shapes = append(s.Shapes, shape)
	s.Handles = append(s.Handles, h)
	s.list.Add(shape)
	return h
}

// AddAll adds each shape as its own top-level primitive
func (s *Scene) AddAll(shapes ...geometry.Shape) {
	for _, shape := range shapes {
		s.Add(shape)
	}
}

// Preprocess rebuilds the acceleration structure. It must run after the last
// Add and after any primitive moved.
func (s *Scene) Preprocess() error {
	if len(s.Shapes) == 0 {
		return fmt.Errorf("scene %q has no primitives", s.Name)
	}
	s.BVH = geometry.NewBVH(s.Shapes, s.random)
	s.list = geometry.NewHittableList(s.Shapes...)
	return nil
}

// Hit returns the nearest intersection in rayT, using the BVH once built and
// a linear scan before that
func (s *Scene) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	if s.BVH != nil {
		return s.BVH.Hit(ray, rayT)
	}
	return s.list.Hit(ray, rayT)
}

// Nearest returns the handle of the top-level primitive a ray hits first,
// along with the hit itself
func (s *Scene) Nearest(ray core.Ray) (Handle, *material.HitRecord, bool) {
	rayT := core.NewInterval(0.001, math.Inf(1))
	var (
		closest *material.HitRecord
		handle  Handle
	)
	for i, shape := range s.Shapes {
		if hit, ok := shape.Hit(ray, rayT); ok {
			rayT.Max = hit.T
			closest = hit
			handle = s.Handles[i]
		}
	}
	return handle, closest, closest != nil
}

// Lookup returns the primitive named by h
func (s *Scene) Lookup(h Handle) (geometry.Shape, error) {
	i, ok := s.index[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return s.Shapes[i], nil
}

// LookupSphere returns the sphere named by h
func (s *Scene) LookupSphere(h Handle) (*geometry.Sphere, error) {
	shape, err := s.Lookup(h)
	if err != nil {
		return nil, err
	}
	sphere, ok := shape.(*geometry.Sphere)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotSphere, h, Kind(shape))
	}
	return sphere, nil
}

// SphereCenter returns the time-zero center of the sphere named by h. Asking
// for the center of anything but a sphere of this scene is a caller bug and
// panics.
func (s *Scene) SphereCenter(h Handle) core.Vec3 {
	sphere, err := s.LookupSphere(h)
	if err != nil {
		panic(fmt.Sprintf("scene %q: sphere center query: %v", s.Name, err))
	}
	return sphere.Center(0)
}

// MoveSphere makes the sphere named by h stationary at center. Like
// SphereCenter it panics if h names a primitive that is not a sphere; the
// caller must Preprocess before the next frame.
func (s *Scene) MoveSphere(h Handle, center core.Vec3) {
	sphere, err := s.LookupSphere(h)
	if err != nil {
		panic(fmt.Sprintf("scene %q: move sphere: %v", s.Name, err))
	}
	sphere.SetCenter(center)
}

// SetCameraConfig validates config and replaces the camera
func (s *Scene) SetCameraConfig(config geometry.CameraConfig) error {
	camera, err := geometry.NewCamera(config)
	if err != nil {
		return err
	}
	s.Camera = camera
	s.CameraConfig = config
	return nil
}

// GetPrimitiveCount returns the number of leaf primitives, counting every
// triangle of a mesh
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		if mesh, ok := shape.(*geometry.TriangleMesh); ok {
			count += mesh.TriangleCount()
			continue
		}
		count++
	}
	return count
}

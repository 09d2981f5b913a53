package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	if hit, isHit := sphere.Hit(ray, defaultRayT); isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_ZeroRadiusIsNeverHit(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
	}{
		{"zero radius", 0},
		{"negative radius clamps to zero", -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(core.NewVec3(0, 0, 0), tt.radius, DummyMaterial{})
			// Aimed straight through the center
			ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
			if hit, isHit := sphere.Hit(ray, defaultRayT); isHit {
				t.Errorf("Expected miss, got hit with normal %v", hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(core.NewRay(tt.rayOrigin, tt.rayDirection), defaultRayT)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > tolerance {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !vecNear(hit.Normal, tt.expectedNormal, tolerance) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

// A ray aimed at the center from distance d hits at d - r
func TestSphere_Hit_DistanceMinusRadius(t *testing.T) {
	tests := []struct {
		center    core.Vec3
		radius    float64
		origin    core.Vec3
		direction core.Vec3
	}{
		{core.NewVec3(0, 0, -1), 0.5, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)},
		{core.NewVec3(3, 4, 5), 2, core.NewVec3(-7, 1, 2), core.NewVec3(1, 0, 0)},
		{core.NewVec3(-10, 0, 0), 0.25, core.NewVec3(10, 10, 10), core.NewVec3(0, 0, 0)},
		{core.NewVec3(1, 1, 1), 100, core.NewVec3(1000, -500, 20), core.NewVec3(0, 0, 0)},
	}

	for i, tt := range tests {
		sphere := NewSphere(tt.center, tt.radius, DummyMaterial{})
		toCenter := tt.center.Subtract(tt.origin)
		d := toCenter.Length()
		direction := toCenter.Normalize() // zero direction in the table means aim at the center

		hit, ok := sphere.Hit(core.NewRay(tt.origin, direction), defaultRayT)
		if !ok {
			t.Fatalf("case %d: expected hit", i)
		}
		if math.Abs(hit.T-(d-tt.radius)) > 1e-9*d {
			t.Errorf("case %d: expected t=%f, got %f", i, d-tt.radius, hit.T)
		}
	}
}

func TestSphere_Hit_OpenInterval(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Near root at t=1 is excluded by an open bound, so the far root is used
	hit, ok := sphere.Hit(ray, core.NewInterval(1, 10))
	if !ok || math.Abs(hit.T-3) > tolerance {
		t.Fatalf("Expected far root t=3, got %v (hit=%t)", hit, ok)
	}

	if _, ok := sphere.Hit(ray, core.NewInterval(1, 3)); ok {
		t.Error("Expected no hit when both roots sit on the interval bounds")
	}
}

func TestSphere_MovingCenter(t *testing.T) {
	sphere := NewMovingSphere(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), 0.5, DummyMaterial{})

	if c := sphere.Center(0.5); !vecNear(c, core.NewVec3(1, 0, 0), tolerance) {
		t.Errorf("Expected center (1,0,0) at t=0.5, got %v", c)
	}

	// The same ray hits only when the sphere has moved in front of it
	ray := core.NewRayAtTime(core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1), 0)
	if _, ok := sphere.Hit(ray, defaultRayT); ok {
		t.Error("Expected miss at time 0")
	}
	ray.Time = 0.99
	if _, ok := sphere.Hit(ray, defaultRayT); !ok {
		t.Error("Expected hit at time 0.99")
	}

	box := sphere.BoundingBox()
	if box.X.Min > -0.5 || box.X.Max < 2.5 {
		t.Errorf("Expected box to cover the whole sweep, got %v", box.X)
	}
}

func TestSphere_SetCenter(t *testing.T) {
	sphere := NewMovingSphere(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), 1, DummyMaterial{})
	sphere.SetCenter(core.NewVec3(0, 5, 0))

	if c := sphere.Center(1); !vecNear(c, core.NewVec3(0, 5, 0), tolerance) {
		t.Errorf("Expected stationary center (0,5,0), got %v", c)
	}
	if box := sphere.BoundingBox(); box.Y.Min != 4 || box.Y.Max != 6 {
		t.Errorf("Expected bounding box to follow the move, got %v", box)
	}
}

func TestSphere_UV(t *testing.T) {
	tests := []struct {
		name   string
		normal core.Vec3
		uv     core.Vec2
	}{
		{"+x", core.NewVec3(1, 0, 0), core.NewVec2(0.5, 0.5)},
		{"+y", core.NewVec3(0, 1, 0), core.NewVec2(0.5, 1.0)},
		{"-y", core.NewVec3(0, -1, 0), core.NewVec2(0.5, 0.0)},
		{"-x", core.NewVec3(-1, 0, 0), core.NewVec2(0.0, 0.5)},
		{"+z", core.NewVec3(0, 0, 1), core.NewVec2(0.25, 0.5)},
		{"-z", core.NewVec3(0, 0, -1), core.NewVec2(0.75, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uv := sphereUV(tt.normal)
			if math.Abs(uv.X-tt.uv.X) > tolerance || math.Abs(uv.Y-tt.uv.Y) > tolerance {
				t.Errorf("Expected %v, got %v", tt.uv, uv)
			}
		})
	}
}

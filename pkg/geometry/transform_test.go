package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func sampleRays() []core.Ray {
	return []core.Ray{
		core.NewRay(core.NewVec3(0.3, 0.4, 10), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(8, 3, 7), core.NewVec3(-1, -0.3, -0.8)),
		core.NewRay(core.NewVec3(-6, 0.5, 0.2), core.NewVec3(1, 0.05, 0.1)),
		core.NewRay(core.NewVec3(0.5, 9, 0.5), core.NewVec3(0.02, -1, 0.01)),
		core.NewRay(core.NewVec3(1.5, -0.3, 12), core.NewVec3(0, 0, -1)),
	}
}

func assertSameHit(t *testing.T, label string, a *material.HitRecord, okA bool, b *material.HitRecord, okB bool) {
	t.Helper()
	if okA != okB {
		t.Fatalf("%s: hit mismatch %t vs %t", label, okA, okB)
	}
	if !okA {
		return
	}
	if math.Abs(a.T-b.T) > 1e-9 {
		t.Errorf("%s: t mismatch %f vs %f", label, a.T, b.T)
	}
	if !vecNear(a.Point, b.Point, 1e-9) {
		t.Errorf("%s: point mismatch %v vs %v", label, a.Point, b.Point)
	}
	if !vecNear(a.Normal, b.Normal, 1e-9) {
		t.Errorf("%s: normal mismatch %v vs %v", label, a.Normal, b.Normal)
	}
}

func TestTranslate_ComposesWithZeroOffset(t *testing.T) {
	offset := core.NewVec3(1.5, -0.5, 2)
	shapes := map[string]func() Shape{
		"sphere": func() Shape { return NewSphere(core.NewVec3(0, 0, 0), 1, DummyMaterial{}) },
		"box":    func() Shape { return NewBox(core.NewVec3(-1, -1, -1), core.NewVec3(1, 2, 0.5), DummyMaterial{}) },
	}

	for name, build := range shapes {
		t.Run(name, func(t *testing.T) {
			nested := NewTranslate(NewTranslate(build(), offset), core.Vec3{})
			direct := NewTranslate(build(), offset)

			anyHit := false
			for _, ray := range sampleRays() {
				a, okA := nested.Hit(ray, defaultRayT)
				b, okB := direct.Hit(ray, defaultRayT)
				assertSameHit(t, name, a, okA, b, okB)
				anyHit = anyHit || okA
			}
			if !anyHit {
				t.Fatal("Sample rays should hit the translated shape at least once")
			}
		})
	}
}

func TestTranslate_MovesHitPoint(t *testing.T) {
	moved := NewTranslate(NewSphere(core.NewVec3(0, 0, 0), 1, DummyMaterial{}), core.NewVec3(0, 0, -5))
	hit, ok := moved.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), defaultRayT)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-4) > tolerance || !vecNear(hit.Point, core.NewVec3(0, 0, -4), tolerance) {
		t.Errorf("Expected hit at (0,0,-4) t=4, got %v t=%f", hit.Point, hit.T)
	}

	box := moved.BoundingBox()
	if box.Z.Min != -6 || box.Z.Max != -4 {
		t.Errorf("Expected translated z bounds [-6,-4], got %v", box.Z)
	}
}

func TestRotateY_InverseRoundTrip(t *testing.T) {
	for _, angle := range []float64{15, 30, 90, 137, -60} {
		original := NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 2), DummyMaterial{})
		roundTrip := NewRotateY(NewRotateY(NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 2), DummyMaterial{}), angle), -angle)

		for _, ray := range sampleRays() {
			a, okA := roundTrip.Hit(ray, defaultRayT)
			b, okB := original.Hit(ray, defaultRayT)
			assertSameHit(t, "rotate round trip", a, okA, b, okB)
		}
	}
}

func TestRotateY_QuarterTurn(t *testing.T) {
	rotated := NewRotateY(NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 2), DummyMaterial{}), 90)

	box := rotated.BoundingBox()
	if !vecNear(box.Min(), core.NewVec3(0, 0, -1), 1e-3) || !vecNear(box.Max(), core.NewVec3(2, 1, 0), 1e-3) {
		t.Errorf("Unexpected rotated bounds %v", box)
	}

	// The long edge now lies along +x; a ray down -y at x=1.5 hits the top
	hit, ok := rotated.Hit(core.NewRay(core.NewVec3(1.5, 5, -0.5), core.NewVec3(0, -1, 0)), defaultRayT)
	if !ok {
		t.Fatal("Expected hit on rotated box")
	}
	if math.Abs(hit.T-4) > 1e-9 || !vecNear(hit.Normal, core.NewVec3(0, 1, 0), 1e-9) {
		t.Errorf("Expected top face at t=4, got t=%f normal=%v", hit.T, hit.Normal)
	}

	if _, ok := rotated.Hit(core.NewRay(core.NewVec3(0.5, 5, 1.5), core.NewVec3(0, -1, 0)), defaultRayT); ok {
		t.Error("Expected miss where the unrotated box used to be")
	}
}

package core

import (
	"math"
	"testing"
)

func TestRandomUnitVector_IsUnitLength(t *testing.T) {
	sampler := NewSeededSampler(1)
	for i := 0; i < 1000; i++ {
		v := RandomUnitVector(sampler)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit vector, got length %f", v.Length())
		}
	}
}

func TestRandomInUnitSphereAndDisk(t *testing.T) {
	sampler := NewSeededSampler(2)
	for i := 0; i < 1000; i++ {
		if p := RandomInUnitSphere(sampler); p.LengthSquared() > 1+1e-9 {
			t.Fatalf("Point %v outside unit sphere", p)
		}
		d := RandomInUnitDisk(sampler)
		if d.LengthSquared() > 1+1e-9 || d.Z != 0 {
			t.Fatalf("Point %v outside unit disk", d)
		}
	}
}

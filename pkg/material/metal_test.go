package material

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestNewMetal_FuzznessClamp(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.5, 0.0},
		{0.3, 0.3},
		{1.7, 1.0},
	}

	for _, tt := range tests {
		if got := NewMetal(core.NewVec3(1, 1, 1), tt.input).Fuzzness; got != tt.expected {
			t.Errorf("NewMetal(fuzz=%v): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)
	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0), FrontFace: true, Material: metal}

	result, scattered := metal.Scatter(ray, hit, core.NewSeededSampler(1))
	if !scattered {
		t.Fatal("Expected perfect mirror to scatter")
	}

	expected := core.NewVec3(1, 1, 0).Normalize()
	got := result.Scattered.Direction
	if math.Abs(got.X-expected.X) > 1e-9 || math.Abs(got.Y-expected.Y) > 1e-9 || math.Abs(got.Z) > 1e-9 {
		t.Errorf("Expected reflection %v, got %v", expected, got)
	}
	if result.Attenuation != metal.Albedo {
		t.Errorf("Expected attenuation %v, got %v", metal.Albedo, result.Attenuation)
	}
}

func TestMetal_ScatterAbsorption(t *testing.T) {
	// A grazing ray with maximum fuzz is pushed below the surface some of the time
	metal := NewMetal(core.NewVec3(1, 1, 1), 1.0)
	ray := core.NewRay(core.NewVec3(-1, 0.01, 0), core.NewVec3(1, -0.01, 0))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0), FrontFace: true, Material: metal}

	sampler := core.NewSeededSampler(7)
	absorbed := 0
	for i := 0; i < 1000; i++ {
		result, scattered := metal.Scatter(ray, hit, sampler)
		if !scattered {
			absorbed++
			continue
		}
		if result.Scattered.Direction.Dot(hit.Normal) <= 0 {
			t.Fatalf("Scattered ray points into the surface: %v", result.Scattered.Direction)
		}
	}

	if absorbed == 0 {
		t.Error("Expected some grazing fuzzy reflections to be absorbed")
	}
}

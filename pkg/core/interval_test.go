package core

import (
	"math"
	"testing"
)

func TestInterval_ContainsAndSurrounds(t *testing.T) {
	i := NewInterval(0, 1)

	tests := []struct {
		x         float64
		contains  bool
		surrounds bool
	}{
		{-0.5, false, false},
		{0, true, false},
		{0.5, true, true},
		{1, true, false},
		{1.5, false, false},
	}

	for _, tt := range tests {
		if got := i.Contains(tt.x); got != tt.contains {
			t.Errorf("Contains(%v): expected %t, got %t", tt.x, tt.contains, got)
		}
		if got := i.Surrounds(tt.x); got != tt.surrounds {
			t.Errorf("Surrounds(%v): expected %t, got %t", tt.x, tt.surrounds, got)
		}
	}
}

func TestInterval_EmptyAndUniverse(t *testing.T) {
	if Empty.Contains(0) {
		t.Error("Empty interval should contain nothing")
	}
	if !Universe.Contains(math.MaxFloat64) {
		t.Error("Universe should contain every finite value")
	}

	a := NewInterval(2, 3)
	if got := NewIntervalUnion(Empty, a); got != a {
		t.Errorf("Empty should be the union identity, got %v", got)
	}
}

func TestInterval_ExpandAndAdd(t *testing.T) {
	i := NewInterval(1, 2).Expand(0.5)
	if i.Min != 0.75 || i.Max != 2.25 {
		t.Errorf("Expected [0.75, 2.25], got %v", i)
	}

	shifted := NewInterval(1, 2).Add(-3)
	if shifted.Min != -2 || shifted.Max != -1 {
		t.Errorf("Expected [-2, -1], got %v", shifted)
	}

	if got := NewInterval(0, 1).Clamp(4); got != 1 {
		t.Errorf("Expected clamp to 1, got %v", got)
	}
}

package physics

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{3, 4}
	b := Vec2{1, -2}

	if got := a.Add(b); got != (Vec2{4, 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec2{2, 6}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(0.5); got != (Vec2{1.5, 2}) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.LenSq(); got != 25 {
		t.Errorf("LenSq = %v", got)
	}
	if got := a.Len(); got != 5 {
		t.Errorf("Len = %v", got)
	}
}

func TestDistance(t *testing.T) {
	if got := DistanceSquared(Vec2{10, 10}, Vec2{12, 10}); got != 4 {
		t.Errorf("DistanceSquared = %v, want 4", got)
	}
}

func TestCirclesOverlap(t *testing.T) {
	tests := []struct {
		a, b Vec2
		want bool
	}{
		{Vec2{0, 0}, Vec2{2, 0}, true},
		{Vec2{0, 0}, Vec2{8, 0}, false}, // touching
		{Vec2{0, 0}, Vec2{5, 6}, true},
		{Vec2{0, 0}, Vec2{6, 6}, false},
	}
	for _, tt := range tests {
		if got := CirclesOverlap(tt.a, tt.b, 8); got != tt.want {
			t.Errorf("CirclesOverlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !(Vec2{1, 2}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec2{float32(math.Inf(1)), 0}).IsFinite() {
		t.Error("infinite vector reported finite")
	}
	if (Vec2{0, float32(math.NaN())}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
}

// Package physics provides the vector math and spatial index used by the swarm.
package physics

import "math"

// Vec2 is a 2D vector in single precision. All simulation math runs in float32.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// LenSq returns the squared length of v.
// Use this when comparing distances to avoid the sqrt cost.
func (v Vec2) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.LenSq())))
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// DistanceSquared calculates the squared distance between two points.
func DistanceSquared(a, b Vec2) float32 {
	return b.Sub(a).LenSq()
}

// CirclesOverlap checks if two circles of the given diameter overlap.
// Touching circles (distance == diameter) do not overlap.
func CirclesOverlap(a, b Vec2, diameter float32) bool {
	return DistanceSquared(a, b) < diameter*diameter
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

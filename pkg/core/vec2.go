package core

import "math"

// Vec2 represents a 2D vector, used for surface (UV) coordinates
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Multiply returns the vector scaled by a scalar
func (v Vec2) Multiply(scalar float64) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec2) MultiplyVec(other Vec2) Vec2 {
	return Vec2{v.X * other.X, v.Y * other.Y}
}

// Equals checks if two vectors are approximately equal
func (v Vec2) Equals(other Vec2) bool {
	const tolerance = 1e-9
	return math.Abs(v.X-other.X) < tolerance && math.Abs(v.Y-other.Y) < tolerance
}

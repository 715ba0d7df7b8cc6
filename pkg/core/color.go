package core

import "math"

// Color3 is a linear RGB triple
type Color3 struct {
	R, G, B float32
}

// NewColor3 creates a new Color3
func NewColor3(r, g, b float32) Color3 {
	return Color3{R: r, G: g, B: b}
}

// Gray returns a color with all three channels set to v
func Gray(v float32) Color3 {
	return Color3{R: v, G: v, B: v}
}

// Multiply returns the color scaled by a scalar
func (c Color3) Multiply(scalar float32) Color3 {
	return Color3{c.R * scalar, c.G * scalar, c.B * scalar}
}

// Add returns the component-wise sum of two colors
func (c Color3) Add(other Color3) Color3 {
	return Color3{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Luminance returns the Rec. 709 luminance of a linear RGB color
func (c Color3) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Equals checks if two colors are approximately equal
func (c Color3) Equals(other Color3) bool {
	return nearlyEqual(c.R, other.R) && nearlyEqual(c.G, other.G) && nearlyEqual(c.B, other.B)
}

// Color4 is a linear RGB color with an alpha (transparency) channel
type Color4 struct {
	R, G, B, A float32
}

// NewColor4 creates a new Color4
func NewColor4(r, g, b, a float32) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// RGB returns the color channels without alpha
func (c Color4) RGB() Color3 {
	return Color3{R: c.R, G: c.G, B: c.B}
}

// Scale multiplies every channel, alpha included, by s
func (c Color4) Scale(s float32) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Add returns the component-wise sum of two colors
func (c Color4) Add(other Color4) Color4 {
	return Color4{c.R + other.R, c.G + other.G, c.B + other.B, c.A + other.A}
}

// Lerp4 linearly interpolates every channel between a and b
func Lerp4(a, b Color4, t float32) Color4 {
	return a.Scale(1 - t).Add(b.Scale(t))
}

// Equals checks if two colors are approximately equal
func (c Color4) Equals(other Color4) bool {
	return c.RGB().Equals(other.RGB()) && nearlyEqual(c.A, other.A)
}

func nearlyEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

package core

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a linear RGB color with every channel clamped to [0, 1]
type Color struct {
	r, g, b float32
}

// Black and White colors
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// NewColor creates a color, clamping every channel to [0, 1]. NaN panics.
func NewColor(r, g, b float32) Color {
	mustNotBeNaN(r, g, b)
	return Color{r: clamp01(r), g: clamp01(g), b: clamp01(b)}
}

// ColorFromVec3 creates a color from the components of v
func ColorFromVec3(v Vec3) Color {
	return NewColor(v.x, v.y, v.z)
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// R returns the red channel
func (c Color) R() float32 { return c.r }

// G returns the green channel
func (c Color) G() float32 { return c.g }

// B returns the blue channel
func (c Color) B() float32 { return c.b }

// Vec3 returns the channels as a vector
func (c Color) Vec3() Vec3 {
	return Vec3{x: c.r, y: c.g, z: c.b}
}

// Add returns the channel-wise sum, clamped
func (c Color) Add(other Color) Color {
	return NewColor(c.r+other.r, c.g+other.g, c.b+other.b)
}

// Mul returns the channel-wise product
func (c Color) Mul(other Color) Color {
	return Color{r: c.r * other.r, g: c.g * other.g, b: c.b * other.b}
}

// Scale multiplies every channel by s, clamped
func (c Color) Scale(s float32) Color {
	return NewColor(c.r*s, c.g*s, c.b*s)
}

// Gamma2 applies gamma 2.0 correction (square root per channel)
func (c Color) Gamma2() Color {
	return Color{r: math32.Sqrt(c.r), g: math32.Sqrt(c.g), b: math32.Sqrt(c.b)}
}

// RGBA8 converts the color to 8 bits per channel with round(c*255)
func (c Color) RGBA8() color.RGBA {
	return color.RGBA{R: to8(c.r), G: to8(c.g), B: to8(c.b), A: 255}
}

func to8(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

// Luminance returns the perceptual luminance of the color
func (c Color) Luminance() float32 {
	return 0.299*c.r + 0.587*c.g + 0.114*c.b
}

// ColorAccumulator sums unclamped samples for averaging
type ColorAccumulator struct {
	r, g, b float32
	count   int
}

// Add adds a sample
func (a *ColorAccumulator) Add(c Color) {
	a.r += c.r
	a.g += c.g
	a.b += c.b
	a.count++
}

// Count returns the number of samples added
func (a *ColorAccumulator) Count() int {
	return a.count
}

// Average returns the mean of the samples, or black when empty
func (a *ColorAccumulator) Average() Color {
	if a.count == 0 {
		return Black
	}
	inv := 1 / float32(a.count)
	return NewColor(a.r*inv, a.g*inv, a.b*inv)
}

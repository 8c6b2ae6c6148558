package core

import "github.com/chewxy/math32"

// Radians is an angle in radians
type Radians float32

// Degrees is an angle in degrees
type Degrees float32

// ToDegrees converts the angle to degrees
func (r Radians) ToDegrees() Degrees {
	return Degrees(float32(r) * 180 / math32.Pi)
}

// ToRadians converts the angle to radians
func (d Degrees) ToRadians() Radians {
	return Radians(float32(d) * math32.Pi / 180)
}

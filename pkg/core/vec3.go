package core

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Epsilon is the magnitude below which every component of a vector is
// considered zero for normalization purposes.
const Epsilon float32 = 1e-8

// Vec3 represents a free 3D displacement
type Vec3 struct {
	x, y, z float32
}

// Axis and constant vectors
var (
	Zero  = Vec3{0, 0, 0}
	One   = Vec3{1, 1, 1}
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

// NewVec3 creates a new Vec3. It panics if any component is NaN.
func NewVec3(x, y, z float32) Vec3 {
	mustNotBeNaN(x, y, z)
	return Vec3{x: x, y: y, z: z}
}

func mustNotBeNaN(x, y, z float32) {
	if math32.IsNaN(x) || math32.IsNaN(y) || math32.IsNaN(z) {
		panic(fmt.Sprintf("core: NaN component in (%v, %v, %v)", x, y, z))
	}
}

func mustNotBeNaN1(v float32) {
	if math32.IsNaN(v) {
		panic("core: NaN component")
	}
}

// X returns the x component
func (v Vec3) X() float32 { return v.x }

// Y returns the y component
func (v Vec3) Y() float32 { return v.y }

// Z returns the z component
func (v Vec3) Z() float32 { return v.z }

// SetX sets the x component. It panics on NaN.
func (v *Vec3) SetX(value float32) {
	mustNotBeNaN1(value)
	v.x = value
}

// SetY sets the y component. It panics on NaN.
func (v *Vec3) SetY(value float32) {
	mustNotBeNaN1(value)
	v.y = value
}

// SetZ sets the z component. It panics on NaN.
func (v *Vec3) SetZ(value float32) {
	mustNotBeNaN1(value)
	v.z = value
}

// Component returns the component along axis 0 (X), 1 (Y) or 2 (Z)
func (v Vec3) Component(axis int) float32 {
	switch axis {
	case 0:
		return v.x
	case 1:
		return v.y
	default:
		return v.z
	}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return NewVec3(v.x+other.x, v.y+other.y, v.z+other.z)
}

// Sub returns the difference of two vectors
func (v Vec3) Sub(other Vec3) Vec3 {
	return NewVec3(v.x-other.x, v.y-other.y, v.z-other.z)
}

// Scale returns the vector scaled by a scalar
func (v Vec3) Scale(scalar float32) Vec3 {
	return NewVec3(v.x*scalar, v.y*scalar, v.z*scalar)
}

// Div returns the vector divided by a scalar
func (v Vec3) Div(scalar float32) Vec3 {
	return NewVec3(v.x/scalar, v.y/scalar, v.z/scalar)
}

// Mul returns component-wise multiplication of two vectors
func (v Vec3) Mul(other Vec3) Vec3 {
	return NewVec3(v.x*other.x, v.y*other.y, v.z*other.z)
}

// Neg returns the negative of the vector
func (v Vec3) Neg() Vec3 {
	return Vec3{x: -v.x, y: -v.y, z: -v.z}
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float32 {
	return v.x*other.x + v.y*other.y + v.z*other.z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return NewVec3(
		v.y*other.z-v.z*other.y,
		v.z*other.x-v.x*other.z,
		v.x*other.y-v.y*other.x,
	)
}

// NormSquared returns the squared magnitude of the vector
func (v Vec3) NormSquared() float32 {
	return v.Dot(v)
}

// Norm returns the magnitude of the vector
func (v Vec3) Norm() float32 {
	return math32.Sqrt(v.NormSquared())
}

// IsNearZero reports whether every component is smaller than Epsilon in magnitude
func (v Vec3) IsNearZero() bool {
	return math32.Abs(v.x) < Epsilon && math32.Abs(v.y) < Epsilon && math32.Abs(v.z) < Epsilon
}

// Normalized returns the unit vector in the same direction.
// The vector must not be near zero; Normalized panics otherwise.
func (v Vec3) Normalized() NormalizedVec3 {
	n, ok := v.TryNormalized()
	if !ok {
		panic(fmt.Sprintf("core: cannot normalize near-zero vector %v", v))
	}
	return n
}

// TryNormalized is Normalized for callers that can recover from a degenerate
// input: ok is false when the vector is near zero.
func (v Vec3) TryNormalized() (NormalizedVec3, bool) {
	if v.IsNearZero() {
		return NormalizedVec3{}, false
	}
	norm := v.Norm()
	if norm == 0 {
		return NormalizedVec3{}, false
	}
	return NormalizedVec3{vec: v.Div(norm)}, true
}

// Angle returns the angle between two non-zero vectors
func (v Vec3) Angle(other Vec3) Radians {
	cos := v.Dot(other) / (v.Norm() * other.Norm())
	return Radians(math32.Acos(math32.Max(-1, math32.Min(1, cos))))
}

// Min returns the component-wise minimum of two vectors
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{math32.Min(v.x, other.x), math32.Min(v.y, other.y), math32.Min(v.z, other.z)}
}

// Max returns the component-wise maximum of two vectors
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{math32.Max(v.x, other.x), math32.Max(v.y, other.y), math32.Max(v.z, other.z)}
}

// ToPoint reinterprets the displacement from the origin as a position
func (v Vec3) ToPoint() Point3 {
	return Point3{x: v.x, y: v.y, z: v.z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.x, v.y, v.z)
}

// NormalizedVec3 is a vector guaranteed to have unit length.
// The zero value is not valid; obtain one from Vec3.Normalized.
type NormalizedVec3 struct {
	vec Vec3
}

// NewNormalizedVec3 normalizes (x, y, z). It panics on a near-zero input.
func NewNormalizedVec3(x, y, z float32) NormalizedVec3 {
	return NewVec3(x, y, z).Normalized()
}

// Vec returns the underlying unit vector
func (n NormalizedVec3) Vec() Vec3 { return n.vec }

// X returns the x component
func (n NormalizedVec3) X() float32 { return n.vec.x }

// Y returns the y component
func (n NormalizedVec3) Y() float32 { return n.vec.y }

// Z returns the z component
func (n NormalizedVec3) Z() float32 { return n.vec.z }

// Neg returns the opposite unit vector
func (n NormalizedVec3) Neg() NormalizedVec3 {
	return NormalizedVec3{vec: n.vec.Neg()}
}

// Dot returns the dot product with an arbitrary vector
func (n NormalizedVec3) Dot(other Vec3) float32 {
	return n.vec.Dot(other)
}

func (n NormalizedVec3) String() string {
	return n.vec.String()
}

// Point3 represents a position in 3D space
type Point3 struct {
	x, y, z float32
}

// Origin is the point (0, 0, 0)
var Origin = Point3{}

// NewPoint3 creates a new Point3. It panics if any component is NaN.
func NewPoint3(x, y, z float32) Point3 {
	mustNotBeNaN(x, y, z)
	return Point3{x: x, y: y, z: z}
}

// X returns the x component
func (p Point3) X() float32 { return p.x }

// Y returns the y component
func (p Point3) Y() float32 { return p.y }

// Z returns the z component
func (p Point3) Z() float32 { return p.z }

// SetX sets the x component. It panics on NaN.
func (p *Point3) SetX(value float32) {
	mustNotBeNaN1(value)
	p.x = value
}

// SetY sets the y component. It panics on NaN.
func (p *Point3) SetY(value float32) {
	mustNotBeNaN1(value)
	p.y = value
}

// SetZ sets the z component. It panics on NaN.
func (p *Point3) SetZ(value float32) {
	mustNotBeNaN1(value)
	p.z = value
}

// Add offsets the point by a displacement
func (p Point3) Add(offset Vec3) Point3 {
	return NewPoint3(p.x+offset.x, p.y+offset.y, p.z+offset.z)
}

// SubVec offsets the point by the negated displacement
func (p Point3) SubVec(offset Vec3) Point3 {
	return NewPoint3(p.x-offset.x, p.y-offset.y, p.z-offset.z)
}

// Sub returns the displacement from other to p
func (p Point3) Sub(other Point3) Vec3 {
	return NewVec3(p.x-other.x, p.y-other.y, p.z-other.z)
}

// Pos returns the displacement of p from the origin
func (p Point3) Pos() Vec3 {
	return Vec3{x: p.x, y: p.y, z: p.z}
}

// Component returns the component along axis 0 (X), 1 (Y) or 2 (Z)
func (p Point3) Component(axis int) float32 {
	return p.Pos().Component(axis)
}

func (p Point3) String() string {
	return p.Pos().String()
}

package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is an affine transform kept together with its inverse.
// Both matrices have a bottom row of (0, 0, 0, 1), so only their 3x4 upper
// part carries information. backward == inverse(forward) always holds.
type Transform struct {
	forward  mgl32.Mat4
	backward mgl32.Mat4
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{forward: mgl32.Ident4(), backward: mgl32.Ident4()}
}

// Translation moves points by offset
func Translation(offset Vec3) Transform {
	return Transform{
		forward:  mgl32.Translate3D(offset.x, offset.y, offset.z),
		backward: mgl32.Translate3D(-offset.x, -offset.y, -offset.z),
	}
}

// RotationX rotates counter-clockwise around the X axis
func RotationX(angle Radians) Transform {
	return rotation(mgl32.HomogRotate3DX(float32(angle)))
}

// RotationY rotates counter-clockwise around the Y axis
func RotationY(angle Radians) Transform {
	return rotation(mgl32.HomogRotate3DY(float32(angle)))
}

// RotationZ rotates counter-clockwise around the Z axis
func RotationZ(angle Radians) Transform {
	return rotation(mgl32.HomogRotate3DZ(float32(angle)))
}

// Rotation rotates around an arbitrary unit axis (Rodrigues' formula)
func Rotation(angle Radians, axis NormalizedVec3) Transform {
	a := mgl32.Vec3{axis.X(), axis.Y(), axis.Z()}
	return rotation(mgl32.HomogRotate3D(float32(angle), a))
}

// rotation matrices are orthogonal: the inverse is the transpose
func rotation(m mgl32.Mat4) Transform {
	return Transform{forward: m, backward: m.Transpose()}
}

// Scale scales non-uniformly along the axes. Every factor must be positive.
func Scale(x, y, z float32) Transform {
	if !(x > 0 && y > 0 && z > 0) {
		panic(fmt.Sprintf("core: scale factors must be positive, got (%v, %v, %v)", x, y, z))
	}
	return Transform{
		forward:  mgl32.Scale3D(x, y, z),
		backward: mgl32.Scale3D(1/x, 1/y, 1/z),
	}
}

// UniformScale scales equally along every axis
func UniformScale(s float32) Transform {
	return Scale(s, s, s)
}

// Compose returns the transform applying b first, then a
func Compose(a, b Transform) Transform {
	return Transform{
		forward:  a.forward.Mul4(b.forward),
		backward: b.backward.Mul4(a.backward),
	}
}

// Then returns the transform applying t first, then next
func (t Transform) Then(next Transform) Transform {
	return Compose(next, t)
}

// Inverse swaps the forward and backward matrices
func (t Transform) Inverse() Transform {
	return Transform{forward: t.backward, backward: t.forward}
}

// Forward returns the local-to-world matrix
func (t Transform) Forward() mgl32.Mat4 { return t.forward }

// Backward returns the world-to-local matrix
func (t Transform) Backward() mgl32.Mat4 { return t.backward }

// ApplyPoint maps a local point to world space
func (t Transform) ApplyPoint(p Point3) Point3 {
	return mulPoint(t.forward, p.Pos()).ToPoint()
}

// ApplyVector maps a local displacement to world space (no translation)
func (t Transform) ApplyVector(v Vec3) Vec3 {
	return mulVector(t.forward, v)
}

// ApplyNormal maps a local surface normal to world space using the
// transpose of the backward matrix, so non-uniform scale keeps normals
// perpendicular to the transformed surface.
func (t Transform) ApplyNormal(n NormalizedVec3) NormalizedVec3 {
	m := t.backward
	x, y, z := n.X(), n.Y(), n.Z()
	return NewVec3(
		m.At(0, 0)*x+m.At(1, 0)*y+m.At(2, 0)*z,
		m.At(0, 1)*x+m.At(1, 1)*y+m.At(2, 1)*z,
		m.At(0, 2)*x+m.At(1, 2)*y+m.At(2, 2)*z,
	).Normalized()
}

// InversePoint maps a world point to local space
func (t Transform) InversePoint(p Point3) Point3 {
	return mulPoint(t.backward, p.Pos()).ToPoint()
}

// InverseVector maps a world displacement to local space
func (t Transform) InverseVector(v Vec3) Vec3 {
	return mulVector(t.backward, v)
}

func mulPoint(m mgl32.Mat4, v Vec3) Vec3 {
	return NewVec3(
		m.At(0, 0)*v.x+m.At(0, 1)*v.y+m.At(0, 2)*v.z+m.At(0, 3),
		m.At(1, 0)*v.x+m.At(1, 1)*v.y+m.At(1, 2)*v.z+m.At(1, 3),
		m.At(2, 0)*v.x+m.At(2, 1)*v.y+m.At(2, 2)*v.z+m.At(2, 3),
	)
}

func mulVector(m mgl32.Mat4, v Vec3) Vec3 {
	return NewVec3(
		m.At(0, 0)*v.x+m.At(0, 1)*v.y+m.At(0, 2)*v.z,
		m.At(1, 0)*v.x+m.At(1, 1)*v.y+m.At(1, 2)*v.z,
		m.At(2, 0)*v.x+m.At(2, 1)*v.y+m.At(2, 2)*v.z,
	)
}

// IsIdentity reports whether both matrices are exactly the identity
func (t Transform) IsIdentity() bool {
	id := mgl32.Ident4()
	return t.forward == id && t.backward == id
}

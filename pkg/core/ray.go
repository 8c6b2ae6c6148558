package core

// Ray represents a half-line with an origin and a unit direction
type Ray struct {
	Origin    Point3
	Direction NormalizedVec3
}

// NewRay creates a new ray, normalizing the direction.
// The direction must not be near zero.
func NewRay(origin Point3, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalized()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) Point3 {
	return r.Origin.Add(r.Direction.Vec().Scale(t))
}

// ToLocal maps a world-space ray into the local frame of t. The local
// direction is re-normalized; scale is the factor converting world ray
// parameters into local ones (tLocal = tWorld * scale).
func (r Ray) ToLocal(t Transform) (local Ray, scale float32) {
	dir := t.InverseVector(r.Direction.Vec())
	scale = dir.Norm()
	return Ray{Origin: t.InversePoint(r.Origin), Direction: dir.Normalized()}, scale
}

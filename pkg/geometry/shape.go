package geometry

import "github.com/df07/go-tiled-raytracer/pkg/core"

// ShapeHit contains information about a ray-shape intersection
type ShapeHit struct {
	Point     core.Point3         // Point of intersection
	Normal    core.NormalizedVec3 // Surface normal, always opposing the incoming ray
	T         float32             // Parameter t along the ray
	FrontFace bool                // Whether the ray hit the outside of the surface
}

// SetFaceNormal sets the normal and determines front/back face from the
// outward normal of the surface
func (h *ShapeHit) SetFaceNormal(ray core.Ray, outwardNormal core.NormalizedVec3) {
	h.FrontFace = outwardNormal.Dot(ray.Direction.Vec()) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Neg()
	}
}

// Shape is the closed set of primitives a scene can hold: *Sphere and *Box.
// Hit reports the nearest intersection with t strictly inside (near, far).
// Shapes are defined in their local frame; placement is a scene transform.
type Shape interface {
	Hit(ray core.Ray, near, far float32) (ShapeHit, bool)
	BoundingBox() core.AABB
	isShape()
}

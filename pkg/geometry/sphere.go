package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Point3
	Radius float32
}

// NewSphere creates a new sphere. The radius must be positive.
func NewSphere(center core.Point3, radius float32) *Sphere {
	if !(radius > 0) {
		panic(fmt.Sprintf("geometry: sphere radius must be positive, got %v", radius))
	}
	return &Sphere{Center: center, Radius: radius}
}

func (*Sphere) isShape() {}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, near, far float32) (ShapeHit, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Sub(s.Center)
	direction := ray.Direction.Vec()

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	a := direction.NormSquared()
	halfB := oc.Dot(direction)
	c := oc.NormSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return ShapeHit{}, false
	}
	sqrtD := math32.Sqrt(discriminant)

	// Try the closer root first, then the farther one
	root := (-halfB - sqrtD) / a
	if root <= near || root >= far {
		root = (-halfB + sqrtD) / a
		if root <= near || root >= far {
			return ShapeHit{}, false
		}
	}

	hit := ShapeHit{T: root, Point: ray.At(root)}
	outwardNormal, ok := hit.Point.Sub(s.Center).TryNormalized()
	if !ok {
		return ShapeHit{}, false
	}
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.SubVec(radius), s.Center.Add(radius))
}

package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// Box is an axis-aligned box centered at the local origin.
// Rotated or offset boxes are placed with a scene transform.
type Box struct {
	HalfExtents core.Vec3 // Half the size along each axis
}

// NewBox creates a box spanning -halfExtents..halfExtents. Every extent must be positive.
func NewBox(halfExtents core.Vec3) *Box {
	if !(halfExtents.X() > 0 && halfExtents.Y() > 0 && halfExtents.Z() > 0) {
		panic(fmt.Sprintf("geometry: box extents must be positive, got %v", halfExtents))
	}
	return &Box{HalfExtents: halfExtents}
}

func (*Box) isShape() {}

// Hit intersects the ray with the three slabs of the box. The ray enters at the
// largest slab entry and leaves at the smallest slab exit; the entry is used
// when it lies in range, otherwise the exit (ray starting inside the box).
func (b *Box) Hit(ray core.Ray, near, far float32) (ShapeHit, bool) {
	tEnter := math32.Inf(-1)
	tExit := math32.Inf(1)
	enterAxis, exitAxis := 0, 0

	for axis := 0; axis < 3; axis++ {
		extent := b.HalfExtents.Component(axis)
		origin := ray.Origin.Component(axis)
		direction := ray.Direction.Vec().Component(axis)

		if math32.Abs(direction) < core.Epsilon {
			if origin < -extent || origin > extent {
				return ShapeHit{}, false
			}
			continue
		}

		t1 := (-extent - origin) / direction
		t2 := (extent - origin) / direction
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter, enterAxis = t1, axis
		}
		if t2 < tExit {
			tExit, exitAxis = t2, axis
		}
		if tEnter > tExit {
			return ShapeHit{}, false
		}
	}

	t, axis := tEnter, enterAxis
	if t <= near || t >= far {
		t, axis = tExit, exitAxis
		if t <= near || t >= far {
			return ShapeHit{}, false
		}
	}

	hit := ShapeHit{T: t, Point: ray.At(t)}
	hit.SetFaceNormal(ray, faceNormal(axis, hit.Point.Component(axis)))

	return hit, true
}

// faceNormal returns the outward normal of the face on the given axis,
// picking the side from the sign of the hit coordinate
func faceNormal(axis int, coordinate float32) core.NormalizedVec3 {
	sign := float32(1)
	if coordinate < 0 {
		sign = -1
	}
	switch axis {
	case 0:
		return core.NewNormalizedVec3(sign, 0, 0)
	case 1:
		return core.NewNormalizedVec3(0, sign, 0)
	default:
		return core.NewNormalizedVec3(0, 0, sign)
	}
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return core.NewAABB(b.HalfExtents.Neg().ToPoint(), b.HalfExtents.ToPoint())
}

package core

import (
	"fmt"

	"github.com/chewxy/math32"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Point3 // Minimum corner
	Max Point3 // Maximum corner
}

// NewAABB creates a new AABB from min and max corners.
// Every extent must be non-negative.
func NewAABB(min, max Point3) AABB {
	if min.x > max.x || min.y > max.y || min.z > max.z {
		panic(fmt.Sprintf("core: inverted bounding box %v..%v", min, max))
	}
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Point3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	lo := points[0].Pos()
	hi := lo
	for _, p := range points[1:] {
		lo = lo.Min(p.Pos())
		hi = hi.Max(p.Pos())
	}

	return AABB{Min: lo.ToPoint(), Max: hi.ToPoint()}
}

// Corners returns the eight corners of the box
func (b AABB) Corners() [8]Point3 {
	return [8]Point3{
		// z min plane
		{b.Min.x, b.Min.y, b.Min.z},
		{b.Min.x, b.Max.y, b.Min.z},
		{b.Max.x, b.Min.y, b.Min.z},
		{b.Max.x, b.Max.y, b.Min.z},
		// z max plane
		{b.Min.x, b.Min.y, b.Max.z},
		{b.Min.x, b.Max.y, b.Max.z},
		{b.Max.x, b.Min.y, b.Max.z},
		{b.Max.x, b.Max.y, b.Max.z},
	}
}

// ApplyTransform returns the world-space box bounding all eight transformed corners
func (b AABB) ApplyTransform(t Transform) AABB {
	corners := b.Corners()
	for i := range corners {
		corners[i] = t.ApplyPoint(corners[i])
	}
	return NewAABBFromPoints(corners[:]...)
}

// Hit tests if a ray intersects with this AABB using the slab method
func (b AABB) Hit(ray Ray, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		lo := b.Min.Component(axis)
		hi := b.Max.Component(axis)
		origin := ray.Origin.Component(axis)
		direction := ray.Direction.Vec().Component(axis)

		// Ray parallel to this slab
		if math32.Abs(direction) < Epsilon {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}

		invDirection := 1 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}

// Union returns an AABB that bounds both this AABB and another
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: b.Min.Pos().Min(other.Min.Pos()).ToPoint(),
		Max: b.Max.Pos().Max(other.Max.Pos()).ToPoint(),
	}
}

// Center returns the center point of the AABB
func (b AABB) Center() Point3 {
	return b.Min.Add(b.Max.Sub(b.Min).Scale(0.5))
}

// Size returns the extent of the AABB along each axis
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (b AABB) LongestAxis() int {
	size := b.Size()
	if size.x > size.y && size.x > size.z {
		return 0
	}
	if size.y > size.z {
		return 1
	}
	return 2
}

// Contains reports whether p lies inside or on the boundary of the box
func (b AABB) Contains(p Point3) bool {
	return p.x >= b.Min.x && p.x <= b.Max.x &&
		p.y >= b.Min.y && p.y <= b.Max.y &&
		p.z >= b.Min.z && p.z <= b.Max.z
}

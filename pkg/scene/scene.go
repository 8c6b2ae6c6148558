package scene

import (
	"fmt"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/material"
)

// Handles index the scene tables. They are only valid for the scene
// (or builder) that returned them.
type (
	ShapeID     int
	MaterialID  int
	TransformID int
	AabbID      int
	ObjectID    int
)

// object ties a shape to a material and a placement in the world
type object struct {
	shape     ShapeID
	material  MaterialID
	transform TransformID
	bounds    AabbID
	identity  bool // transform is the identity; skip the ray round trip
}

// Scene is an immutable arena of shapes, materials, transforms, world-space
// bounds and the objects that reference them. It is safe for concurrent use.
type Scene struct {
	shapes     []geometry.Shape
	materials  []material.Material
	transforms []core.Transform
	aabbs      []core.AABB
	objects    []object
	bounds     core.AABB
	bvh        *BVH
}

// Hit is a world-space intersection with a scene object
type Hit struct {
	Object ObjectID
	geometry.ShapeHit
}

// NumObjects returns the number of objects in the scene
func (s *Scene) NumObjects() int { return len(s.objects) }

// Shape returns the shape of an object
func (s *Scene) Shape(id ObjectID) geometry.Shape {
	return s.shapes[s.object(id).shape]
}

// Material returns the material of an object
func (s *Scene) Material(id ObjectID) material.Material {
	return s.materials[s.object(id).material]
}

// Transform returns the local-to-world transform of an object
func (s *Scene) Transform(id ObjectID) core.Transform {
	return s.transforms[s.object(id).transform]
}

// ObjectBounds returns the world-space bounding box of an object
func (s *Scene) ObjectBounds(id ObjectID) core.AABB {
	return s.aabbs[s.object(id).bounds]
}

// Bounds returns the world-space bounding box of the whole scene.
// It is the zero box for an empty scene.
func (s *Scene) Bounds() core.AABB { return s.bounds }

// BVH returns the acceleration structure, or nil when the scene was built without one
func (s *Scene) BVH() *BVH { return s.bvh }

func (s *Scene) object(id ObjectID) object {
	if id < 0 || int(id) >= len(s.objects) {
		panic(fmt.Sprintf("scene: unknown object %d", id))
	}
	return s.objects[id]
}

// NearestHit returns the closest intersection with t strictly inside (near, far)
func (s *Scene) NearestHit(ray core.Ray, near, far float32) (Hit, bool) {
	if s.bvh != nil {
		return s.bvh.Hit(s, ray, near, far)
	}

	var closest Hit
	hitAnything := false
	closestSoFar := far
	for i := range s.objects {
		if hit, ok := s.hitObject(ObjectID(i), ray, near, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, hitAnything
}

// hitObject intersects one object in its local frame and maps the result
// back to world space. Local ray parameters are world parameters times the
// length the transform gives a world unit vector.
func (s *Scene) hitObject(id ObjectID, ray core.Ray, near, far float32) (Hit, bool) {
	obj := s.objects[id]
	shape := s.shapes[obj.shape]

	if obj.identity {
		hit, ok := shape.Hit(ray, near, far)
		return Hit{Object: id, ShapeHit: hit}, ok
	}

	transform := s.transforms[obj.transform]
	local, scale := ray.ToLocal(transform)
	hit, ok := shape.Hit(local, near*scale, far*scale)
	if !ok {
		return Hit{}, false
	}

	t := hit.T / scale
	if t <= near || t >= far {
		return Hit{}, false
	}

	return Hit{
		Object: id,
		ShapeHit: geometry.ShapeHit{
			Point:     transform.ApplyPoint(hit.Point),
			Normal:    transform.ApplyNormal(hit.Normal),
			T:         t,
			FrontFace: hit.FrontFace,
		},
	}, true
}

// BuildOption configures Builder.Build
type BuildOption func(*buildConfig)

type buildConfig struct {
	bvh bool
}

// WithBVH builds a bounding volume hierarchy over the object bounds.
// NearestHit returns the same hits with or without it.
func WithBVH() BuildOption {
	return func(c *buildConfig) { c.bvh = true }
}

// Builder assembles a Scene. Handles are validated as they are used;
// invalid handles are programmer errors and panic.
type Builder struct {
	scene *Scene
}

// NewBuilder creates an empty scene builder
func NewBuilder() *Builder {
	return &Builder{scene: &Scene{}}
}

func (b *Builder) mustBeOpen() *Scene {
	if b.scene == nil {
		panic("scene: builder used after Build")
	}
	return b.scene
}

// AddShape stores a shape and returns its handle
func (b *Builder) AddShape(shape geometry.Shape) ShapeID {
	s := b.mustBeOpen()
	if shape == nil {
		panic("scene: nil shape")
	}
	s.shapes = append(s.shapes, shape)
	return ShapeID(len(s.shapes) - 1)
}

// AddMaterial stores a material and returns its handle
func (b *Builder) AddMaterial(m material.Material) MaterialID {
	s := b.mustBeOpen()
	if m == nil {
		panic("scene: nil material")
	}
	s.materials = append(s.materials, m)
	return MaterialID(len(s.materials) - 1)
}

// AddTransform stores a transform so several objects can share it
func (b *Builder) AddTransform(t core.Transform) TransformID {
	s := b.mustBeOpen()
	s.transforms = append(s.transforms, t)
	return TransformID(len(s.transforms) - 1)
}

// AddObject places a shape with a material in the world. The transforms are
// applied in the order given; with none the object sits in its local frame.
func (b *Builder) AddObject(shape ShapeID, m MaterialID, transforms ...core.Transform) ObjectID {
	combined := core.Identity()
	for _, t := range transforms {
		combined = combined.Then(t)
	}
	return b.AddObjectWithTransform(shape, m, b.AddTransform(combined))
}

// AddObjectWithTransform places a shape using a stored transform
func (b *Builder) AddObjectWithTransform(shape ShapeID, m MaterialID, transform TransformID) ObjectID {
	s := b.mustBeOpen()
	if shape < 0 || int(shape) >= len(s.shapes) {
		panic(fmt.Sprintf("scene: unknown shape %d", shape))
	}
	if m < 0 || int(m) >= len(s.materials) {
		panic(fmt.Sprintf("scene: unknown material %d", m))
	}
	if transform < 0 || int(transform) >= len(s.transforms) {
		panic(fmt.Sprintf("scene: unknown transform %d", transform))
	}

	t := s.transforms[transform]
	s.aabbs = append(s.aabbs, s.shapes[shape].BoundingBox().ApplyTransform(t))
	s.objects = append(s.objects, object{
		shape:     shape,
		material:  m,
		transform: transform,
		bounds:    AabbID(len(s.aabbs) - 1),
		identity:  t.IsIdentity(),
	})
	return ObjectID(len(s.objects) - 1)
}

// Build freezes the scene. The builder cannot be used afterwards.
func (b *Builder) Build(opts ...BuildOption) *Scene {
	s := b.mustBeOpen()
	b.scene = nil

	var config buildConfig
	for _, opt := range opts {
		opt(&config)
	}

	for i, obj := range s.objects {
		if i == 0 {
			s.bounds = s.aabbs[obj.bounds]
		} else {
			s.bounds = s.bounds.Union(s.aabbs[obj.bounds])
		}
	}

	if config.bvh {
		s.bvh = NewBVH(s)
	}
	return s
}

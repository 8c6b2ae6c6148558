package material

import (
	"math/rand"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Color
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

func (*Lambertian) isMaterial() {}

// Scatter sends the ray toward a random point on the unit sphere tangent
// to the surface, which distributes directions by the cosine law
func (l *Lambertian) Scatter(rayIn core.Ray, hit geometry.ShapeHit, random *rand.Rand) (ScatterResult, bool) {
	direction, ok := hit.Normal.Vec().Add(core.RandomUnitVector(random).Vec()).TryNormalized()
	if !ok {
		// The random vector cancelled the normal
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.Ray{Origin: hit.Point, Direction: direction},
		Attenuation: l.Albedo,
	}, true
}

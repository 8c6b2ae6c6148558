package material

import (
	"math/rand"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Color // Metal color
	Fuzz   float32    // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Color, fuzz float32) *Metal {
	// Clamp fuzz to valid range
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if !(fuzz > 0.0) {
		fuzz = 0.0
	}
	return &Metal{Albedo: albedo, Fuzz: fuzz}
}

func (*Metal) isMaterial() {}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit geometry.ShapeHit, random *rand.Rand) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Vec(), hit.Normal)

	// Add fuzziness by perturbing the reflection direction
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(random).Scale(m.Fuzz))
	}

	// Absorb rays perturbed into or along the surface
	direction, ok := reflected.TryNormalized()
	if !ok || hit.Normal.Dot(direction.Vec()) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   core.Ray{Origin: hit.Point, Direction: direction},
		Attenuation: m.Albedo,
	}, true
}

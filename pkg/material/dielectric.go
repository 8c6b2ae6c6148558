package material

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float32 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material. The index must be positive.
func NewDielectric(refractiveIndex float32) *Dielectric {
	if !(refractiveIndex > 0) {
		panic(fmt.Sprintf("material: refractive index must be positive, got %v", refractiveIndex))
	}
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

func (*Dielectric) isMaterial() {}

// Scatter implements the Material interface for dielectric scattering
func (d *Dielectric) Scatter(rayIn core.Ray, hit geometry.ShapeHit, random *rand.Rand) (ScatterResult, bool) {
	// Determine if we're entering or exiting the material
	refractionRatio := d.RefractiveIndex
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractiveIndex
	}

	unitDirection := rayIn.Direction.Vec()
	cosTheta := math32.Min(-hit.Normal.Dot(unitDirection), 1.0)
	sinTheta := math32.Sqrt(1.0 - cosTheta*cosTheta)

	// Check for total internal reflection
	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > random.Float32() {
		direction = Reflect(unitDirection, hit.Normal)
	} else {
		direction = Refract(unitDirection, hit.Normal, refractionRatio)
	}

	// Clear glass: no color absorption
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: core.White,
	}, true
}

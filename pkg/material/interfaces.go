package material

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
)

// Material is the closed set of surface responses: *Lambertian, *Metal and
// *Dielectric. Scatter returns false when the ray is absorbed.
type Material interface {
	Scatter(rayIn core.Ray, hit geometry.ShapeHit, random *rand.Rand) (ScatterResult, bool)
	isMaterial()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray, starting at the hit point
	Attenuation core.Color // Color attenuation, every channel in [0, 1]
}

// Reflect calculates the reflection of v off a surface with normal n.
// v points toward the surface.
func Reflect(v core.Vec3, n core.NormalizedVec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Sub(n.Vec().Scale(2 * n.Dot(v)))
}

// Refract bends the unit vector uv through a surface with normal n using
// Snell's law. n must oppose uv; etaiOverEtat is the ratio of refractive indices.
func Refract(uv core.Vec3, n core.NormalizedVec3, etaiOverEtat float32) core.Vec3 {
	cosTheta := math32.Min(-n.Dot(uv), 1)
	rOutPerp := uv.Add(n.Vec().Scale(cosTheta)).Scale(etaiOverEtat)
	rOutParallel := n.Vec().Scale(-math32.Sqrt(math32.Abs(1 - rOutPerp.NormSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float32) float32 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}

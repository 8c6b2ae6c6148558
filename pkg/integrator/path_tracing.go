package integrator

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// PathTracingIntegrator follows one scattered ray per bounce until it
// escapes to the sky, is absorbed, or runs out of depth
type PathTracingIntegrator struct {
	maxDepth int
}

// NewPathTracingIntegrator creates a path tracer limited to maxDepth bounces
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// MaxDepth returns the bounce limit
func (pt *PathTracingIntegrator) MaxDepth() int { return pt.maxDepth }

// RayColor computes the color for a camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, random *rand.Rand) core.Color {
	return RayColor(s, ray, 0, pt.maxDepth, random)
}

// RayColor returns the light arriving along ray after it has already
// bounced depth times
func RayColor(s *scene.Scene, ray core.Ray, depth, maxDepth int, random *rand.Rand) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth > maxDepth {
		return core.Black
	}

	hit, isHit := s.NearestHit(ray, ShadowEpsilon, math32.Inf(1))
	if !isHit {
		return Background(ray)
	}

	scatter, didScatter := s.Material(hit.Object).Scatter(ray, hit.ShapeHit, random)
	if !didScatter {
		// Material absorbed the ray
		return core.Black
	}

	return scatter.Attenuation.Mul(RayColor(s, scatter.Scattered, depth+1, maxDepth, random))
}

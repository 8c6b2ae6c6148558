package integrator

import (
	"math/rand"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// ShadowEpsilon is the minimum ray parameter accepted for a hit. Scattered
// rays start on a surface; ignoring hits closer than this keeps them from
// re-hitting that surface through rounding error.
const ShadowEpsilon float32 = 0.001

var (
	skyBottom = core.NewVec3(1.0, 1.0, 1.0) // white horizon
	skyTop    = core.NewVec3(0.5, 0.7, 1.0) // blue sky
)

// Integrator computes the color arriving along a camera ray
type Integrator interface {
	RayColor(ray core.Ray, s *scene.Scene, random *rand.Rand) core.Color
}

// Background returns the sky gradient seen by a ray that escapes the scene
func Background(ray core.Ray) core.Color {
	// Map the direction's y component from -1..1 to 0..1
	t := 0.5 * (ray.Direction.Y() + 1.0)
	return core.ColorFromVec3(core.Lerp(t, skyBottom, skyTop))
}

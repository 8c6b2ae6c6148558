package scene

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c float32, h core.Degrees) core.Color {
	hRad := float32(h.ToRadians())

	// OKLCH to OKLAB
	a := c * math32.Cos(hRad)
	b := c * math32.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB, clamped by core.NewColor
	return core.NewColor(
		+4.0767416621*l_-3.3077115913*m_+0.2309699292*s_,
		-1.2684380046*l_+2.6097574011*m_-0.3413193965*s_,
		-0.0041960863*l_-0.7034186147*m_+1.7076147010*s_,
	)
}

// NewSphereGridScene creates a grid of metal spheres. Every sphere is the
// same unit sphere shape, placed by its own scale and translation.
func NewSphereGridScene(opts ...BuildOption) Preset {
	b := NewBuilder()

	unitSphere := b.AddShape(geometry.NewSphere(core.Origin, 1))
	floor := b.AddShape(geometry.NewBox(core.NewVec3(30, 0.5, 30)))
	b.AddObject(floor, b.AddMaterial(material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))),
		core.Translation(core.NewVec3(4.5, -0.5, 4.5)))

	const gridSize = 10
	const targetArea = 9.0
	spacing := float32(targetArea) / (gridSize - 1)
	sphereRadius := math32.Max(0.02, math32.Min(0.35, spacing*0.35))

	// OKLCH parameters for color variation
	baseLightness := float32(0.65)
	minChroma := float32(0.05)
	maxChroma := float32(0.25)

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float32(i)*spacing - targetArea/2 + 4.5
			z := float32(j)*spacing - targetArea/2 + 4.5

			// Hue varies across X, chroma across Z
			hue := core.Degrees(float32(i) / (gridSize - 1) * 360)
			chroma := minChroma + float32(j)/(gridSize-1)*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math32.Sin(float32(i+j)*0.5)

			roughness := 0.05 + 0.1*float32((i+j)%3)/2
			metal := b.AddMaterial(material.NewMetal(oklchToRGB(lightness, chroma, hue), roughness))

			b.AddObject(unitSphere, metal,
				core.UniformScale(sphereRadius),
				core.Translation(core.NewVec3(x, sphereRadius, z)))
		}
	}

	eye := core.NewPoint3(4.5, 6, 18)
	target := core.NewPoint3(4.5, 0.8, 4.5)
	width, height := 400, 225
	return Preset{
		Name:  "spheregrid",
		Scene: b.Build(opts...),
		Camera: geometry.CameraConfig{
			Eye:           eye,
			Target:        target,
			Up:            core.UnitY,
			VFov:          core.Degrees(40).ToRadians(),
			AspectRatio:   aspect(width, height),
			Aperture:      0.02,
			FocusDistance: eye.Sub(target).Norm(),
		},
		Width:           width,
		Height:          height,
		SamplesPerPixel: 50,
		MaxDepth:        20,
	}
}

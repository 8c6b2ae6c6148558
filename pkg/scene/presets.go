package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/material"
)

// ErrUnknownPreset is returned by Lookup for a name that is not registered
var ErrUnknownPreset = errors.New("unknown scene preset")

// Preset is a ready-to-render scene with the camera and settings it was composed for
type Preset struct {
	Name            string
	Description     string
	Scene           *Scene
	Camera          geometry.CameraConfig
	Width           int
	Height          int
	SamplesPerPixel int
	MaxDepth        int
}

// PresetInfo describes a registered preset without building it
type PresetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type presetEntry struct {
	description string
	build       func(opts ...BuildOption) Preset
}

var presets = map[string]presetEntry{
	"simple":     {"Blue diffuse sphere on a yellow ground sphere", NewSimpleScene},
	"materials":  {"Lambertian, metal and glass spheres side by side", NewMaterialsScene},
	"book1":      {"Random field of small spheres around three large ones", NewBook1Scene},
	"transforms": {"Boxes and ellipsoids placed with rotations and non-uniform scale", NewTransformsScene},
	"spheregrid": {"Grid of colored metal spheres sharing one unit sphere", NewSphereGridScene},
}

// Lookup builds the named preset
func Lookup(name string, opts ...BuildOption) (Preset, error) {
	entry, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	preset := entry.build(opts...)
	preset.Description = entry.description
	return preset, nil
}

// Names returns the registered preset names in sorted order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered presets in sorted order
func List() []PresetInfo {
	names := Names()
	infos := make([]PresetInfo, len(names))
	for i, name := range names {
		infos[i] = PresetInfo{Name: name, Description: presets[name].description}
	}
	return infos
}

func aspect(width, height int) float32 {
	return float32(width) / float32(height)
}

// addSphere adds a sphere object with its own material
func addSphere(b *Builder, center core.Point3, radius float32, m material.Material) ObjectID {
	return b.AddObject(b.AddShape(geometry.NewSphere(center, radius)), b.AddMaterial(m))
}

// NewSimpleScene creates a diffuse sphere resting on a huge ground sphere
func NewSimpleScene(opts ...BuildOption) Preset {
	b := NewBuilder()
	addSphere(b, core.NewPoint3(0, -100.5, -1), 100, material.NewLambertian(core.NewColor(0.8, 0.8, 0.0)))
	addSphere(b, core.NewPoint3(0, 0, -1), 0.5, material.NewLambertian(core.NewColor(0.1, 0.2, 0.5)))

	width, height := 400, 225
	return Preset{
		Name:  "simple",
		Scene: b.Build(opts...),
		Camera: geometry.CameraConfig{
			Eye:           core.NewPoint3(0, 0, 0),
			Target:        core.NewPoint3(0, 0, -1),
			Up:            core.UnitY,
			VFov:          core.Degrees(90).ToRadians(),
			AspectRatio:   aspect(width, height),
			FocusDistance: 1,
		},
		Width:           width,
		Height:          height,
		SamplesPerPixel: 50,
		MaxDepth:        10,
	}
}

// NewMaterialsScene creates the three canonical materials side by side
func NewMaterialsScene(opts ...BuildOption) Preset {
	b := NewBuilder()
	addSphere(b, core.NewPoint3(0, -100.5, -1), 100, material.NewLambertian(core.NewColor(0.8, 0.8, 0.0)))
	addSphere(b, core.NewPoint3(0, 0, -1), 0.5, material.NewLambertian(core.NewColor(0.1, 0.2, 0.5)))
	addSphere(b, core.NewPoint3(-1, 0, -1), 0.5, material.NewDielectric(1.5))
	addSphere(b, core.NewPoint3(1, 0, -1), 0.5, material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.2))

	eye := core.NewPoint3(-2, 2, 1)
	target := core.NewPoint3(0, 0, -1)
	width, height := 400, 225
	return Preset{
		Name:  "materials",
		Scene: b.Build(opts...),
		Camera: geometry.CameraConfig{
			Eye:           eye,
			Target:        target,
			Up:            core.UnitY,
			VFov:          core.Degrees(30).ToRadians(),
			AspectRatio:   aspect(width, height),
			FocusDistance: eye.Sub(target).Norm(),
		},
		Width:           width,
		Height:          height,
		SamplesPerPixel: 50,
		MaxDepth:        10,
	}
}

// book1Seed fixes the random sphere field so the preset renders the same every time
const book1Seed = 1

// NewBook1Scene creates the random sphere field with three large spheres
func NewBook1Scene(opts ...BuildOption) Preset {
	random := rand.New(rand.NewSource(book1Seed))
	b := NewBuilder()

	// Ground
	addSphere(b, core.NewPoint3(0, -1000, 0), 1000, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))

	addSphere(b, core.NewPoint3(0, 1, 0), 1, material.NewDielectric(1.5))
	addSphere(b, core.NewPoint3(-4, 1, 0), 1, material.NewLambertian(core.NewColor(0.4, 0.2, 0.1)))
	addSphere(b, core.NewPoint3(4, 1, 0), 1, material.NewMetal(core.NewColor(0.7, 0.6, 0.5), 0.0))

	// Small spheres, kept clear of the metal sphere
	danger := core.NewPoint3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for c := -11; c < 11; c++ {
			center := core.NewPoint3(
				float32(a)+0.9*random.Float32(),
				0.2,
				float32(c)+0.9*random.Float32(),
			)
			if center.Sub(danger).Norm() < 0.9 {
				continue
			}

			var m material.Material
			switch random.Intn(3) {
			case 0:
				albedo := core.RandomVec3(random).Mul(core.RandomVec3(random))
				m = material.NewLambertian(core.ColorFromVec3(albedo))
			case 1:
				albedo := core.RandomVec3Range(random, 0.5, 1)
				m = material.NewMetal(core.ColorFromVec3(albedo), 0.5*random.Float32())
			default:
				m = material.NewDielectric(1.1 + 0.8*random.Float32())
			}
			addSphere(b, center, 0.2, m)
		}
	}

	width, height := 400, 225
	return Preset{
		Name:  "book1",
		Scene: b.Build(opts...),
		Camera: geometry.CameraConfig{
			Eye:           core.NewPoint3(13, 2, 3),
			Target:        core.NewPoint3(0, 0, 0),
			Up:            core.UnitY,
			VFov:          core.Degrees(20).ToRadians(),
			AspectRatio:   aspect(width, height),
			Aperture:      0.1,
			FocusDistance: 10,
		},
		Width:           width,
		Height:          height,
		SamplesPerPixel: 10,
		MaxDepth:        10,
	}
}

// NewTransformsScene places boxes and spheres through scene transforms
func NewTransformsScene(opts ...BuildOption) Preset {
	b := NewBuilder()

	ground := b.AddMaterial(material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))
	red := b.AddMaterial(material.NewLambertian(core.NewColor(0.65, 0.25, 0.2)))
	gold := b.AddMaterial(material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.1))
	glass := b.AddMaterial(material.NewDielectric(1.5))

	unitSphere := b.AddShape(geometry.NewSphere(core.Origin, 1))
	unitCube := b.AddShape(geometry.NewBox(core.NewVec3(1, 1, 1)))

	// Flat box as the floor
	b.AddObject(unitCube, ground,
		core.Scale(20, 0.5, 20),
		core.Translation(core.NewVec3(0, -0.5, 0)))

	// Cube standing on one edge, then turned to face the camera
	b.AddObject(unitCube, red,
		core.UniformScale(0.7),
		core.RotationZ(core.Degrees(45).ToRadians()),
		core.RotationY(core.Degrees(30).ToRadians()),
		core.Translation(core.NewVec3(-1.8, 0.7*1.4142135, 0)))

	// Flattened metal ellipsoid
	b.AddObject(unitSphere, gold,
		core.Scale(1, 0.4, 0.7),
		core.Translation(core.NewVec3(0.4, 0.4, -0.5)))

	// Glass slab tilted around a diagonal axis
	b.AddObject(unitCube, glass,
		core.Scale(0.6, 0.6, 0.15),
		core.Rotation(core.Degrees(35).ToRadians(), core.NewNormalizedVec3(1, 1, 0)),
		core.Translation(core.NewVec3(2, 0.9, 0.6)))

	eye := core.NewPoint3(0, 3, 7)
	target := core.NewPoint3(0, 0.5, 0)
	width, height := 400, 225
	return Preset{
		Name:  "transforms",
		Scene: b.Build(opts...),
		Camera: geometry.CameraConfig{
			Eye:           eye,
			Target:        target,
			Up:            core.UnitY,
			VFov:          core.Degrees(40).ToRadians(),
			AspectRatio:   aspect(width, height),
			FocusDistance: eye.Sub(target).Norm(),
		},
		Width:           width,
		Height:          height,
		SamplesPerPixel: 50,
		MaxDepth:        10,
	}
}

package scene

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/loaders"
	"github.com/df07/go-tiled-raytracer/pkg/material"
)

// Settings used when the file does not specify them
const (
	pbrtDefaultWidth   = 400
	pbrtDefaultHeight  = 400
	pbrtDefaultSamples = 10
	pbrtDefaultDepth   = 10
	pbrtMaxResolution  = 8192
)

// LoadPBRTScene reads a PBRT scene file and builds it
func LoadPBRTScene(filename string, opts ...BuildOption) (Preset, error) {
	pbrtScene, err := loaders.LoadPBRT(filename)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	preset, err := NewPBRTScene(pbrtScene, opts...)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to build %s: %w", filename, err)
	}
	preset.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	preset.Description = "PBRT scene " + filename
	return preset, nil
}

// ReadPBRTScene parses PBRT content from r and builds it
func ReadPBRTScene(r io.Reader, opts ...BuildOption) (Preset, error) {
	pbrtScene, err := loaders.ParsePBRT(r)
	if err != nil {
		return Preset{}, err
	}
	return NewPBRTScene(pbrtScene, opts...)
}

// NewPBRTScene converts a parsed PBRT scene into a renderable preset.
// All errors wrap loaders.ErrInvalidScene.
func NewPBRTScene(pbrtScene *loaders.PBRTScene, opts ...BuildOption) (Preset, error) {
	preset := Preset{
		Name:            "pbrt",
		Width:           pbrtDefaultWidth,
		Height:          pbrtDefaultHeight,
		SamplesPerPixel: pbrtDefaultSamples,
		MaxDepth:        pbrtDefaultDepth,
	}

	if err := convertSettings(pbrtScene, &preset); err != nil {
		return Preset{}, invalidScene(err)
	}
	if err := convertCamera(pbrtScene, &preset); err != nil {
		return Preset{}, invalidScene(err)
	}

	b := NewBuilder()

	// Convert all materials first
	materials := make([]MaterialID, len(pbrtScene.Materials))
	for i := range pbrtScene.Materials {
		stmt := &pbrtScene.Materials[i]
		m, err := convertMaterial(stmt)
		if err != nil {
			return Preset{}, invalidScene(fmt.Errorf("line %d: %w", stmt.Line, err))
		}
		materials[i] = b.AddMaterial(m)
	}

	// Shapes are declared at the origin and placed by their transform
	for i := range pbrtScene.Shapes {
		shapeStmt := &pbrtScene.Shapes[i]
		if shapeStmt.MaterialIndex < 0 || shapeStmt.MaterialIndex >= len(materials) {
			return Preset{}, invalidScene(fmt.Errorf("line %d: shape has no material", shapeStmt.Line))
		}
		shape, err := convertShape(&shapeStmt.PBRTStatement)
		if err != nil {
			return Preset{}, invalidScene(fmt.Errorf("line %d: %w", shapeStmt.Line, err))
		}
		b.AddObject(b.AddShape(shape), materials[shapeStmt.MaterialIndex], shapeStmt.Transform)
	}

	preset.Scene = b.Build(opts...)
	return preset, nil
}

func invalidScene(err error) error {
	if errors.Is(err, loaders.ErrInvalidScene) {
		return err
	}
	return fmt.Errorf("%w: %w", loaders.ErrInvalidScene, err)
}

// convertSettings applies Film, Sampler and Integrator parameters
func convertSettings(pbrtScene *loaders.PBRTScene, preset *Preset) error {
	settings := []struct {
		stmt  *loaders.PBRTStatement
		param string
		dest  *int
		max   int
	}{
		{pbrtScene.Film, "xresolution", &preset.Width, pbrtMaxResolution},
		{pbrtScene.Film, "yresolution", &preset.Height, pbrtMaxResolution},
		{pbrtScene.Sampler, "pixelsamples", &preset.SamplesPerPixel, 1 << 16},
		{pbrtScene.Integrator, "maxdepth", &preset.MaxDepth, 1 << 10},
	}

	for _, s := range settings {
		if s.stmt == nil {
			continue
		}
		v, ok, err := s.stmt.GetIntParam(s.param)
		if err != nil {
			return fmt.Errorf("%s: %w", s.stmt.Type, err)
		}
		if !ok {
			continue
		}
		// maxdepth 0 is allowed: only the first hit is shaded
		minimum := 1
		if s.param == "maxdepth" {
			minimum = 0
		}
		if v < minimum || v > s.max {
			return fmt.Errorf("%s %s %d must be between %d and %d", s.stmt.Type, s.param, v, minimum, s.max)
		}
		*s.dest = v
	}
	return nil
}

// convertCamera converts the PBRT camera to our camera configuration
func convertCamera(pbrtScene *loaders.PBRTScene, preset *Preset) error {
	config := geometry.CameraConfig{
		Eye:         core.Origin,
		Target:      core.NewPoint3(0, 0, -1),
		Up:          core.UnitY,
		VFov:        core.Degrees(90).ToRadians(),
		AspectRatio: float32(preset.Width) / float32(preset.Height),
	}

	if lookAt := pbrtScene.LookAt; lookAt != nil {
		config.Eye = lookAt.Eye
		config.Target = lookAt.Target
		config.Up = lookAt.Up
	}
	config.FocusDistance = config.Target.Sub(config.Eye).Norm()

	if camera := pbrtScene.Camera; camera != nil {
		if camera.Subtype != "perspective" {
			return fmt.Errorf("line %d: unsupported camera %q", camera.Line, camera.Subtype)
		}
		if fov, ok, err := camera.GetFloatParam("fov"); err != nil {
			return err
		} else if ok {
			config.VFov = core.Degrees(fov).ToRadians()
		}
		if lensRadius, ok, err := camera.GetFloatParam("lensradius"); err != nil {
			return err
		} else if ok {
			config.Aperture = 2 * lensRadius
		}
		if focus, ok, err := camera.GetFloatParam("focaldistance"); err != nil {
			return err
		} else if ok {
			config.FocusDistance = focus
		}
	}

	// Validate now so a bad file fails at load time rather than at render time
	if _, err := geometry.NewCamera(config); err != nil {
		return err
	}
	preset.Camera = config
	return nil
}

// convertMaterial converts a PBRT material to our material system
func convertMaterial(stmt *loaders.PBRTStatement) (material.Material, error) {
	switch stmt.Subtype {
	case "diffuse":
		albedo, ok, err := stmt.GetRGBParam("reflectance")
		if err != nil {
			return nil, err
		}
		if !ok {
			albedo = core.NewColor(0.5, 0.5, 0.5)
		}
		return material.NewLambertian(albedo), nil

	case "conductor":
		albedo, ok, err := stmt.GetRGBParam("reflectance")
		if err != nil {
			return nil, err
		}
		if !ok {
			albedo = core.NewColor(0.7, 0.6, 0.5)
		}
		fuzz, _, err := stmt.GetFloatParam("roughness")
		if err != nil {
			return nil, err
		}
		if fuzz < 0 || fuzz > 1 {
			return nil, fmt.Errorf("metal roughness %v must be between 0 and 1", fuzz)
		}
		return material.NewMetal(albedo, fuzz), nil

	case "dielectric":
		eta, ok, err := stmt.GetFloatParam("eta")
		if err != nil {
			return nil, err
		}
		if !ok {
			eta = 1.5
		}
		if eta <= 0 {
			return nil, fmt.Errorf("dielectric eta %v must be positive", eta)
		}
		return material.NewDielectric(eta), nil

	default:
		return nil, fmt.Errorf("unsupported material %q", stmt.Subtype)
	}
}

// convertShape converts a PBRT shape in its local frame
func convertShape(stmt *loaders.PBRTStatement) (geometry.Shape, error) {
	switch stmt.Subtype {
	case "sphere":
		radius, ok, err := stmt.GetFloatParam("radius")
		if err != nil {
			return nil, err
		}
		if !ok {
			radius = 1
		}
		if radius <= 0 {
			return nil, fmt.Errorf("sphere radius %v must be positive", radius)
		}
		return geometry.NewSphere(core.Origin, radius), nil

	case "box":
		halfExtents, ok, err := stmt.GetVec3Param("halfextents")
		if err != nil {
			return nil, err
		}
		if !ok {
			halfExtents = core.One
		}
		if !(halfExtents.X() > 0 && halfExtents.Y() > 0 && halfExtents.Z() > 0) {
			return nil, fmt.Errorf("box half extents %v must be positive", halfExtents)
		}
		return geometry.NewBox(halfExtents), nil

	default:
		return nil, fmt.Errorf("unsupported shape %q", stmt.Subtype)
	}
}

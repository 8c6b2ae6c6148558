package integrator

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/material"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// createTestScene creates a scene with a single sphere at (0, 0, -1)
func createTestScene(m material.Material) *scene.Scene {
	b := scene.NewBuilder()
	b.AddObject(b.AddShape(geometry.NewSphere(core.NewPoint3(0, 0, -1), 0.5)), b.AddMaterial(m))
	return b.Build()
}

func colorApproxEqual(a, b core.Color, tolerance float32) bool {
	return math32.Abs(a.R()-b.R()) <= tolerance &&
		math32.Abs(a.G()-b.G()) <= tolerance &&
		math32.Abs(a.B()-b.B()) <= tolerance
}

func TestBackground(t *testing.T) {
	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewColor(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -1, 0), core.White},
		{"horizon", core.NewVec3(1, 0, 0), core.NewColor(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Background(core.NewRay(core.Origin, tt.direction))
			if !colorApproxEqual(got, tt.expected, 1e-6) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRayColor_MissReturnsBackground(t *testing.T) {
	s := createTestScene(material.NewLambertian(core.NewColor(0.7, 0.3, 0.3)))
	random := rand.New(rand.NewSource(42))
	ray := core.NewRay(core.Origin, core.NewVec3(0, 1, 0))

	got := RayColor(s, ray, 0, 10, random)
	if !colorApproxEqual(got, Background(ray), 1e-6) {
		t.Errorf("Expected background %v, got %v", Background(ray), got)
	}
}

func TestRayColor_DepthTermination(t *testing.T) {
	s := createTestScene(material.NewLambertian(core.NewColor(0.7, 0.3, 0.3)))
	random := rand.New(rand.NewSource(42))

	// Even a ray that would miss returns black past the depth limit
	ray := core.NewRay(core.Origin, core.NewVec3(0, 1, 0))
	if got := RayColor(s, ray, 11, 10, random); got != core.Black {
		t.Errorf("Expected black past max depth, got %v", got)
	}

	// At depth == maxDepth one more bounce is still traced
	if got := RayColor(s, ray, 10, 10, random); got == core.Black {
		t.Error("Expected background at depth == max depth")
	}
}

func TestRayColor_AttenuatesByAlbedo(t *testing.T) {
	// A mirror sphere reflects a ray hitting its pole straight back into the sky
	albedo := core.NewColor(0.8, 0.5, 0.2)
	s := createTestScene(material.NewMetal(albedo, 0))
	random := rand.New(rand.NewSource(42))

	ray := core.NewRay(core.NewPoint3(0, 2, -1), core.NewVec3(0, -1, 0))
	got := RayColor(s, ray, 0, 10, random)
	expected := albedo.Mul(Background(core.NewRay(core.Origin, core.NewVec3(0, 1, 0))))

	if !colorApproxEqual(got, expected, 1e-5) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRayColor_ZeroDepthBudgetDarkensHits(t *testing.T) {
	s := createTestScene(material.NewLambertian(core.NewColor(0.7, 0.3, 0.3)))
	random := rand.New(rand.NewSource(42))
	ray := core.NewRay(core.Origin, core.NewVec3(0, 0, -1))

	// With max depth 0 the scattered ray is already past the limit
	if got := RayColor(s, ray, 0, 0, random); got != core.Black {
		t.Errorf("Expected black for a hit without remaining bounces, got %v", got)
	}
}

func TestRayColor_StaysInUnitRange(t *testing.T) {
	s := createTestScene(material.NewDielectric(1.5))
	integrator := NewPathTracingIntegrator(10)
	random := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		direction := core.NewVec3(random.Float32()-0.5, random.Float32()-0.5, -1)
		c := integrator.RayColor(core.NewRay(core.Origin, direction), s, random)
		for _, v := range []float32{c.R(), c.G(), c.B()} {
			if v < 0 || v > 1 || math32.IsNaN(v) {
				t.Fatalf("Expected channels in [0, 1], got %v", c)
			}
		}
	}
}

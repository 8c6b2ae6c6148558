package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
)

func TestBox_Hit_AxisAligned(t *testing.T) {
	// A 2x2x2 box centered at origin
	box := NewBox(core.NewVec3(1, 1, 1))
	inf := math32.Inf(1)

	tests := []struct {
		name           string
		ray            core.Ray
		near, far      float32
		shouldHit      bool
		expectedT      float32
		expectedFront  bool
		expectedNormal core.NormalizedVec3
	}{
		{
			name:           "Ray hits front face",
			ray:            core.NewRay(core.NewPoint3(0, 0, 5), core.NewVec3(0, 0, -1)),
			near:           0.001,
			far:            inf,
			shouldHit:      true,
			expectedT:      4,
			expectedFront:  true,
			expectedNormal: core.NewNormalizedVec3(0, 0, 1),
		},
		{
			name:           "Ray hits left face",
			ray:            core.NewRay(core.NewPoint3(-3, 0.5, 0.5), core.NewVec3(1, 0, 0)),
			near:           0.001,
			far:            inf,
			shouldHit:      true,
			expectedT:      2,
			expectedFront:  true,
			expectedNormal: core.NewNormalizedVec3(-1, 0, 0),
		},
		{
			name:           "Ray from inside exits top",
			ray:            core.NewRay(core.NewPoint3(0, 0, 0), core.NewVec3(0, 1, 0)),
			near:           0.001,
			far:            inf,
			shouldHit:      true,
			expectedT:      1,
			expectedFront:  false,
			expectedNormal: core.NewNormalizedVec3(0, -1, 0),
		},
		{
			name:      "Ray misses beside the box",
			ray:       core.NewRay(core.NewPoint3(2, 0, 5), core.NewVec3(0, 0, -1)),
			near:      0.001,
			far:       inf,
			shouldHit: false,
		},
		{
			name:      "Ray points away",
			ray:       core.NewRay(core.NewPoint3(0, 0, 5), core.NewVec3(0, 0, 1)),
			near:      0.001,
			far:       inf,
			shouldHit: false,
		},
		{
			name:      "Box beyond far",
			ray:       core.NewRay(core.NewPoint3(0, 0, 5), core.NewVec3(0, 0, -1)),
			near:      0.001,
			far:       3,
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := box.Hit(tt.ray, tt.near, tt.far)
			if isHit != tt.shouldHit {
				t.Fatalf("Expected hit=%t, got %t", tt.shouldHit, isHit)
			}
			if !isHit {
				return
			}
			if !approxEqual(hit.T, tt.expectedT, 1e-5) {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !normalApproxEqual(hit.Normal, tt.expectedNormal, 1e-6) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestBox_Hit_Diagonal(t *testing.T) {
	box := NewBox(core.NewVec3(1, 2, 3))
	ray := core.NewRay(core.NewPoint3(5, 5, 5), core.NewVec3(-1, -1, -1))

	hit, isHit := box.Hit(ray, 0.001, math32.Inf(1))
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	// Enters through the x = 1 face at (1, 1, 1)
	if d := hit.Point.Sub(core.NewPoint3(1, 1, 1)).Norm(); d > 1e-5 {
		t.Errorf("Expected hit at (1, 1, 1), got %v", hit.Point)
	}
	if !normalApproxEqual(hit.Normal, core.NewNormalizedVec3(1, 0, 0), 1e-6) {
		t.Errorf("Expected +X normal, got %v", hit.Normal)
	}
}

func TestBox_BoundingBox(t *testing.T) {
	bounds := NewBox(core.NewVec3(1, 2, 3)).BoundingBox()
	if bounds.Min != core.NewPoint3(-1, -2, -3) || bounds.Max != core.NewPoint3(1, 2, 3) {
		t.Errorf("Unexpected bounding box %v..%v", bounds.Min, bounds.Max)
	}
}

func TestNewBox_InvalidExtentsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected NewBox with a zero extent to panic")
		}
	}()
	NewBox(core.NewVec3(1, 0, 1))
}

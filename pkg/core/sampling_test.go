package core

import (
	"math/rand"
	"testing"
)

func TestRandomInUnitSphere(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		p := RandomInUnitSphere(random)
		if p.NormSquared() >= 1 {
			t.Fatalf("Point %v is outside the unit ball", p)
		}
	}
}

func TestRandomUnitVector(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	var sum Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		u := RandomUnitVector(random)
		if !approxEqual(u.Vec().Norm(), 1, 1e-5) {
			t.Fatalf("Unit vector %v has norm %v", u, u.Vec().Norm())
		}
		sum = sum.Add(u.Vec())
	}

	// Directions should be spread evenly, so the mean tends to zero
	mean := sum.Div(n)
	if mean.Norm() > 0.05 {
		t.Errorf("Expected mean direction near zero, got %v", mean)
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		p := RandomInUnitDisk(random)
		if p.Z() != 0 {
			t.Fatalf("Disk point %v has non-zero z", p)
		}
		if p.NormSquared() >= 1 {
			t.Fatalf("Disk point %v is outside the unit disk", p)
		}
	}
}

func TestRandomVec3Range(t *testing.T) {
	random := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := RandomVec3Range(random, -2, 3)
		for axis := 0; axis < 3; axis++ {
			c := v.Component(axis)
			if c < -2 || c >= 3 {
				t.Fatalf("Component %d = %v outside [-2, 3)", axis, c)
			}
		}
	}
}

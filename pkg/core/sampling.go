package core

import (
	"math/rand"
)

// The samplers below use rejection sampling. The loops have no iteration
// bound; a trial succeeds with probability ~0.52 (ball) or ~0.79 (disk).

// RandomVec3 returns a vector with components uniform in [0, 1)
func RandomVec3(random *rand.Rand) Vec3 {
	return Vec3{random.Float32(), random.Float32(), random.Float32()}
}

// RandomVec3Range returns a vector with components uniform in [lo, hi)
func RandomVec3Range(random *rand.Rand, lo, hi float32) Vec3 {
	span := hi - lo
	return NewVec3(
		lo+span*random.Float32(),
		lo+span*random.Float32(),
		lo+span*random.Float32(),
	)
}

// RandomInUnitSphere returns a point strictly inside the unit ball
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3Range(random, -1, 1)
		if p.NormSquared() < 1 {
			return p
		}
	}
}

// RandomUnitVector returns a random direction on the unit sphere
func RandomUnitVector(random *rand.Rand) NormalizedVec3 {
	for {
		if n, ok := RandomInUnitSphere(random).TryNormalized(); ok {
			return n
		}
	}
}

// RandomInUnitDisk returns a point strictly inside the unit disk in the z = 0 plane
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		p := NewVec3(2*random.Float32()-1, 2*random.Float32()-1, 0)
		if p.NormSquared() < 1 {
			return p
		}
	}
}

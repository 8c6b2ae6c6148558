package renderer

import (
	"math/rand"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/integrator"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator.
// It holds only read-only state and is shared by all workers.
type TileRenderer struct {
	scene           *scene.Scene
	camera          *geometry.Camera
	integrator      integrator.Integrator
	width, height   int
	samplesPerPixel int
}

// NewTileRenderer creates a new tile renderer for an image of the given size
func NewTileRenderer(s *scene.Scene, camera *geometry.Camera, integratorInst integrator.Integrator, width, height, samplesPerPixel int) *TileRenderer {
	return &TileRenderer{
		scene:           s,
		camera:          camera,
		integrator:      integratorInst,
		width:           width,
		height:          height,
		samplesPerPixel: samplesPerPixel,
	}
}

// RenderTile fills tile.Pixels with the averaged, gamma-corrected color of
// every pixel inside its bounds
func (tr *TileRenderer) RenderTile(tile *Tile, random *rand.Rand) RenderStats {
	start := time.Now()
	tile.Pixels = make([]core.Color, tile.Size*tile.Size)

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			var accum core.ColorAccumulator
			for sample := 0; sample < tr.samplesPerPixel; sample++ {
				u := imageCoordinate(x, tr.width, random)
				v := 1 - imageCoordinate(y, tr.height, random)
				ray := tr.camera.RayAt(u, v, random)
				accum.Add(tr.integrator.RayColor(ray, tr.scene, random))
			}

			i := x - tile.Bounds.Min.X
			j := y - tile.Bounds.Min.Y
			tile.Pixels[j*tile.Size+i] = accum.Average().Gamma2()
		}
	}

	tile.Duration = time.Since(start)
	pixels := tile.Bounds.Dx() * tile.Bounds.Dy()
	return RenderStats{
		TotalTiles:   1,
		TotalPixels:  pixels,
		TotalSamples: pixels * tr.samplesPerPixel,
	}
}

// imageCoordinate maps pixel p with a sub-pixel jitter onto [0, 1] across an
// axis of n pixels. A single-pixel axis always maps to its center.
func imageCoordinate(p, n int, random *rand.Rand) float32 {
	if n <= 1 {
		return 0.5
	}
	jitter := random.Float32() - 0.5
	return (float32(p) + jitter) / float32(n-1)
}

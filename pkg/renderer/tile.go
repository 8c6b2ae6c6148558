package renderer

import (
	"image"
	"math/rand"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// Tile is a square block of the image rendered as one unit of work. Tiles on
// the right and bottom edges are clipped: Bounds covers only pixels inside
// the image, and Pixels entries outside Bounds stay black.
type Tile struct {
	ID       int             // Row-major index in the tile grid
	X, Y     int             // Tile coordinates in the grid
	Size     int             // Edge length in pixels
	Bounds   image.Rectangle // Pixel bounds clipped to the image
	Pixels   []core.Color    // Size*Size gamma-corrected colors, row-major
	Duration time.Duration   // Time spent rendering the tile
}

// At returns the color of pixel (i, j) relative to the tile's corner
func (t Tile) At(i, j int) core.Color {
	return t.Pixels[j*t.Size+i]
}

// NewTileGrid creates a row-major grid of tiles covering the entire image.
// Pixels are allocated when a tile is rendered.
func NewTileGrid(width, height, tileSize int) []Tile {
	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]Tile, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, Tile{
				ID:     len(tiles),
				X:      tileX,
				Y:      tileY,
				Size:   tileSize,
				Bounds: image.Rect(x0, y0, x1, y1),
			})
		}
	}

	return tiles
}

// tileRandom creates the deterministic generator for a tile, so the same
// seed renders the same image regardless of worker scheduling
func tileRandom(seed int64, tileID int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(tileID)))
}

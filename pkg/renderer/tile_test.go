package renderer

import (
	"image"
	"testing"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		expectedTiles int
	}{
		{"exact fit", 64, 32, 16, 8},
		{"ragged edges", 20, 11, 8, 6},
		{"single tile larger than image", 5, 3, 16, 1},
		{"single pixel", 1, 1, 1, 1},
		{"one pixel past a tile", 17, 17, 16, 4},
		{"wide strip", 400, 1, 16, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize)
			if len(tiles) != tt.expectedTiles {
				t.Fatalf("Expected %d tiles, got %d", tt.expectedTiles, len(tiles))
			}

			// Every pixel is covered exactly once
			covered := make([]int, tt.width*tt.height)
			imageBounds := image.Rect(0, 0, tt.width, tt.height)
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("Expected tile %d to have ID %d, got %d", i, i, tile.ID)
				}
				if !tile.Bounds.In(imageBounds) {
					t.Errorf("Tile %d bounds %v exceed the image", i, tile.Bounds)
				}
				if tile.Bounds.Min.X != tile.X*tt.tileSize || tile.Bounds.Min.Y != tile.Y*tt.tileSize {
					t.Errorf("Tile %d at (%d, %d) starts at %v", i, tile.X, tile.Y, tile.Bounds.Min)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
						covered[y*tt.width+x]++
					}
				}
			}
			for p, count := range covered {
				if count != 1 {
					t.Fatalf("Pixel (%d, %d) covered %d times", p%tt.width, p/tt.width, count)
				}
			}
		})
	}
}

func TestTileRandom_IsDeterministic(t *testing.T) {
	a := tileRandom(42, 3)
	b := tileRandom(42, 3)
	c := tileRandom(42, 4)

	same := true
	for i := 0; i < 10; i++ {
		va, vb, vc := a.Int63(), b.Int63(), c.Int63()
		if va != vb {
			t.Fatalf("Expected identical sequences for the same tile, got %d and %d", va, vb)
		}
		if va != vc {
			same = false
		}
	}
	if same {
		t.Error("Expected different tiles to get different sequences")
	}
}

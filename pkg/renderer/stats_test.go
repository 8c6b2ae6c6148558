package renderer

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Top-left: Red (1, 0, 0) -> Lum = 0.2126
	// Top-right: Green (0, 1, 0) -> Lum = 0.7152
	// Bottom-left: Blue (0, 0, 1) -> Lum = 0.0722
	// Bottom-right: Black (0, 0, 0) -> Lum = 0.0
	// Expected average: 1.0 / 4 = 0.25
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	if avgLum := CalculateAverageLuminance(img); avgLum < 0.9999 || avgLum > 1.0001 {
		t.Errorf("Expected average luminosity 1.0, got %f", avgLum)
	}
}

func TestRenderStats_AddTile(t *testing.T) {
	var stats RenderStats
	for _, tile := range NewTileGrid(10, 5, 4) {
		tile.Duration = 10 * time.Millisecond
		stats.AddTile(tile, 3)
	}
	stats.Elapsed = 30 * time.Millisecond

	if stats.TotalTiles != 6 || stats.TotalPixels != 50 || stats.TotalSamples != 150 {
		t.Errorf("Unexpected totals %+v", stats)
	}
	if p := stats.Parallelism(); p < 1.99 || p > 2.01 {
		t.Errorf("Expected parallelism 2, got %f", p)
	}
	if sps := stats.SamplesPerSecond(); sps < 4999 || sps > 5001 {
		t.Errorf("Expected 5000 samples per second, got %f", sps)
	}
}

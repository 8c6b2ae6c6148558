package renderer

import (
	"image"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalTiles   int           // Number of tiles delivered
	TotalPixels  int           // Total number of pixels rendered
	TotalSamples int           // Total number of camera samples taken
	Elapsed      time.Duration // Wall time of the whole render
	TileTime     time.Duration // Sum of per-tile render times across workers
}

// AddTile accumulates a finished tile
func (s *RenderStats) AddTile(tile Tile, samplesPerPixel int) {
	pixels := tile.Bounds.Dx() * tile.Bounds.Dy()
	s.TotalTiles++
	s.TotalPixels += pixels
	s.TotalSamples += pixels * samplesPerPixel
	s.TileTime += tile.Duration
}

// SamplesPerSecond returns camera samples per second of wall time
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Elapsed.Seconds()
}

// Parallelism returns how many tiles were rendering at once on average
func (s RenderStats) Parallelism() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return s.TileTime.Seconds() / s.Elapsed.Seconds()
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image in [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
		}
	}
	return total / float64(bounds.Dx()*bounds.Dy())
}

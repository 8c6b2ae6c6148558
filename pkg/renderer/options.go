package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrInvalidOptions is returned for render options that cannot produce an image
var ErrInvalidOptions = errors.New("invalid render options")

// Options contains the render request settings
type Options struct {
	Width           int          // Image width in pixels
	Height          int          // Image height in pixels
	SamplesPerPixel int          // Number of rays per pixel
	MaxDepth        int          // Maximum ray bounce depth
	TileSize        int          // Edge length of the square tiles
	NumWorkers      int          // Number of parallel workers (0 = use CPU count)
	Seed            int64        // Base seed; each tile derives its own generator from it
	ChannelBuffer   int          // Capacity of the finished tile channel
	Logger          *slog.Logger // Optional logger; nil discards output
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		Width:           400,
		Height:          400,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		TileSize:        16,
		NumWorkers:      0, // Auto-detect CPU count
		Seed:            42,
		ChannelBuffer:   1000,
	}
}

// Validate reports the first setting that cannot be rendered
func (o Options) Validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidOptions, o.Width, o.Height)
	case o.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidOptions, o.SamplesPerPixel)
	case o.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidOptions, o.MaxDepth)
	case o.TileSize <= 0:
		return fmt.Errorf("%w: tile size must be positive, got %d", ErrInvalidOptions, o.TileSize)
	case o.NumWorkers < 0:
		return fmt.Errorf("%w: worker count must not be negative, got %d", ErrInvalidOptions, o.NumWorkers)
	case o.ChannelBuffer < 0:
		return fmt.Errorf("%w: channel buffer must not be negative, got %d", ErrInvalidOptions, o.ChannelBuffer)
	}
	return nil
}

// workers returns the number of goroutines to start
func (o Options) workers() int {
	if o.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return o.NumWorkers
}

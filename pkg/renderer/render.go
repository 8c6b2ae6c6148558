package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/integrator"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// Render starts rendering the scene and returns a channel of finished tiles.
// Tiles arrive in any order. The channel is closed when every tile has been
// delivered, or after ctx is cancelled and the workers have stopped; tiles
// still in flight at cancellation are dropped.
func Render(ctx context.Context, s *scene.Scene, camera *geometry.Camera, opts Options) (<-chan Tile, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if s == nil || camera == nil {
		return nil, fmt.Errorf("%w: scene and camera are required", ErrInvalidOptions)
	}

	logger := core.LoggerOrNop(opts.Logger)
	tiles := NewTileGrid(opts.Width, opts.Height, opts.TileSize)
	tr := NewTileRenderer(s, camera, integrator.NewPathTracingIntegrator(opts.MaxDepth),
		opts.Width, opts.Height, opts.SamplesPerPixel)

	pool := NewWorkerPool(tr, opts.workers(), len(tiles), opts.ChannelBuffer, logger)
	pool.Start(ctx)

	logger.Info("render started",
		"width", opts.Width,
		"height", opts.Height,
		"tiles", len(tiles),
		"tile_size", opts.TileSize,
		"workers", pool.NumWorkers(),
		"samples", opts.SamplesPerPixel,
		"max_depth", opts.MaxDepth,
		"objects", s.NumObjects())

	go func() {
		defer pool.Close(ctx)
		for _, tile := range tiles {
			if !pool.Submit(ctx, tile, opts.Seed) {
				return
			}
		}
	}()

	return pool.Results(), nil
}

// RenderImage renders the whole image and blocks until it is done.
// On cancellation it returns the partial image and an error wrapping ctx's cause.
func RenderImage(ctx context.Context, s *scene.Scene, camera *geometry.Camera, opts Options) (*image.RGBA, RenderStats, error) {
	start := time.Now()
	results, err := Render(ctx, s, camera, opts)
	if err != nil {
		return nil, RenderStats{}, err
	}

	fb := NewFramebuffer(opts.Width, opts.Height)
	var stats RenderStats
	for tile := range results {
		fb.WriteTile(tile)
		stats.AddTile(tile, opts.SamplesPerPixel)
	}
	stats.Elapsed = time.Since(start)

	if stats.TotalTiles < len(NewTileGrid(opts.Width, opts.Height, opts.TileSize)) {
		return fb.Image(), stats, fmt.Errorf("render incomplete after %d tiles: %w", stats.TotalTiles, context.Cause(ctx))
	}
	return fb.Image(), stats, nil
}

package renderer

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/material"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// createTwoSphereScene creates a blue sphere resting on a gray ground sphere
func createTwoSphereScene() *scene.Scene {
	b := scene.NewBuilder()
	ground := b.AddMaterial(material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))
	blue := b.AddMaterial(material.NewLambertian(core.NewColor(0.1, 0.2, 0.5)))
	b.AddObject(b.AddShape(geometry.NewSphere(core.NewPoint3(0, -100.5, -1), 100)), ground)
	b.AddObject(b.AddShape(geometry.NewSphere(core.NewPoint3(0, 0, -1), 0.5)), blue)
	return b.Build()
}

func testOptions(width, height int) Options {
	opts := DefaultOptions()
	opts.Width = width
	opts.Height = height
	opts.SamplesPerPixel = 8
	opts.MaxDepth = 5
	opts.TileSize = 4
	opts.NumWorkers = 2
	return opts
}

func blueRatio(img *image.RGBA, x, y int) (ratio float64, luminance float64) {
	c := img.RGBAAt(x, y)
	r, g, b := float64(c.R)+1, float64(c.G), float64(c.B)
	return b / r, 0.2126*r + 0.7152*g + 0.0722*b
}

func TestRenderImage_TwoSphereScene(t *testing.T) {
	width, height := 20, 11
	img, stats, err := RenderImage(context.Background(), createTwoSphereScene(), testCamera(t, width, height), testOptions(width, height))
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, width, height) {
		t.Fatalf("Unexpected image bounds %v", img.Bounds())
	}
	if stats.TotalPixels != width*height || stats.TotalTiles != 15 || stats.TotalSamples != width*height*8 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	centerRatio, centerLuminance := blueRatio(img, width/2, height/2)
	for x := 0; x < width; x++ {
		skyRatio, skyLuminance := blueRatio(img, x, 0)
		if centerRatio <= skyRatio {
			t.Errorf("Expected center pixel to be bluer than sky pixel %d: ratio %.2f vs %.2f", x, centerRatio, skyRatio)
		}
		if centerLuminance >= skyLuminance {
			t.Errorf("Expected center pixel to be darker than sky pixel %d: %.1f vs %.1f", x, centerLuminance, skyLuminance)
		}
		if c := img.RGBAAt(x, 0); c.B < c.G || c.G < c.R {
			t.Errorf("Expected sky pixel %d to follow the blue gradient, got %v", x, c)
		}
	}
}

func TestRenderImage_SameSeedSameImage(t *testing.T) {
	width, height := 16, 9
	s := createTwoSphereScene()
	camera := testCamera(t, width, height)

	opts := testOptions(width, height)
	opts.NumWorkers = 1
	first, _, err := RenderImage(context.Background(), s, camera, opts)
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}

	opts.NumWorkers = 4
	second, _, err := RenderImage(context.Background(), s, camera, opts)
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}

	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("Images differ at byte %d: %d vs %d", i, first.Pix[i], second.Pix[i])
		}
	}
}

func TestRender_StreamsEveryTile(t *testing.T) {
	width, height := 13, 7
	opts := testOptions(width, height)
	opts.ChannelBuffer = 0

	results, err := Render(context.Background(), createTwoSphereScene(), testCamera(t, width, height), opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	seen := make(map[int]bool)
	for tile := range results {
		if seen[tile.ID] {
			t.Errorf("Tile %d delivered twice", tile.ID)
		}
		seen[tile.ID] = true
		if len(tile.Pixels) != tile.Size*tile.Size {
			t.Errorf("Tile %d has %d pixels", tile.ID, len(tile.Pixels))
		}
	}
	if expected := len(NewTileGrid(width, height, opts.TileSize)); len(seen) != expected {
		t.Errorf("Expected %d tiles, got %d", expected, len(seen))
	}
}

func TestRender_Cancellation(t *testing.T) {
	width, height := 64, 64
	opts := testOptions(width, height)
	opts.SamplesPerPixel = 20
	opts.ChannelBuffer = 0
	total := len(NewTileGrid(width, height, opts.TileSize))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := Render(ctx, createTwoSphereScene(), testCamera(t, width, height), opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Take one tile, then cancel and drain
	if _, ok := <-results; !ok {
		t.Fatal("Expected at least one tile before cancelling")
	}
	cancel()

	received := 1
	timeout := time.After(10 * time.Second)
	for {
		select {
		case _, ok := <-results:
			if !ok {
				if received >= total {
					t.Errorf("Expected cancellation to drop tiles, got all %d", total)
				}
				return
			}
			received++
		case <-timeout:
			t.Fatal("Result channel was not closed after cancellation")
		}
	}
}

func TestRenderImage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	width, height := 32, 32
	img, _, err := RenderImage(ctx, createTwoSphereScene(), testCamera(t, width, height), testOptions(width, height))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if img == nil {
		t.Error("Expected a partial image")
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		valid  bool
	}{
		{"defaults", func(o *Options) {}, true},
		{"unbuffered channel", func(o *Options) { o.ChannelBuffer = 0 }, true},
		{"zero depth", func(o *Options) { o.MaxDepth = 0 }, true},
		{"zero width", func(o *Options) { o.Width = 0 }, false},
		{"negative height", func(o *Options) { o.Height = -1 }, false},
		{"zero samples", func(o *Options) { o.SamplesPerPixel = 0 }, false},
		{"negative depth", func(o *Options) { o.MaxDepth = -1 }, false},
		{"zero tile size", func(o *Options) { o.TileSize = 0 }, false},
		{"negative workers", func(o *Options) { o.NumWorkers = -2 }, false},
		{"negative buffer", func(o *Options) { o.ChannelBuffer = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid options, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestRender_RejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.TileSize = 0
	if _, err := Render(context.Background(), createTwoSphereScene(), testCamera(t, 4, 4), opts); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
	if _, err := Render(context.Background(), nil, testCamera(t, 4, 4), DefaultOptions()); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions for a nil scene, got %v", err)
	}
}

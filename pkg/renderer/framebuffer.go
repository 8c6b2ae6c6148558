package renderer

import (
	"image"

	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// Framebuffer assembles finished tiles into the final image.
// Tiles never overlap, so writes from different tiles are independent.
type Framebuffer struct {
	width, height int
	pixels        []core.Color
}

// NewFramebuffer creates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]core.Color, width*height),
	}
}

// Width returns the image width
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the image height
func (fb *Framebuffer) Height() int { return fb.height }

// WriteTile copies a tile's pixels into place. Tile pixel (i, j) lands on
// image pixel (X*Size+i, Y*Size+j); pixels outside the image are dropped.
func (fb *Framebuffer) WriteTile(tile Tile) {
	for j := 0; j < tile.Size; j++ {
		y := tile.Y*tile.Size + j
		if y >= fb.height {
			break
		}
		for i := 0; i < tile.Size; i++ {
			x := tile.X*tile.Size + i
			if x >= fb.width {
				break
			}
			fb.pixels[y*fb.width+x] = tile.At(i, j)
		}
	}
}

// At returns the color of pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Color {
	return fb.pixels[y*fb.width+x]
}

// Image converts the framebuffer to 8-bit RGBA, rounding every channel
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			img.SetRGBA(x, y, fb.At(x, y).RGBA8())
		}
	}
	return img
}

// TileImage converts a single tile to an image covering its clipped bounds
func TileImage(tile Tile) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tile.Bounds.Dx(), tile.Bounds.Dy()))
	for j := 0; j < tile.Bounds.Dy(); j++ {
		for i := 0; i < tile.Bounds.Dx(); i++ {
			img.SetRGBA(i, j, tile.At(i, j).RGBA8())
		}
	}
	return img
}

package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/renderer"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
	"golang.org/x/image/draw"
)

// RenderStart describes the image being rendered, sent before any tile
type RenderStart struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	TileSize   int `json:"tileSize"`
	TotalTiles int `json:"totalTiles"`
	Scale      int `json:"scale"`
	Objects    int `json:"objects"`
}

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX      int    `json:"tileX"`
	TileY      int    `json:"tileY"`
	X          int    `json:"x"`      // Pixel position of the tile corner
	Y          int    `json:"y"`      // Pixel position of the tile corner
	Width      int    `json:"width"`  // Clipped tile width in pixels
	Height     int    `json:"height"` // Clipped tile height in pixels
	ImageData  string `json:"imageData"`
	TileNumber int    `json:"tileNumber"` // Tiles received so far (1-based)
	TotalTiles int    `json:"totalTiles"`
	DurationMs int64  `json:"durationMs"`
}

// RenderComplete carries the final statistics
type RenderComplete struct {
	ElapsedMs        int64   `json:"elapsedMs"`
	TotalTiles       int     `json:"totalTiles"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "start", "console", "tile", "complete", "error"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a scene and streams every finished tile via SSE.
// Closing the connection cancels the render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// A single goroutine writes to the response
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, preset, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := NewWebLogger(renderID, consoleChan, s.logger.Handler(), slog.LevelInfo)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	defer func() {
		close(consoleChan)
		<-consoleDone
	}()

	camera, err := geometry.NewCamera(preset.Camera)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	opts := renderer.DefaultOptions()
	opts.Width = req.Width
	opts.Height = req.Height
	opts.SamplesPerPixel = req.Samples
	opts.MaxDepth = req.MaxDepth
	opts.TileSize = req.TileSize
	opts.Seed = req.Seed
	opts.Logger = logger.With("scene", req.Scene)

	startTime := time.Now()
	tiles, err := renderer.Render(ctx, preset.Scene, camera, opts)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	totalTiles := len(renderer.NewTileGrid(req.Width, req.Height, req.TileSize))
	s.sendEvent(ctx, sseEventChan, "start", RenderStart{
		Width:      req.Width,
		Height:     req.Height,
		TileSize:   req.TileSize,
		TotalTiles: totalTiles,
		Scale:      req.Scale,
		Objects:    preset.Scene.NumObjects(),
	})

	var stats renderer.RenderStats
	for tile := range tiles {
		stats.AddTile(tile, req.Samples)
		s.handleTileUpdate(ctx, sseEventChan, tile, stats.TotalTiles, totalTiles, req.Scale)
	}
	stats.Elapsed = time.Since(startTime)

	if stats.TotalTiles < totalTiles {
		// Client disconnected; the render was cancelled
		return
	}

	s.sendEvent(ctx, sseEventChan, "complete", RenderComplete{
		ElapsedMs:        stats.Elapsed.Milliseconds(),
		TotalTiles:       stats.TotalTiles,
		TotalPixels:      stats.TotalPixels,
		TotalSamples:     stats.TotalSamples,
		SamplesPerSecond: stats.SamplesPerSecond(),
	})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes all SSE events until the channel is closed or the
// client disconnects
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	disconnected := false
	for event := range sseEventChan {
		// Keep draining after a disconnect so senders never block
		if disconnected || ctx.Err() != nil {
			disconnected = true
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			disconnected = true
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards console messages as SSE events
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			s.logger.Error("marshaling console message", "err", err)
			continue
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Channel full, skip message to avoid blocking
		}
	}
}

// handleTileUpdate encodes a finished tile and sends it
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tile renderer.Tile, tileNumber, totalTiles, scale int) {
	if ctx.Err() != nil {
		return
	}

	tileData, err := imageToBase64PNG(scaleImage(renderer.TileImage(tile), scale))
	if err != nil {
		s.logger.Error("encoding tile image", "tile_x", tile.X, "tile_y", tile.Y, "err", err)
		return
	}

	s.sendEvent(ctx, sseEventChan, "tile", TileUpdate{
		TileX:      tile.X,
		TileY:      tile.Y,
		X:          tile.Bounds.Min.X,
		Y:          tile.Bounds.Min.Y,
		Width:      tile.Bounds.Dx(),
		Height:     tile.Bounds.Dy(),
		ImageData:  tileData,
		TileNumber: tileNumber,
		TotalTiles: totalTiles,
		DurationMs: tile.Duration.Milliseconds(),
	})
}

// sendEvent marshals v and queues it, giving up when the client is gone
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshaling event", "type", eventType, "err", err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, scene.Preset, error) {
	req := &RenderRequest{}

	preset, err := s.parseCommonSceneParams(r, req, scene.WithBVH())
	if err != nil {
		return nil, scene.Preset{}, err
	}

	query := r.URL.Query()
	defaults := renderer.DefaultOptions()
	if req.Samples, err = parseIntParam(query, "samples", preset.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, scene.Preset{}, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", preset.MaxDepth, 0, maxDepth); err != nil {
		return nil, scene.Preset{}, err
	}
	if req.TileSize, err = parseIntParam(query, "tileSize", defaults.TileSize, 1, 256); err != nil {
		return nil, scene.Preset{}, err
	}
	if req.Seed, err = parseInt64Param(query, "seed", defaults.Seed); err != nil {
		return nil, scene.Preset{}, err
	}
	if req.Scale, err = parseIntParam(query, "scale", 1, 1, maxScale); err != nil {
		return nil, scene.Preset{}, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		s.logger.Warn("large image with high samples may render slowly",
			"width", req.Width, "height", req.Height, "samples", req.Samples)
	}

	return req, preset, nil
}

// scaleImage enlarges img by an integer factor without smoothing
func scaleImage(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// Request limits shared by the render and inspect endpoints
const (
	minImageSize = 16
	maxImageSize = 2000
	maxSamples   = 10000
	maxDepth     = 100
	maxScale     = 8
)

// Server handles web requests for the tiled raytracer
type Server struct {
	port      int
	staticDir string
	sceneDir  string
	logger    *slog.Logger
}

// NewServer creates a new web server. A nil logger discards server logs.
func NewServer(port int, logger *slog.Logger) *Server {
	return &Server{
		port:      port,
		staticDir: "static",
		sceneDir:  "scenes",
		logger:    core.LoggerOrNop(logger),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string `json:"scene"`    // Preset name or PBRT scene in the scene directory
	Width    int    `json:"width"`    // Image width
	Height   int    `json:"height"`   // Image height
	Samples  int    `json:"samples"`  // Samples per pixel
	MaxDepth int    `json:"maxDepth"` // Maximum bounce depth
	TileSize int    `json:"tileSize"` // Tile edge length
	Seed     int64  `json:"seed"`     // Base random seed
	Scale    int    `json:"scale"`    // Preview upscale factor for streamed tiles
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting web server", "addr", "http://localhost"+addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the scene presets with their default settings
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	type sceneInfo struct {
		scene.PresetInfo
		Width    int `json:"width"`
		Height   int `json:"height"`
		Samples  int `json:"samples"`
		MaxDepth int `json:"maxDepth"`
	}

	infos := make([]sceneInfo, 0, len(scene.Names()))
	for _, info := range scene.List() {
		preset, err := scene.Lookup(info.Name)
		if err != nil {
			continue
		}
		infos = append(infos, sceneInfo{
			PresetInfo: info,
			Width:      preset.Width,
			Height:     preset.Height,
			Samples:    preset.SamplesPerPixel,
			MaxDepth:   preset.MaxDepth,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scenes": infos,
		"limits": map[string]any{
			"width":   map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":  map[string]int{"min": minImageSize, "max": maxImageSize},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"depth":   map[string]int{"min": 0, "max": maxDepth},
			"scale":   map[string]int{"min": 1, "max": maxScale},
		},
	})
}

// loadScene resolves a preset name, falling back to a PBRT file in the scene directory
func (s *Server) loadScene(name string, opts ...scene.BuildOption) (scene.Preset, error) {
	preset, err := scene.Lookup(name, opts...)
	if err == nil {
		return preset, nil
	}

	// Only bare names are accepted, never paths
	if name != filepath.Base(name) {
		return scene.Preset{}, err
	}
	path := filepath.Join(s.sceneDir, name+".pbrt")
	if _, statErr := os.Stat(path); statErr != nil {
		return scene.Preset{}, err
	}
	return scene.LoadPBRTScene(path, opts...)
}

// parseCommonSceneParams parses the scene name and its image size, defaulting
// to the scene's own settings
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest, opts ...scene.BuildOption) (scene.Preset, error) {
	query := r.URL.Query()
	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "simple"
	}

	preset, err := s.loadScene(req.Scene, opts...)
	if err != nil {
		return scene.Preset{}, err
	}

	if req.Width, err = parseIntParam(query, "width", preset.Width, minImageSize, maxImageSize); err != nil {
		return scene.Preset{}, err
	}
	if req.Height, err = parseIntParam(query, "height", preset.Height, minImageSize, maxImageSize); err != nil {
		return scene.Preset{}, err
	}
	preset.Camera.AspectRatio = float32(req.Width) / float32(req.Height)
	return preset, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-tiled-raytracer/pkg/loaders"
	"github.com/df07/go-tiled-raytracer/pkg/renderer"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"simple scene", "simple", false},
		{"materials scene", "materials", false},
		{"book1 scene", "book1", false},
		{"transforms scene", "transforms", false},
		{"spheregrid scene", "spheregrid", false},

		// PBRT scenes (by name)
		{"simple-sphere PBRT", "simple-sphere", false},
		{"glass-and-boxes PBRT", "glass-and-boxes", false},

		// PBRT scenes (by path)
		{"direct PBRT path", "scenes/simple-sphere.pbrt", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"invalid PBRT path", "scenes/nonexistent.pbrt", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, err := createScene(tt.sceneType)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if preset.Scene != nil {
					t.Errorf("Expected no scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if preset.Scene == nil || preset.Scene.NumObjects() == 0 {
				t.Errorf("Expected objects for scene type '%s'", tt.sceneType)
			}
			if preset.Width <= 0 || preset.Height <= 0 {
				t.Errorf("Scene size should be positive, got %dx%d", preset.Width, preset.Height)
			}
		})
	}
}

func TestCreateScene_UnknownIsPresetError(t *testing.T) {
	if _, err := createScene("nonexistent"); !errors.Is(err, scene.ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
}

func TestTryLoadPBRTScene(t *testing.T) {
	dir := t.TempDir()
	broken := "LookAt 0 0 5  0 0 0  0 1 0\nWorldBegin\nShape \"sphere\"\nWorldEnd\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.pbrt"), []byte(broken), 0o644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	tests := []struct {
		name        string
		dir         string
		sceneType   string
		expectFound bool
		expectError bool
	}{
		{"simple-sphere by name", sceneDir, "simple-sphere", true, false},
		{"nonexistent PBRT", sceneDir, "nonexistent", false, false},
		{"built-in scene name", sceneDir, "book1", false, false}, // Built-in scenes have no PBRT file
		{"path is not a name", sceneDir, "../scenes/simple-sphere", false, false},
		{"malformed file", dir, "broken", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, found, err := tryLoadPBRTScene(tt.dir, tt.sceneType)
			if found != tt.expectFound {
				t.Errorf("tryLoadPBRTScene(%q) found = %v, want %v", tt.sceneType, found, tt.expectFound)
			}
			if tt.expectError {
				if !errors.Is(err, loaders.ErrInvalidScene) {
					t.Errorf("Expected ErrInvalidScene, got %v", err)
				}
				if !strings.Contains(err.Error(), "line 3") {
					t.Errorf("Expected the failing line in %q", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if found && preset.Scene == nil {
				t.Error("Expected a scene for a found file")
			}
		})
	}
}

func TestCreateScene_MalformedPBRTByName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.pbrt"), []byte("WorldBegin\nShape \"sphere\"\nWorldEnd\n"), 0o644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}
	saved := sceneDir
	sceneDir = dir
	t.Cleanup(func() { sceneDir = saved })

	_, err := createScene("broken")
	if !errors.Is(err, loaders.ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene, got %v", err)
	}
	if errors.Is(err, scene.ErrUnknownPreset) {
		t.Errorf("Expected the load error, not an unknown preset: %v", err)
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		sceneType string
		expected  string
	}{
		{"preset", "book1", filepath.Join("output", "book1")},
		{"PBRT name", "simple-sphere", filepath.Join("output", "simple-sphere")},
		{"PBRT file path", "scenes/simple-sphere.pbrt", filepath.Join("output", "simple-sphere")},
		{"nested PBRT path", "scenes/subdir/my-scene.pbrt", filepath.Join("output", "my-scene")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createOutputDir(tt.sceneType); got != tt.expected {
				t.Errorf("createOutputDir(%q) = %q, want %q", tt.sceneType, got, tt.expected)
			}
		})
	}
}

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		name      string
		flagValue int
		envValue  string
		expected  int
		expectErr bool
	}{
		{"flag wins", 3, "8", 3, false},
		{"environment", 0, "8", 8, false},
		{"auto", 0, "", 0, false},
		{"not a number", 0, "many", 0, true},
		{"negative", 0, "-2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workerCount(tt.flagValue, tt.envValue)
			if tt.expectErr {
				if !errors.Is(err, renderer.ErrInvalidOptions) {
					t.Errorf("Expected ErrInvalidOptions, got %v", err)
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Errorf("workerCount(%d, %q) = %d, %v; want %d", tt.flagValue, tt.envValue, got, err, tt.expected)
			}
		})
	}
}

func TestRenderSettings_Overrides(t *testing.T) {
	t.Setenv(workersEnv, "")
	preset, err := createScene("simple")
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}

	cfg, _, err := parseFlags([]string{"-width", "64", "-samples", "2", "-depth", "0", "-workers", "3"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	opts, camera, err := renderSettings(cfg, preset)
	if err != nil {
		t.Fatalf("renderSettings failed: %v", err)
	}

	if opts.Width != 64 || opts.Height != preset.Height {
		t.Errorf("Expected 64x%d, got %dx%d", preset.Height, opts.Width, opts.Height)
	}
	if opts.SamplesPerPixel != 2 || opts.MaxDepth != 0 || opts.NumWorkers != 3 {
		t.Errorf("Unexpected options %+v", opts)
	}
	if camera == nil {
		t.Error("Expected a camera")
	}

	cfg.tileSize = 0
	if _, _, err := renderSettings(cfg, preset); !errors.Is(err, renderer.ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions for tile size 0, got %v", err)
	}
}

func TestImageFormat(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"out.png", "png"},
		{"out.PNG", "png"},
		{"out.bmp", "bmp"},
		{"out.tif", "tiff"},
		{"out.tiff", "tiff"},
	}
	for _, tt := range tests {
		if got, err := imageFormat(tt.path); err != nil || got != tt.expected {
			t.Errorf("imageFormat(%q) = %q, %v; want %q", tt.path, got, err, tt.expected)
		}
	}
	if _, err := imageFormat("out.jpg"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestEncodeImage_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{10, 20, 30, 255})

	decoders := map[string]func(*bytes.Reader) (image.Image, error){
		"bmp":  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		"tiff": func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}

	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encodeImage(&buf, img, format); err != nil {
				t.Fatalf("encodeImage failed: %v", err)
			}
			decoded, err := decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			r, g, b, _ := decoded.At(2, 1).RGBA()
			if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
				t.Errorf("Expected (10, 20, 30), got (%d, %d, %d)", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestRun_RendersImage(t *testing.T) {
	t.Setenv(workersEnv, "")
	out := filepath.Join(t.TempDir(), "nested", "render.png")
	var stdout, stderr bytes.Buffer

	args := []string{"-scene", "simple", "-width", "24", "-height", "16", "-samples", "2", "-depth", "3", "-tile", "8", "-out", out}
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr.String())
	}

	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	defer file.Close()
	cfg, format, err := image.DecodeConfig(file)
	if err != nil || format != "png" || cfg.Width != 24 || cfg.Height != 16 {
		t.Errorf("Unexpected output %s %dx%d (%v)", format, cfg.Width, cfg.Height, err)
	}

	if !strings.Contains(stdout.String(), "Render saved as") {
		t.Errorf("Expected summary on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "BVH: 2 objects") {
		t.Errorf("Expected BVH statistics in the summary, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "render started") {
		t.Errorf("Expected structured log on stderr, got %q", stderr.String())
	}
}

func TestPrintSummary_WithoutBVH(t *testing.T) {
	preset, err := createScene("simple")
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}
	var out bytes.Buffer
	printSummary(&out, preset, renderer.DefaultOptions(), renderer.RenderStats{TotalTiles: 3}, "out.png")

	if strings.Contains(out.String(), "BVH") {
		t.Errorf("Expected no BVH line for a linear scan scene, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Render saved as out.png") {
		t.Errorf("Expected the output path, got %q", out.String())
	}
}

func TestRun_ListAndHelp(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"-list"}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run -list failed: %v", err)
	}
	for _, name := range scene.Names() {
		if !strings.Contains(stdout.String(), name) {
			t.Errorf("Expected %q in preset list", name)
		}
	}

	stdout.Reset()
	if err := run([]string{"-help"}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run -help failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "-samples") {
		t.Errorf("Expected flag documentation in help, got %q", stdout.String())
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown scene", []string{"-scene", "nonexistent"}},
		{"unsupported output", []string{"-out", "render.jpg"}},
		{"unknown flag", []string{"-bogus"}},
		{"zero tile size", []string{"-tile", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

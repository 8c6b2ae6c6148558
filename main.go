package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/renderer"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// workersEnv overrides the worker count when -workers is not given
const workersEnv = "RAYTRACER_WORKERS"

// sceneDir holds PBRT scenes that can be selected by name
var sceneDir = "scenes"

// config holds the parsed command line
type config struct {
	sceneType string
	width     int
	height    int
	samples   int
	depth     int
	tileSize  int
	workers   int
	seed      int64
	bvh       bool
	out       string
	verbose   bool
	list      bool
	help      bool
}

func parseFlags(args []string, output io.Writer) (config, *flag.FlagSet, error) {
	var cfg config
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.sceneType, "scene", "simple", "Scene preset name, or path to a .pbrt file")
	fs.IntVar(&cfg.width, "width", 0, "Image width (0 = scene default)")
	fs.IntVar(&cfg.height, "height", 0, "Image height (0 = scene default)")
	fs.IntVar(&cfg.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&cfg.depth, "depth", -1, "Maximum bounce depth (-1 = scene default)")
	fs.IntVar(&cfg.tileSize, "tile", renderer.DefaultOptions().TileSize, "Tile edge length in pixels")
	fs.IntVar(&cfg.workers, "workers", 0, "Number of workers (0 = "+workersEnv+" or CPU count)")
	fs.Int64Var(&cfg.seed, "seed", renderer.DefaultOptions().Seed, "Random seed")
	fs.BoolVar(&cfg.bvh, "bvh", true, "Build a bounding volume hierarchy over the scene")
	fs.StringVar(&cfg.out, "out", "", "Output file (.png, .bmp, .tif); default output/<scene>/render_<timestamp>.png")
	fs.BoolVar(&cfg.verbose, "v", false, "Log every finished tile")
	fs.BoolVar(&cfg.list, "list", false, "List the scene presets and exit")
	fs.BoolVar(&cfg.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return config{}, fs, err
	}
	return cfg, fs, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if cfg.help {
		printHelp(stdout, fs)
		return nil
	}
	if cfg.list {
		for _, info := range scene.List() {
			fmt.Fprintf(stdout, "  %-12s %s\n", info.Name, info.Description)
		}
		return nil
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var buildOpts []scene.BuildOption
	if cfg.bvh {
		buildOpts = append(buildOpts, scene.WithBVH())
	}
	preset, err := createScene(cfg.sceneType, buildOpts...)
	if err != nil {
		return err
	}

	opts, camera, err := renderSettings(cfg, preset)
	if err != nil {
		return err
	}
	opts.Logger = logger

	outPath := cfg.out
	if outPath == "" {
		outPath = filepath.Join(createOutputDir(cfg.sceneType),
			fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if _, err := imageFormat(outPath); err != nil {
		return err
	}

	// Ctrl+C stops the render and keeps the tiles finished so far
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, stats, renderErr := renderer.RenderImage(ctx, preset.Scene, camera, opts)
	if img == nil {
		return renderErr
	}
	if renderErr != nil {
		logger.Warn("saving partial image", "err", renderErr)
	}

	if err := saveImage(outPath, img); err != nil {
		return err
	}

	printSummary(stdout, preset, opts, stats, outPath)
	return renderErr
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Tiled Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.List() {
		fmt.Fprintf(w, "  %-12s %s\n", info.Name, info.Description)
	}
	fmt.Fprintln(w, "  <name>       scenes/<name>.pbrt")
	fmt.Fprintln(w, "  <path.pbrt>  any PBRT scene file")
}

// createScene resolves a preset name, a PBRT scene name or a .pbrt path
func createScene(sceneType string, opts ...scene.BuildOption) (scene.Preset, error) {
	if sceneType == "" {
		return scene.Preset{}, fmt.Errorf("scene name cannot be empty")
	}
	if strings.HasSuffix(strings.ToLower(sceneType), ".pbrt") {
		return scene.LoadPBRTScene(sceneType, opts...)
	}

	preset, err := scene.Lookup(sceneType, opts...)
	if err == nil {
		return preset, nil
	}
	pbrtPreset, found, loadErr := tryLoadPBRTScene(sceneDir, sceneType, opts...)
	if loadErr != nil {
		return scene.Preset{}, loadErr
	}
	if found {
		return pbrtPreset, nil
	}
	return scene.Preset{}, err
}

// tryLoadPBRTScene loads <dir>/<name>.pbrt. found is false when no such file
// exists; a file that exists but fails to load is reported as an error.
func tryLoadPBRTScene(dir, name string, opts ...scene.BuildOption) (preset scene.Preset, found bool, err error) {
	if name != filepath.Base(name) {
		return scene.Preset{}, false, nil
	}
	path := filepath.Join(dir, name+".pbrt")
	if _, statErr := os.Stat(path); statErr != nil {
		return scene.Preset{}, false, nil
	}
	preset, err = scene.LoadPBRTScene(path, opts...)
	if err != nil {
		return scene.Preset{}, true, err
	}
	return preset, true, nil
}

// createOutputDir returns output/<scene name> for presets and PBRT files
func createOutputDir(sceneType string) string {
	base := filepath.Base(sceneType)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "scene"
	}
	return filepath.Join("output", base)
}

// renderSettings merges the scene defaults with the command line
func renderSettings(cfg config, preset scene.Preset) (renderer.Options, *geometry.Camera, error) {
	opts := renderer.DefaultOptions()
	opts.Width = preset.Width
	opts.Height = preset.Height
	opts.SamplesPerPixel = preset.SamplesPerPixel
	opts.MaxDepth = preset.MaxDepth
	opts.TileSize = cfg.tileSize
	opts.Seed = cfg.seed

	if cfg.width > 0 {
		opts.Width = cfg.width
	}
	if cfg.height > 0 {
		opts.Height = cfg.height
	}
	if cfg.samples > 0 {
		opts.SamplesPerPixel = cfg.samples
	}
	if cfg.depth >= 0 {
		opts.MaxDepth = cfg.depth
	}

	workers, err := workerCount(cfg.workers, os.Getenv(workersEnv))
	if err != nil {
		return renderer.Options{}, nil, err
	}
	opts.NumWorkers = workers

	if err := opts.Validate(); err != nil {
		return renderer.Options{}, nil, err
	}

	cameraConfig := preset.Camera
	cameraConfig.AspectRatio = float32(opts.Width) / float32(opts.Height)
	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return renderer.Options{}, nil, err
	}
	return opts, camera, nil
}

// workerCount picks the flag value, then the environment, then 0 (CPU count)
func workerCount(flagValue int, envValue string) (int, error) {
	if flagValue > 0 {
		return flagValue, nil
	}
	if envValue == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(envValue)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q is not a worker count", renderer.ErrInvalidOptions, workersEnv, envValue)
	}
	return n, nil
}

// imageFormat returns the encoder name for an output path
func imageFormat(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "png", nil
	case ".bmp":
		return "bmp", nil
	case ".tif", ".tiff":
		return "tiff", nil
	default:
		return "", fmt.Errorf("unsupported output format %q", ext)
	}
}

// encodeImage writes img in the given format
func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func saveImage(path string, img image.Image) error {
	format, err := imageFormat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := encodeImage(file, img, format); err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return file.Close()
}

func printSummary(w io.Writer, preset scene.Preset, opts renderer.Options, stats renderer.RenderStats, path string) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Rendered %s at %dx%d in %v\n", preset.Name, opts.Width, opts.Height, stats.Elapsed.Round(time.Millisecond))
	p.Fprintf(w, "  %d tiles, %d pixels, %d samples (%.0f samples/s, parallelism %.1f)\n",
		stats.TotalTiles, stats.TotalPixels, stats.TotalSamples, stats.SamplesPerSecond(), stats.Parallelism())
	if bvh := preset.Scene.BVH(); bvh != nil {
		bs := bvh.Stats()
		p.Fprintf(w, "  BVH: %d objects, %d nodes, %d leaves, depth %d (avg %.1f)\n",
			bs.TotalObjects, bs.TotalNodes, bs.LeafNodes, bs.MaxDepth, bs.AvgDepth)
	}
	p.Fprintf(w, "Render saved as %s\n", path)
}

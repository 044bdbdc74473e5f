package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-montecarlo-raytracer/pkg/loaders"
	"github.com/df07/go-montecarlo-raytracer/pkg/output"
	"github.com/df07/go-montecarlo-raytracer/pkg/renderer"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType  string
	Width      int
	Height     int
	Samples    int
	Workers    int
	TileSize   int
	Seed       int64
	OutputFile string
}

func main() {
	log.SetFlags(0)

	config := Config{}
	flag.StringVar(&config.SceneType, "scene", "default", "Built-in scene name, or a .json/.pbrt scene file")
	flag.IntVar(&config.Width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&config.Height, "height", 0, "Image height in pixels (0 = scene default)")
	flag.IntVar(&config.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&config.Workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	flag.IntVar(&config.TileSize, "tile-size", renderer.DefaultTileSize, "Tile edge length in pixels")
	flag.Int64Var(&config.Seed, "seed", 0, "Random seed (0 = seed from the clock)")
	flag.StringVar(&config.OutputFile, "o", "", "Output file (.png, .jpg or .ppm); default output/<scene>/render_<timestamp>.png")
	list := flag.Bool("list", false, "List built-in scenes and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *list {
		for _, info := range scene.ListScenes() {
			fmt.Printf("  %-12s %s\n", info.Name, info.Description)
		}
		return
	}

	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	selectedScene, err := createScene(config.SceneType, config.Seed)
	if err != nil {
		log.Fatalf("could not create scene: %v", err)
	}

	renderConfig := buildRenderConfig(selectedScene, config)
	if err := renderConfig.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	selectedScene.SetImageSize(renderConfig.Width, renderConfig.Height)

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(createOutputDir(config.SceneType), fmt.Sprintf("render_%s.png", timestamp))
	}
	if _, err := output.WriterFor(filename); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Rendering scene %q (%d primitives, seed %d)\n",
		config.SceneType, selectedScene.GetPrimitiveCount(), config.Seed)

	// Ctrl-C stops the render between tiles
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	raytracer := renderer.NewRaytracer(selectedScene, renderConfig, renderer.NewDefaultLogger())
	buffer, stats, err := raytracer.Render(ctx)
	if err != nil {
		log.Fatalf("render failed: %v", err)
	}

	fmt.Printf("Samples: %d total, %.1f per pixel\n", stats.TotalSamples, stats.AverageSamples)

	if err := output.WriteFile(filename, buffer, renderConfig.Width, renderConfig.Height); err != nil {
		log.Fatalf("could not save render: %v", err)
	}
	fmt.Printf("Render saved as %s\n", filename)
}

func showHelp() {
	fmt.Println("Monte Carlo Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-12s %s\n", info.Name, info.Description)
	}
	fmt.Println("  <file>.json  JSON scene description")
	fmt.Println("  <file>.pbrt  PBRT scene (spheres, diffuse/conductor/dielectric materials)")
	fmt.Println()
	fmt.Println("Scene names that are not built in are looked up as scenes/<name>.json or scenes/<name>.pbrt")
}

// createScene resolves a built-in scene name, a scene file path, or the name
// of a file in scenes/
func createScene(sceneType string, seed int64) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("scene name cannot be empty")
	}

	if isSceneFile(sceneType) {
		return loaders.LoadScene(sceneType)
	}

	if s, err := scene.Create(sceneType, seed); err == nil {
		return s, nil
	}

	if s := tryLoadSceneFile(sceneType); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("unknown scene %q (use -list to see built-in scenes)", sceneType)
}

// tryLoadSceneFile looks for scenes/<name>.json, then scenes/<name>.pbrt
func tryLoadSceneFile(name string) *scene.Scene {
	for _, ext := range []string{".json", ".pbrt"} {
		path := filepath.Join("scenes", name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if s, err := loaders.LoadScene(path); err == nil {
			return s
		}
	}
	return nil
}

func isSceneFile(sceneType string) bool {
	ext := strings.ToLower(filepath.Ext(sceneType))
	return ext == ".json" || ext == ".pbrt"
}

// createOutputDir names the output directory after the scene, stripping any
// directory and extension from scene file paths
func createOutputDir(sceneType string) string {
	name := sceneType
	if isSceneFile(sceneType) {
		base := filepath.Base(sceneType)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join("output", name)
}

// buildRenderConfig applies command line overrides to the scene's recommended settings
func buildRenderConfig(s *scene.Scene, config Config) renderer.RenderConfig {
	renderConfig := renderer.DefaultRenderConfig()

	if s.SamplingConfig.Width > 0 {
		renderConfig.Width = s.SamplingConfig.Width
	}
	if s.SamplingConfig.Height > 0 {
		renderConfig.Height = s.SamplingConfig.Height
	}
	if s.SamplingConfig.SamplesPerPixel > 0 {
		renderConfig.SamplesPerPixel = s.SamplingConfig.SamplesPerPixel
	}

	// Overriding only one dimension keeps the scene's aspect ratio
	switch {
	case config.Width > 0 && config.Height > 0:
		renderConfig.Width, renderConfig.Height = config.Width, config.Height
	case config.Width > 0:
		renderConfig.Height = max(1, config.Width*renderConfig.Height/renderConfig.Width)
		renderConfig.Width = config.Width
	case config.Height > 0:
		renderConfig.Width = max(1, config.Height*renderConfig.Width/renderConfig.Height)
		renderConfig.Height = config.Height
	}

	if config.Samples > 0 {
		renderConfig.SamplesPerPixel = config.Samples
	}
	renderConfig.NumWorkers = config.Workers
	renderConfig.TileSize = config.TileSize
	renderConfig.Seed = config.Seed

	return renderConfig
}

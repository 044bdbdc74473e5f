package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync/atomic"
	"time"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/integrator"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// ErrInvalidRenderConfig is returned when image size or sample count is not positive
var ErrInvalidRenderConfig = errors.New("invalid render config")

// BytesPerPixel is the size of one RGBA8 pixel in the output buffer
const BytesPerPixel = 4

// RenderConfig contains rendering configuration
type RenderConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of jittered rays per pixel
	TileSize        int   // Edge length of a tile (0 = DefaultTileSize)
	NumWorkers      int   // Number of parallel workers (0 = use CPU count)
	Seed            int64 // Base seed for per-tile random sources
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 100,
		TileSize:        DefaultTileSize,
		NumWorkers:      0, // Auto-detect CPU count
		Seed:            42,
	}
}

// Validate reports whether the config describes a renderable image
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidRenderConfig, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidRenderConfig, c.SamplesPerPixel)
	}
	if c.TileSize < 0 {
		return fmt.Errorf("%w: tile size %d must not be negative", ErrInvalidRenderConfig, c.TileSize)
	}
	return nil
}

// Raytracer turns a scene into an RGBA8 pixel buffer
type Raytracer struct {
	scene      *scene.Scene
	config     RenderConfig
	integrator integrator.Integrator
	logger     core.Logger

	completedPixels atomic.Int64 // Pixels finished by the current render
}

// NewRaytracer creates a raytracer using path tracing. A nil logger writes to stdout.
func NewRaytracer(s *scene.Scene, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Raytracer{
		scene:      s,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(i integrator.Integrator) {
	rt.integrator = i
}

// Config returns the render configuration
func (rt *Raytracer) Config() RenderConfig {
	return rt.config
}

// Progress returns the fraction of pixels completed by the current render, in [0,1]
func (rt *Raytracer) Progress() float64 {
	total := rt.config.Width * rt.config.Height
	if total <= 0 {
		return 0
	}
	return float64(rt.completedPixels.Load()) / float64(total)
}

// Render renders the image in parallel tiles. The buffer holds Width*Height
// RGBA8 pixels, row-major with the top row first. Cancellation is checked
// between tiles; a cancelled render returns ctx.Err() and no buffer.
func (rt *Raytracer) Render(ctx context.Context) ([]byte, RenderStats, error) {
	if err := rt.config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	startTime := time.Now()
	rt.completedPixels.Store(0)

	buffer := make([]byte, rt.config.Width*rt.config.Height*BytesPerPixel)
	tiles := NewTileGrid(rt.config.Width, rt.config.Height, rt.config.TileSize, rt.config.Seed)

	pool := NewWorkerPool(rt, len(tiles), rt.config.NumWorkers)
	pool.Start(ctx)

	rt.logger.Printf("Rendering %dx%d at %d samples/pixel (%d tiles, %d workers)...\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, len(tiles), pool.GetNumWorkers())

	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Buffer: buffer})
	}

	stats := RenderStats{
		SamplesPerPixel: rt.config.SamplesPerPixel,
		NumTiles:        len(tiles),
		NumWorkers:      pool.GetNumWorkers(),
	}

	var renderErr error
	lastDecile := 0
	for i := 0; i < len(tiles); i++ {
		result, ok := pool.GetResult()
		if !ok {
			renderErr = fmt.Errorf("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}
		stats.add(result.Stats)

		if decile := int(rt.Progress() * 10); decile > lastDecile && renderErr == nil {
			lastDecile = decile
			rt.logger.Printf("  %3d%% (%d/%d tiles)\n", decile*10, i+1, len(tiles))
		}
	}
	pool.Stop()

	if renderErr != nil {
		rt.logger.Printf("Rendering stopped: %v\n", renderErr)
		return nil, RenderStats{}, renderErr
	}

	stats.finalize()
	stats.Duration = time.Since(startTime)
	rt.logger.Printf("Render completed in %v\n", stats.Duration)

	return buffer, stats, nil
}

// RenderWithSampler renders the whole image on the calling goroutine, drawing
// every random number from sampler. With a seeded sampler the output is
// reproducible byte for byte.
func (rt *Raytracer) RenderWithSampler(sampler core.Sampler) ([]byte, error) {
	if err := rt.config.Validate(); err != nil {
		return nil, err
	}

	rt.completedPixels.Store(0)
	buffer := make([]byte, rt.config.Width*rt.config.Height*BytesPerPixel)
	rt.renderBounds(image.Rect(0, 0, rt.config.Width, rt.config.Height), buffer, sampler)
	return buffer, nil
}

// renderBounds renders the pixels inside bounds into buffer. Buffer row y
// holds image row j = Height-1-y, so the top of the image comes first.
func (rt *Raytracer) renderBounds(bounds image.Rectangle, buffer []byte, sampler core.Sampler) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		j := rt.config.Height - 1 - y
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			var ps PixelStats
			rt.samplePixel(i, j, &ps, sampler)
			stats.TotalSamples += ps.SampleCount

			rgba := ToRGBA(ps.GetColor())
			offset := (y*rt.config.Width + i) * BytesPerPixel
			copy(buffer[offset:offset+BytesPerPixel], rgba[:])
		}
		rt.completedPixels.Add(int64(bounds.Dx()))
	}

	return stats
}

// samplePixel averages SamplesPerPixel jittered rays through pixel (i, j),
// where j counts up from the bottom row
func (rt *Raytracer) samplePixel(i, j int, ps *PixelStats, sampler core.Sampler) {
	camera := rt.scene.GetCamera()
	width := float64(rt.config.Width)
	height := float64(rt.config.Height)

	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		u := (float64(i) + sampler.Get1D()) / width
		v := (float64(j) + sampler.Get1D()) / height

		ray := camera.GetRay(u, v, sampler)
		ps.AddSample(rt.integrator.RayColor(ray, rt.scene, sampler))
	}
}

// ToRGBA converts a linear color to RGBA8 with gamma 2 correction. Channels
// are clamped to [0,1] after the square root (NaN becomes 0) and scaled by
// 255.99 with truncation. Alpha is always opaque.
func ToRGBA(color core.Vec3) [4]byte {
	corrected := color.Sqrt()
	return [4]byte{
		channelToByte(corrected.X),
		channelToByte(corrected.Y),
		channelToByte(corrected.Z),
		255,
	}
}

func channelToByte(c float64) byte {
	if math.IsNaN(c) || c <= 0 {
		return 0
	}
	if c >= 1 {
		c = 1
	}
	return byte(255.99 * c)
}

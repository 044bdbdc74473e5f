package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-montecarlo-raytracer/pkg/renderer"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// Limits on request parameters
const (
	maxImageSize = 2000
	maxSamples   = 10000
)

// Server handles web requests for the raytracer
type Server struct {
	port int
	mux  *http.ServeMux
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	s := &Server{port: port, mux: http.NewServeMux()}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)

	return s
}

// Handler returns the HTTP handler serving all API endpoints
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string `json:"scene"`   // Built-in scene name
	Width   int    `json:"width"`   // Image width (0 = scene default)
	Height  int    `json:"height"`  // Image height (0 = scene default)
	Samples int    `json:"samples"` // Samples per pixel (0 = scene default)
	Seed    int64  `json:"seed"`    // Render and layout seed
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	NumTiles       int     `json:"numTiles"`
	NumWorkers     int     `json:"numWorkers"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   int64(stats.TotalSamples),
		AverageSamples: stats.AverageSamples,
		NumTiles:       stats.NumTiles,
		NumWorkers:     stats.NumWorkers,
		ElapsedMs:      stats.Duration.Milliseconds(),
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListScenes())
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.Create(sceneName, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sceneObj.SamplingConfig
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"primitives":      sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": 1, "max": maxImageSize},
			"height":  map[string]int{"min": 1, "max": maxImageSize},
			"samples": map[string]int{"min": 1, "max": maxSamples},
		},
	})
}

// parseRenderRequest parses and validates request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	} else {
		req.Seed = renderer.DefaultRenderConfig().Seed
	}

	return req, nil
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

// setupScene creates the requested scene and a render config sized for it.
// The camera aspect ratio is updated to match the final image size.
func (s *Server) setupScene(req *RenderRequest) (*scene.Scene, renderer.RenderConfig, error) {
	sceneObj, err := scene.Create(req.Scene, req.Seed)
	if err != nil {
		return nil, renderer.RenderConfig{}, err
	}

	config := renderer.DefaultRenderConfig()
	config.Seed = req.Seed
	if sceneObj.SamplingConfig.Width > 0 && sceneObj.SamplingConfig.Height > 0 {
		config.Width = sceneObj.SamplingConfig.Width
		config.Height = sceneObj.SamplingConfig.Height
	}
	if sceneObj.SamplingConfig.SamplesPerPixel > 0 {
		config.SamplesPerPixel = sceneObj.SamplingConfig.SamplesPerPixel
	}
	if req.Width > 0 {
		config.Width = req.Width
	}
	if req.Height > 0 {
		config.Height = req.Height
	}
	if req.Samples > 0 {
		config.SamplesPerPixel = req.Samples
	}

	if err := config.Validate(); err != nil {
		return nil, renderer.RenderConfig{}, err
	}
	sceneObj.SetImageSize(config.Width, config.Height)
	return sceneObj, config, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-montecarlo-raytracer/pkg/output"
	"github.com/df07/go-montecarlo-raytracer/pkg/renderer"
)

// handleRender renders the requested scene and responds with a PNG image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, config, err := s.setupScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	raytracer := renderer.NewRaytracer(sceneObj, config, NewWebLogger(renderID, nil))

	buffer, stats, err := raytracer.Render(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("render failed: %v", err))
		return
	}

	// Encode fully before writing headers so failures still produce an error status
	var png bytes.Buffer
	if err := output.WritePNG(&png, buffer, config.Width, config.Height); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("encoding failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.WriteHeader(http.StatusOK)
	w.Write(png.Bytes())
}

// sseEvent is one server-sent event
type sseEvent struct {
	name string
	data interface{}
}

// completeEvent is the final event of a streamed render
type completeEvent struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// handleRenderStream renders the requested scene, streaming console output as
// server-sent events followed by a "complete" event carrying the image
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, config, err := s.setupScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// A single goroutine owns the response writer
	events := make(chan sseEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for event := range events {
			writeSSE(w, event)
		}
	}()

	// Forward console messages until the logger's channel is closed
	consoleChan := make(chan ConsoleMessage, 100)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		for msg := range consoleChan {
			events <- sseEvent{name: "console", data: msg}
		}
	}()

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	raytracer := renderer.NewRaytracer(sceneObj, config, NewWebLogger(renderID, consoleChan))
	buffer, stats, renderErr := raytracer.Render(r.Context())

	close(consoleChan)
	<-consoleDone

	if renderErr != nil {
		events <- sseEvent{name: "error", data: map[string]string{"error": renderErr.Error()}}
	} else if event, err := newCompleteEvent(buffer, config, stats); err != nil {
		events <- sseEvent{name: "error", data: map[string]string{"error": err.Error()}}
	} else {
		events <- sseEvent{name: "complete", data: event}
	}

	close(events)
	<-writerDone
}

func newCompleteEvent(buffer []byte, config renderer.RenderConfig, stats renderer.RenderStats) (completeEvent, error) {
	var png bytes.Buffer
	if err := output.WritePNG(&png, buffer, config.Width, config.Height); err != nil {
		return completeEvent{}, err
	}
	return completeEvent{
		Width:     config.Width,
		Height:    config.Height,
		ImageData: base64.StdEncoding.EncodeToString(png.Bytes()),
		Stats:     newStats(stats),
	}, nil
}

// writeSSE writes one event and flushes it to the client
func writeSSE(w http.ResponseWriter, event sseEvent) {
	data, err := json.Marshal(event.data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.name, data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// FrameUpdate is one progressive frame sent via SSE
type FrameUpdate struct {
	Frame       int        `json:"frame"`
	TotalFrames int        `json:"totalFrames,omitempty"` // Zero for open-ended sessions
	ImageData   string     `json:"imageData"`             // Base64 encoded PNG
	Stats       FrameStats `json:"stats"`
	IsComplete  bool       `json:"isComplete"`
	ElapsedMs   int64      `json:"elapsedMs"`
}

// FrameStats represents render statistics for one frame
type FrameStats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Pixels           int     `json:"pixels"`
	Samples          int     `json:"samples"`
	Tiles            int     `json:"tiles"`
	Workers          int     `json:"workers"`
	FrameMs          float64 `json:"frameMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	Primitives       int     `json:"primitives"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

func newFrameStats(stats renderer.FrameStats, primitives int) FrameStats {
	return FrameStats{
		Width:            stats.Width,
		Height:           stats.Height,
		Pixels:           stats.Pixels,
		Samples:          stats.Samples,
		Tiles:            stats.Tiles,
		Workers:          stats.Workers,
		FrameMs:          float64(stats.Duration.Microseconds()) / 1000,
		SamplesPerSecond: stats.SamplesPerSecond(),
		Primitives:       primitives,
	}
}

// handleRender renders a fixed number of frames and streams each one via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine; done closes once it has drained the channel
	sseEventChan := make(chan SSEEvent, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-done
	}()

	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), s.logger, consoleChan)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	defer func() {
		close(consoleChan)
		<-consoleDone
	}()

	sceneObj, err := s.loadScene(req.Scene)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}
	cam := s.camera(req, sceneObj.Camera)
	width, height := cam.Size()

	rt := renderer.New(s.settings(req), webLogger)
	defer rt.Close()
	rt.SetImage(renderer.NewImage(width, height))

	webLogger.Infof("rendering %q at %dx%d, %d primitives", sceneObj.Name, width, height, sceneObj.PrimitiveCount())

	startTime := time.Now()
	frameChan, errChan := renderer.RenderProgressive(ctx, rt, sceneObj, cam, renderer.ProgressiveOptions{Frames: req.Frames})
	primitives := sceneObj.PrimitiveCount()

	for result := range frameChan {
		imageData, err := imageToBase64PNG(result.Image)
		if err != nil {
			cancel()
			s.handleError(ctx, sseEventChan, fmt.Sprintf("failed to encode image: %v", err))
			break
		}

		update := FrameUpdate{
			Frame:       result.Frame,
			TotalFrames: req.Frames,
			ImageData:   imageData,
			Stats:       newFrameStats(result.Stats, primitives),
			IsComplete:  result.IsLast,
			ElapsedMs:   time.Since(startTime).Milliseconds(),
		}
		s.sendEvent(ctx, sseEventChan, "frame", update)
	}

	if err := <-errChan; err != nil {
		if ctx.Err() == nil {
			s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		}
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for event := range sseEventChan {
		// Keep draining after a disconnect so senders never block
		if ctx.Err() != nil {
			continue
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards renderer log lines as console events
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			s.logger.Errorf("error marshaling console message: %v", err)
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

// sendEvent marshals v and queues it, giving up if the client went away
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Errorf("error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Request limits shared by every endpoint that builds a camera
const (
	minWidth     = 16
	maxWidth     = 2000
	minAspect    = 0.25
	maxAspect    = 4.0
	maxSamples   = 1000
	maxBounces   = 64
	maxFrames    = 10000
	maxSessions  = 8
	shutdownWait = 5 * time.Second
)

// Config holds the server options
type Config struct {
	Port      int
	SceneDir  string            // Directory searched for file:<name> scenes
	StaticDir string            // Optional front end served at /
	Settings  renderer.Settings // Base render settings; requests override samples and bounces
}

// Server handles web requests for the path tracer
type Server struct {
	config Config
	logger log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	nextID   int
}

// NewServer creates a new web server
func NewServer(config Config) *Server {
	return &Server{
		config:   config,
		logger:   log.New("web"),
		sessions: make(map[string]*Session),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene       string  `json:"scene"`       // Scene id (e.g., "cornell-box" or "file:room")
	Width       int     `json:"width"`       // Image width; 0 keeps the scene's camera width
	AspectRatio float64 `json:"aspectRatio"` // Width / height; 0 keeps the scene's aspect
	Samples     int     `json:"samples"`     // Samples per pixel per frame
	Bounces     int     `json:"bounces"`     // Maximum bounces
	Frames      int     `json:"frames"`      // Frames to accumulate
	Jitter      bool    `json:"jitter"`
	Accumulate  bool    `json:"accumulate"`
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.config.StaticDir != "" {
		if _, err := os.Stat(s.config.StaticDir); err == nil {
			mux.Handle("GET /", http.FileServer(http.Dir(s.config.StaticDir)))
		}
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionState)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/stream", s.handleSessionStream)
	mux.HandleFunc("POST /api/sessions/{id}/camera", s.handleSessionCamera)
	mux.HandleFunc("POST /api/sessions/{id}/settings", s.handleSessionSettings)
	mux.HandleFunc("PUT /api/sessions/{id}/materials/{index}", s.handleSessionMaterial)
	mux.HandleFunc("PUT /api/sessions/{id}/shapes/{index}", s.handleSessionShape)

	return mux
}

// Start serves until ctx is cancelled, then shuts down and closes every session
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	httpServer := &http.Server{Addr: addr, Handler: s.Handler()}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Noticef("starting web server on http://localhost%s", addr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		s.closeSessions()
		return err
	case <-ctx.Done():
	}

	s.logger.Notice("shutting down web server")
	s.closeSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.config.SceneDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default camera and settings for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "default"
	}

	sceneObj, err := s.loadScene(sceneID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := s.baseSettings()
	response := map[string]interface{}{
		"scene":      sceneID,
		"name":       sceneObj.Name,
		"camera":     sceneObj.Camera,
		"shapes":     len(sceneObj.Shapes),
		"materials":  sceneObj.Materials,
		"primitives": sceneObj.PrimitiveCount(),
		"defaults": map[string]interface{}{
			"samples":    settings.SamplesPerPixel,
			"bounces":    settings.MaxBounces,
			"jitter":     settings.Jitter,
			"accumulate": settings.Accumulate,
		},
		"limits": map[string]interface{}{
			"width":       map[string]int{"min": minWidth, "max": maxWidth},
			"aspectRatio": map[string]float64{"min": minAspect, "max": maxAspect},
			"samples":     map[string]int{"min": 1, "max": maxSamples},
			"bounces":     map[string]int{"min": 0, "max": maxBounces},
			"frames":      map[string]int{"min": 1, "max": maxFrames},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// parseRenderRequest parses and validates the query parameters shared by
// render, inspect and session requests
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	settings := s.baseSettings()
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.AspectRatio, err = parseFloatParam(values, "aspectRatio", 0, minAspect, maxAspect); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", settings.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Bounces, err = parseIntParam(values, "bounces", settings.MaxBounces, 0, maxBounces); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(values, "frames", 16, 1, maxFrames); err != nil {
		return nil, err
	}
	if req.Jitter, err = parseBoolParam(values, "jitter", settings.Jitter); err != nil {
		return nil, err
	}
	if req.Accumulate, err = parseBoolParam(values, "accumulate", settings.Accumulate); err != nil {
		return nil, err
	}

	return req, nil
}

// settings applies the request overrides to the server's base settings
func (s *Server) settings(req *RenderRequest) renderer.Settings {
	settings := s.baseSettings()
	settings.SamplesPerPixel = req.Samples
	settings.MaxBounces = req.Bounces
	settings.Jitter = req.Jitter
	settings.Accumulate = req.Accumulate
	return settings
}

// baseSettings returns the configured settings, or the defaults if none were given
func (s *Server) baseSettings() renderer.Settings {
	if s.config.Settings == (renderer.Settings{}) {
		return renderer.DefaultSettings()
	}
	return s.config.Settings
}

// camera builds the scene's preferred camera with the request's size overrides
func (s *Server) camera(req *RenderRequest, cfg scene.CameraConfig) *renderer.PerspectiveCamera {
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.AspectRatio > 0 {
		cfg.AspectRatio = req.AspectRatio
	}
	return renderer.NewCameraFromConfig(cfg)
}

// loadScene builds a fresh scene so every render owns its own copy
func (s *Server) loadScene(id string) (*scene.Scene, error) {
	return loaders.Resolve(id, s.config.SceneDir)
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

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

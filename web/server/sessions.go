package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// CameraRequest either replays one navigation input or places the camera
// directly when Position is set
type CameraRequest struct {
	Input    *renderer.Input `json:"input"`
	Position *core.Vec3      `json:"position"`
	Forward  *core.Vec3      `json:"forward"`
}

// SettingsRequest changes a subset of a session's render settings
type SettingsRequest struct {
	Samples    *int  `json:"samples"`
	Bounces    *int  `json:"bounces"`
	Accumulate *bool `json:"accumulate"`
	Jitter     *bool `json:"jitter"`
}

// ShapeRequest moves a primitive so its origin lands on Origin
type ShapeRequest struct {
	Origin core.Vec3 `json:"origin"`
}

// handleCreateSession starts an interactive render. It takes the same query
// parameters as /api/render; frames caps how many frames accumulate after
// each edit before the session idles.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sceneObj, err := s.loadScene(req.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	if len(s.sessions) >= maxSessions {
		s.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("at most %d sessions may run at once", maxSessions))
		return
	}
	s.nextID++
	id := fmt.Sprintf("session-%d", s.nextID)
	sess := newSession(id, sceneObj, s.camera(req, sceneObj.Camera), s.settings(req), req.Frames, s.logger)
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Infof("started %s for scene %q", id, sceneObj.Name)
	writeJSON(w, http.StatusCreated, sess.State())
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Unknown session: "+id)
		return
	}
	sess.Close()
	s.logger.Infof("closed %s", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionStream streams frame and console events until the client
// disconnects or the session is closed
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	s.setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	events := sess.Subscribe()
	defer sess.Unsubscribe(events)

	// A paused session will not render again until edited; show the last frame
	sess.mu.Lock()
	sess.notify()
	if sess.rendered >= sess.maxFrames && sess.rendered > 0 {
		sess.rendered--
	}
	sess.mu.Unlock()

	for {
		select {
		case event := <-events:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-sess.Done():
			fmt.Fprintf(w, "event: complete\ndata: session closed\n\n")
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleSessionCamera(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req CameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid camera request: "+err.Error())
		return
	}

	var moved bool
	switch {
	case req.Position != nil:
		forward := core.Vec3{}
		if req.Forward != nil {
			forward = *req.Forward
		}
		moved = sess.SetCamera(*req.Position, forward)
	case req.Input != nil:
		moved = sess.ApplyInput(*req.Input)
	default:
		writeError(w, http.StatusBadRequest, "camera request needs input or position")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"moved": moved, "state": sess.State()})
}

func (s *Server) handleSessionSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings request: "+err.Error())
		return
	}

	if req.Samples != nil && (*req.Samples < 1 || *req.Samples > maxSamples) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("samples must be between 1 and %d", maxSamples))
		return
	}
	if req.Bounces != nil && (*req.Bounces < 0 || *req.Bounces > maxBounces) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("bounces must be between 0 and %d", maxBounces))
		return
	}

	sess.UpdateSettings(func(settings *renderer.Settings) {
		if req.Samples != nil {
			settings.SamplesPerPixel = *req.Samples
		}
		if req.Bounces != nil {
			settings.MaxBounces = *req.Bounces
		}
		if req.Accumulate != nil {
			settings.Accumulate = *req.Accumulate
		}
		if req.Jitter != nil {
			settings.Jitter = *req.Jitter
		}
	})
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleSessionMaterial(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid material index")
		return
	}

	var material scene.Material
	if err := json.NewDecoder(r.Body).Decode(&material); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid material: "+err.Error())
		return
	}

	if err := sess.SetMaterial(index, material); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scene.ErrMaterialIndex) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleSessionShape(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shape index")
		return
	}

	var req ShapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shape request: "+err.Error())
		return
	}

	if err := sess.MoveShape(index, req.Origin); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.PathValue("id")
	sess, ok := s.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown session: "+id)
	}
	return sess, ok
}

// closeSessions stops every running session
func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

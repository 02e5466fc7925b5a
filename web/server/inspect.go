package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	renderer.PixelInspection
	ShapeIndex int    `json:"shapeIndex"` // -1 on a miss
	Session    string `json:"session,omitempty"`
}

// handleInspect traces the primary ray under a pixel. x and y are in image
// coordinates with y counting down from the top row, as the browser reports
// them. With a session parameter the session's live scene and camera are
// inspected; otherwise a fresh copy of the requested scene is used.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	x, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	y, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	var (
		result  renderer.PixelInspection
		session string
	)
	if id := query.Get("session"); id != "" {
		sess, ok := s.session(id)
		if !ok {
			writeError(w, http.StatusNotFound, "Unknown session: "+id)
			return
		}
		result, err = sess.Inspect(x, y)
		session = id
	} else {
		req, parseErr := s.parseRenderRequest(query)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+parseErr.Error())
			return
		}
		sceneObj, loadErr := s.loadScene(req.Scene)
		if loadErr != nil {
			writeError(w, http.StatusBadRequest, loadErr.Error())
			return
		}
		cam := s.camera(req, sceneObj.Camera)
		_, height := cam.Size()

		rt := renderer.New(s.settings(req), s.logger)
		result, err = rt.Inspect(sceneObj, cam, x, height-1-y)
	}

	if errors.Is(err, renderer.ErrPixelOutOfRange) {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := InspectResponse{
		PixelInspection: result,
		ShapeIndex:      -1,
		Session:         session,
	}
	if result.Hit {
		response.ShapeIndex = result.Payload.ObjectIndex
	}
	writeJSON(w, http.StatusOK, response)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/yogkalp/internal/app"
	"github.com/ayusman/yogkalp/internal/landmark"
	"github.com/ayusman/yogkalp/internal/pose"
)

// SessionHandler drives the capture workflow and the target pose.
type SessionHandler struct {
	app *app.App
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/session, /api/session/capture, /api/session/batch and
// /api/session/target.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.State(time.Now()))
	case path == "capture" && r.Method == http.MethodPost:
		h.capture(w, r)
	case path == "batch" && r.Method == http.MethodPost:
		h.save(w, r)
	case path == "batch" && r.Method == http.MethodDelete:
		h.app.ClearBatch()
		w.WriteHeader(http.StatusNoContent)
	case path == "target" && r.Method == http.MethodPut:
		h.target(w, r)
	case path == "" || path == "capture" || path == "batch" || path == "target":
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type captureRequest struct {
	Body []landmark.Landmark `json:"body"`
}

type captureResponse struct {
	BatchSize int `json:"batch_size"`
}

type saveBatchRequest struct {
	Name string `json:"name"`
}

type targetRequest struct {
	Name string `json:"name"`
}

// capture handles POST /api/session/capture.
func (h *SessionHandler) capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	size, err := h.app.Capture(landmark.Frame{Body: req.Body})
	if err != nil {
		if errors.Is(err, app.ErrNotVisible) {
			writeError(w, http.StatusUnprocessableEntity, "Body not visible")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to capture sample")
		return
	}

	writeJSON(w, http.StatusCreated, captureResponse{BatchSize: size})
}

// save handles POST /api/session/batch and stores the batch as a pose.
func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request) {
	var req saveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	avg, err := h.app.SaveBatch(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "Name is required")
		case errors.Is(err, pose.ErrEmptyBatch):
			writeError(w, http.StatusConflict, "No samples captured")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to save pose")
		}
		return
	}

	writeJSON(w, http.StatusCreated, poseResponse{Name: strings.TrimSpace(req.Name), Features: avg})
}

// target handles PUT /api/session/target. An empty name clears the target.
func (h *SessionHandler) target(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.app.SetTarget(req.Name); err != nil {
		if errors.Is(err, pose.ErrPoseNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to set target")
		return
	}

	writeJSON(w, http.StatusOK, h.app.State(time.Now()))
}

// Package api provides HTTP API handlers for the yogkalp pose service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/yogkalp/internal/app"
	"github.com/ayusman/yogkalp/internal/pose"
	"github.com/ayusman/yogkalp/internal/store"
)

// PoseRecords looks up the stored record of a pose.
type PoseRecords interface {
	GetByName(ctx context.Context, name string) (*store.Pose, error)
}

// PoseHandler handles HTTP requests for reference pose resources.
type PoseHandler struct {
	app     *app.App
	records PoseRecords
}

// NewPoseHandler creates a new PoseHandler over the application's library.
// When records is not nil a single pose also reports its sample count and
// timestamps.
func NewPoseHandler(a *app.App, records PoseRecords) *PoseHandler {
	return &PoseHandler{app: a, records: records}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *PoseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/poses or /api/poses/{name}
	path := strings.TrimPrefix(r.URL.Path, "/api/poses")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	name := path
	if strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Response types

type poseResponse struct {
	Name      string      `json:"name"`
	Features  pose.Vector `json:"features"`
	Samples   int         `json:"samples,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

type listPosesResponse struct {
	Poses []poseResponse `json:"poses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/poses and returns every reference pose by name.
func (h *PoseHandler) list(w http.ResponseWriter, r *http.Request) {
	library := h.app.Library()
	snapshot := library.Snapshot()

	response := listPosesResponse{
		Poses: make([]poseResponse, 0, len(snapshot)),
	}
	for _, name := range library.Names() {
		features, ok := snapshot[name]
		if !ok {
			continue
		}
		response.Poses = append(response.Poses, poseResponse{Name: name, Features: features})
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/poses/{name}.
func (h *PoseHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	features, ok := h.app.Library().Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Pose not found")
		return
	}

	response := poseResponse{Name: name, Features: features}
	if h.records != nil {
		// A pose saved moments ago may not be stored yet.
		if record, err := h.records.GetByName(r.Context(), name); err == nil {
			response.Samples = record.Samples
			response.CreatedAt = &record.CreatedAt
			response.UpdatedAt = &record.UpdatedAt
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/poses/{name}.
func (h *PoseHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.app.DeletePose(r.Context(), name); err != nil {
		if errors.Is(err, pose.ErrPoseNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete pose")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

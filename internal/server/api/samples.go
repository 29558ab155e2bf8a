package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/yogkalp/internal/app"
	"github.com/ayusman/yogkalp/internal/pose"
	"github.com/ayusman/yogkalp/internal/store"
)

// SampleSource lists the raw samples a reference pose was averaged from.
type SampleSource interface {
	ListSamples(ctx context.Context, name string) ([]pose.Vector, error)
}

// SamplesHandler handles HTTP requests for pose sample batches.
type SamplesHandler struct {
	app    *app.App
	source SampleSource
}

// NewSamplesHandler creates a new SamplesHandler. A nil source disables
// listing recorded samples.
func NewSamplesHandler(a *app.App, source SampleSource) *SamplesHandler {
	return &SamplesHandler{app: a, source: source}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/poses/{name}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/poses/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "samples" || parts[0] == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	name := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, name)
	case http.MethodPost:
		h.create(w, r, name)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Request types

type createSamplesRequest struct {
	Samples []pose.Vector `json:"samples"`
}

// Response types

type listSamplesResponse struct {
	Name    string        `json:"name"`
	Samples []pose.Vector `json:"samples"`
}

type createSamplesResponse struct {
	Name     string      `json:"name"`
	Features pose.Vector `json:"features"`
	Samples  int         `json:"samples"`
}

// list handles GET /api/poses/{name}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, name string) {
	if h.source == nil {
		writeError(w, http.StatusNotImplemented, "Samples are not recorded by this store")
		return
	}

	samples, err := h.source.ListSamples(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	writeJSON(w, http.StatusOK, listSamplesResponse{Name: name, Samples: samples})
}

// create handles POST /api/poses/{name}/samples. The batch is averaged into
// the reference pose, replacing any earlier pose of that name.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, name string) {
	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}

	avg, err := h.app.AddBatch(r.Context(), name, req.Samples)
	if err != nil {
		switch {
		case errors.Is(err, pose.ErrInconsistentBatch):
			writeError(w, http.StatusBadRequest, "Samples must share the same feature names")
		case errors.Is(err, pose.ErrInvalidFeature):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "Name is required")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to save samples")
		}
		return
	}

	writeJSON(w, http.StatusCreated, createSamplesResponse{
		Name:     strings.TrimSpace(name),
		Features: avg,
		Samples:  len(req.Samples),
	})
}

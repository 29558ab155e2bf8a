package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/yogkalp/internal/app"
	"github.com/ayusman/yogkalp/internal/feedback"
	"github.com/ayusman/yogkalp/internal/landmark"
	"github.com/ayusman/yogkalp/internal/pose"
)

// ScoreHandler scores a single body or feature vector against the library.
type ScoreHandler struct {
	app *app.App
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(a *app.App) *ScoreHandler {
	return &ScoreHandler{app: a}
}

type scoreRequest struct {
	// Body is a full landmark set; it takes precedence over Features.
	Body     []landmark.Landmark `json:"body,omitempty"`
	Features pose.Vector         `json:"features,omitempty"`
	// Pose scores against one named pose instead of searching for the best.
	Pose string `json:"pose,omitempty"`
}

type scoreResponse struct {
	Visible   bool        `json:"visible"`
	Missing   []int       `json:"missing,omitempty"`
	Features  pose.Vector `json:"features,omitempty"`
	Match     *pose.Match `json:"match,omitempty"`
	Confident bool        `json:"confident"`
	Level     pose.Level  `json:"level,omitempty"`
	Summary   string      `json:"summary,omitempty"`
}

// ServeHTTP handles POST /api/score.
func (h *ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	response := scoreResponse{Features: req.Features}

	switch {
	case len(req.Body) > 0:
		frame := landmark.Frame{Body: req.Body}
		if !frame.HasBody() {
			writeError(w, http.StatusBadRequest, "Body must hold 33 landmarks")
			return
		}
		gate := h.app.Gate()
		response.Missing = gate.Missing(req.Body)
		if len(response.Missing) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, response)
			return
		}
		response.Features = pose.Extract(req.Body)
	case len(req.Features) == 0:
		writeError(w, http.StatusBadRequest, "Body or features are required")
		return
	default:
		if err := req.Features.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	response.Visible = true

	if req.Pose != "" {
		accuracy, err := h.app.Library().Score(response.Features, req.Pose)
		switch {
		case errors.Is(err, pose.ErrPoseNotFound):
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		case errors.Is(err, pose.ErrIncomparable):
			writeError(w, http.StatusUnprocessableEntity, "No comparable features")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Failed to score pose")
			return
		}
		response.Match = &pose.Match{Name: req.Pose, Accuracy: accuracy}
	} else if match, ok := h.app.Library().BestMatch(response.Features); ok {
		response.Match = &match
	}

	if response.Match != nil {
		response.Confident = response.Match.Accuracy > h.app.MatchThreshold()
		response.Level = pose.LevelOf(response.Match.Accuracy)
		response.Summary = feedback.Summary(response.Level)
	}

	writeJSON(w, http.StatusOK, response)
}

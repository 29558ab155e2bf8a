package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/yogkalp/internal/store"
)

// SettingsStore persists settings applied on the next start.
type SettingsStore interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// SettingsHandler handles HTTP requests for persisted settings.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// validators checks the value of each known setting.
var validators = map[string]func(string) bool{
	store.SettingMatchThreshold: func(v string) bool {
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && f >= 0 && f <= 100
	},
	store.SettingPalmTrigger: func(v string) bool {
		_, err := strconv.ParseBool(v)
		return err == nil
	},
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/settings or /api/settings/{key}
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/settings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.list(w, r)
		return
	}

	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.update(w, r, path)
}

type updateSettingRequest struct {
	Value string `json:"value"`
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// list handles GET /api/settings.
func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: settings})
}

// update handles PUT /api/settings/{key}.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request, key string) {
	valid, ok := validators[key]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}

	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !valid(req.Value) {
		writeError(w, http.StatusBadRequest, "Invalid value")
		return
	}

	if err := h.store.Set(r.Context(), key, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{key: req.Value})
}

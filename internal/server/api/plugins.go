package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/yogkalp/internal/plugin"
)

// PluginHandler lists the discovered feedback plugins.
type PluginHandler struct {
	manager *plugin.Manager
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(m *plugin.Manager) *PluginHandler {
	return &PluginHandler{manager: m}
}

type listPluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

// ServeHTTP handles GET /api/plugins and GET /api/plugins/{name}.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/plugins"), "/")
	if name == "" {
		plugins := h.manager.List()
		response := listPluginsResponse{Plugins: make([]plugin.Manifest, 0, len(plugins))}
		for _, p := range plugins {
			response.Plugins = append(response.Plugins, p.Manifest)
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	p, err := h.manager.Get(name)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get plugin")
		return
	}
	writeJSON(w, http.StatusOK, p.Manifest)
}

// Package plugin discovers external feedback plugins and runs them with
// pose events.
package plugin

import "encoding/json"

// Event names a moment in the pose session that plugins can subscribe to.
type Event string

const (
	// EventFeedback fires when the coach has a form message for the user.
	EventFeedback Event = "feedback"
	// EventPoseSaved fires after a reference pose is averaged and stored.
	EventPoseSaved Event = "pose_saved"
	// EventCapture fires when a sample is added to the capture batch.
	EventCapture Event = "capture"
)

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Events       []Event         `json:"events"`
	Config       json.RawMessage `json:"config,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request represents an event sent to a plugin.
type Request struct {
	Event    Event           `json:"event"`
	Pose     string          `json:"pose,omitempty"`
	Level    string          `json:"level,omitempty"`
	Accuracy float64         `json:"accuracy,omitempty"`
	Message  string          `json:"message,omitempty"`
	Samples  int             `json:"samples,omitempty"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribed to event.
func (p *Plugin) Handles(event Event) bool {
	for _, e := range p.Manifest.Events {
		if e == event {
			return true
		}
	}
	return false
}

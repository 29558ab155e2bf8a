// Package main provides a plugin that announces pose feedback.
// It reports the text it would speak and, when enabled, hands it to the
// system speech command.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event    string          `json:"event"`
	Pose     string          `json:"pose"`
	Level    string          `json:"level"`
	Accuracy float64         `json:"accuracy"`
	Message  string          `json:"message"`
	Samples  int             `json:"samples"`
	Config   json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config controls speech output.
type Config struct {
	Speak   bool   `json:"speak"`
	Command string `json:"command"` // defaults to "say"
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	text, err := announcement(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	if cfg.Speak {
		if err := speak(cfg.Command, text); err != nil {
			writeErrorResponse(fmt.Sprintf("speech failed: %v", err))
			return
		}
	}

	writeSuccessResponse(text)
}

// announcement returns the sentence for an event.
func announcement(req Request) (string, error) {
	switch req.Event {
	case "feedback":
		if req.Message == "" {
			return "", fmt.Errorf("feedback event without message")
		}
		return req.Message, nil
	case "pose_saved":
		if req.Pose == "" {
			return "", fmt.Errorf("pose_saved event without pose")
		}
		return fmt.Sprintf("Saved %s from %d samples.", req.Pose, req.Samples), nil
	default:
		return "", fmt.Errorf("unknown event: %s", req.Event)
	}
}

// speak runs the speech command with text as its only argument.
func speak(command, text string) error {
	if command == "" {
		command = "say"
	}
	cmd := exec.Command(command, text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: false,
		Error:   errMsg,
	})
}

// writeSuccessResponse writes a success response carrying the announced text.
func writeSuccessResponse(text string) {
	data, _ := json.Marshal(map[string]string{"text": text})
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: true,
		Data:    data,
	})
}

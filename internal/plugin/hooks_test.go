package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// installScript writes a script plugin with a manifest into root.
func installScript(t *testing.T, root string, manifest Manifest, script string) {
	t.Helper()

	dir := writeManifest(t, root, manifest)
	if err := os.WriteFile(filepath.Join(dir, manifest.Executable), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
}

func TestHooks_Fire(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "received")

	// Each subscriber appends the request it got to a shared file
	record := "cat >> " + out + "\necho >> " + out + "\necho '{\"success\":true}'\n"
	installScript(t, root, Manifest{
		Name:       "first",
		Executable: "run.sh",
		Events:     []Event{EventFeedback},
		Config:     json.RawMessage(`{"speak":false}`),
	}, record)
	installScript(t, root, Manifest{Name: "second", Executable: "run.sh", Events: []Event{EventFeedback}}, record)
	installScript(t, root, Manifest{Name: "other", Executable: "run.sh", Events: []Event{EventCapture}}, record)

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	hooks := NewHooks(manager, NewExecutor(5*time.Second), zaptest.NewLogger(t).Sugar())

	err := hooks.Fire(context.Background(), &Request{Event: EventFeedback, Pose: "tree", Message: "hold still"})
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 deliveries, got %d: %q", len(lines), data)
	}

	var first, second Request
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("failed to decode delivery: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("failed to decode delivery: %v", err)
	}

	if first.Pose != "tree" || first.Message != "hold still" {
		t.Errorf("unexpected request %+v", first)
	}
	if string(first.Config) != `{"speak":false}` {
		t.Errorf("expected the manifest config, got %s", first.Config)
	}
	if len(second.Config) != 0 {
		t.Errorf("expected no config for the second plugin, got %s", second.Config)
	}
}

func TestHooks_Fire_CombinesFailures(t *testing.T) {
	root := t.TempDir()
	installScript(t, root, Manifest{Name: "crash", Executable: "run.sh", Events: []Event{EventPoseSaved}}, "exit 3\n")
	installScript(t, root, Manifest{Name: "refuse", Executable: "run.sh", Events: []Event{EventPoseSaved}},
		"echo '{\"success\":false,\"error\":\"busy\"}'\n")
	installScript(t, root, Manifest{Name: "fine", Executable: "run.sh", Events: []Event{EventPoseSaved}},
		"echo '{\"success\":true}'\n")

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	core, logs := observer.New(zap.WarnLevel)
	hooks := NewHooks(manager, NewExecutor(5*time.Second), zap.New(core).Sugar())

	err := hooks.Fire(context.Background(), &Request{Event: EventPoseSaved, Pose: "tree"})
	if logs.Len() != 0 {
		t.Errorf("failures are reported to the caller, not logged, got %v", logs.All())
	}
	if err == nil {
		t.Fatal("expected an error")
	}

	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 combined errors, got %d: %v", len(errs), err)
	}
	if !strings.Contains(errs[0].Error(), "crash") || !strings.Contains(errs[1].Error(), "busy") {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestHooks_NoSubscribers(t *testing.T) {
	manager := NewManager(t.TempDir(), nil)
	hooks := NewHooks(manager, NewExecutor(time.Second), nil)

	if err := hooks.Fire(context.Background(), &Request{Event: EventCapture}); err != nil {
		t.Errorf("Fire() error = %v", err)
	}

	var nilHooks *Hooks
	if err := nilHooks.Fire(context.Background(), &Request{Event: EventCapture}); err != nil {
		t.Errorf("Fire() on nil hooks error = %v", err)
	}
}

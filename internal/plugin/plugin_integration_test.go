package plugin

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestPlugin_Announce_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	source := findPluginDir("announce")
	if source == "" {
		t.Skip("announce plugin source not found")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not available to build the plugin")
	}

	// Install the plugin into a fresh plugin dir
	root := t.TempDir()
	dest := filepath.Join(root, "announce")
	if err := os.MkdirAll(dest, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	manifest, err := os.ReadFile(filepath.Join(source, "plugin.json"))
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "plugin.json"), manifest, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	build := exec.Command(goBin, "build", "-o", filepath.Join(dest, "announce"), ".")
	build.Dir = source
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build plugin: %v\n%s", err, out)
	}

	mgr := NewManager(root, nil)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("announce")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !plug.Handles(EventFeedback) || !plug.Handles(EventPoseSaved) {
		t.Fatalf("unexpected subscriptions %v", plug.Manifest.Events)
	}

	executor := NewExecutor(10 * time.Second)

	resp, err := executor.Execute(context.Background(), plug, &Request{
		Event:   EventFeedback,
		Pose:    "tree",
		Message: "Your tree form needs minor adjustments.",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}

	var data struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.Text != "Your tree form needs minor adjustments." {
		t.Errorf("unexpected text %q", data.Text)
	}

	// An event the plugin cannot announce is reported as a failure
	resp, err = executor.Execute(context.Background(), plug, &Request{Event: EventFeedback})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for feedback without a message")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, "plugin.json")
		if _, err := os.Stat(manifest); err == nil {
			return dir
		}
	}
	return ""
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the CLI with a data dir under t.TempDir and returns its output.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cliApp := newApp()
	cliApp.Writer = &out
	cliApp.ErrWriter = &out

	argv := append([]string{"yogkalp", "--data-dir", dataDir, "--log-level", "error"}, args...)
	err := cliApp.Run(argv)
	return out.String(), err
}

func TestImportAndListPoses(t *testing.T) {
	dataDir := t.TempDir()
	poseFile := filepath.Join(t.TempDir(), "saved_poses.json")
	content := `{"tree": {"left_knee": 45, "right_knee": 178, "hip_width": 0.12}}`
	if err := os.WriteFile(poseFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write pose file: %v", err)
	}

	out, err := run(t, dataDir, "poses")
	if err != nil {
		t.Fatalf("poses error = %v", err)
	}
	if !strings.Contains(out, "no saved poses") {
		t.Errorf("expected an empty listing, got %q", out)
	}

	out, err = run(t, dataDir, "import", poseFile)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "imported 1 poses") {
		t.Errorf("unexpected import output %q", out)
	}

	out, err = run(t, dataDir, "poses")
	if err != nil {
		t.Fatalf("poses error = %v", err)
	}
	if !strings.Contains(out, "tree") || !strings.Contains(out, "3 features") {
		t.Errorf("expected tree with 3 features, got %q", out)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "yogkalp.db")); err != nil {
		t.Errorf("expected the sqlite store in the data dir: %v", err)
	}
}

func TestImport_KeepsOtherPoses(t *testing.T) {
	for _, backend := range []string{"sqlite", "json"} {
		t.Run(backend, func(t *testing.T) {
			dataDir := t.TempDir()
			files := map[string]string{
				"first.json":  `{"tree": {"left_knee": 45}}`,
				"second.json": `{"warrior": {"left_elbow": 180}, "tree": {"left_knee": 50, "right_knee": 170}}`,
			}
			for _, name := range []string{"first.json", "second.json"} {
				path := filepath.Join(t.TempDir(), name)
				if err := os.WriteFile(path, []byte(files[name]), 0644); err != nil {
					t.Fatalf("failed to write pose file: %v", err)
				}
				if _, err := run(t, dataDir, "--store", backend, "import", path); err != nil {
					t.Fatalf("import %s error = %v", name, err)
				}
			}

			out, err := run(t, dataDir, "--store", backend, "poses")
			if err != nil {
				t.Fatalf("poses error = %v", err)
			}
			if !strings.Contains(out, "warrior") || !strings.Contains(out, "tree") {
				t.Errorf("expected both poses, got %q", out)
			}
			if !strings.Contains(out, " 2 features") {
				t.Errorf("expected the re-imported tree to carry 2 features, got %q", out)
			}
		})
	}
}

func TestListPoses_JSONBackend(t *testing.T) {
	dataDir := t.TempDir()
	content := `{"warrior": {"left_elbow": 180}}`
	if err := os.WriteFile(filepath.Join(dataDir, "saved_poses.json"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write pose file: %v", err)
	}

	out, err := run(t, dataDir, "--store", "json", "poses")
	if err != nil {
		t.Fatalf("poses error = %v", err)
	}
	if !strings.Contains(out, "warrior") {
		t.Errorf("expected warrior in the listing, got %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := run(t, t.TempDir(), "--store", "redis", "poses"); err == nil {
		t.Error("expected an error for an unknown store backend")
	}
}

func TestImport_NeedsFile(t *testing.T) {
	if _, err := run(t, t.TempDir(), "import"); err == nil {
		t.Error("expected an error without a pose file")
	}
}

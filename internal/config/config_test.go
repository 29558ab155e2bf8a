package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate, got %v", err)
	}
	if cfg.MatchThreshold != 40 {
		t.Errorf("expected match threshold 40, got %v", cfg.MatchThreshold)
	}
	if cfg.CaptureDelay != 5*time.Second {
		t.Errorf("expected capture delay 5s, got %s", cfg.CaptureDelay)
	}
	if cfg.VisibilityThreshold != 0.65 {
		t.Errorf("expected visibility threshold 0.65, got %v", cfg.VisibilityThreshold)
	}
	if !cfg.PalmTrigger {
		t.Error("palm trigger should be on by default")
	}
	if filepath.Base(cfg.DataDir) != ".yogkalp" {
		t.Errorf("unexpected data dir %q", cfg.DataDir)
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Config{DataDir: "/data"}

	if got := cfg.PoseFilePath(); got != filepath.Join("/data", DefaultPoseFileName) {
		t.Errorf("PoseFilePath() = %q", got)
	}
	if got := cfg.DBFilePath(); got != filepath.Join("/data", DefaultDBFileName) {
		t.Errorf("DBFilePath() = %q", got)
	}
	if got := cfg.PluginPath(); got != filepath.Join("/data", "plugins") {
		t.Errorf("PluginPath() = %q", got)
	}

	cfg.PoseFile = "/elsewhere/poses.json"
	cfg.DBPath = "/elsewhere/poses.db"
	cfg.PluginDir = "/elsewhere/plugins"
	if cfg.PoseFilePath() != "/elsewhere/poses.json" || cfg.DBFilePath() != "/elsewhere/poses.db" ||
		cfg.PluginPath() != "/elsewhere/plugins" {
		t.Errorf("explicit paths should win: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "redis" }, "unknown store backend"},
		{"no data dir", func(c *Config) { c.DataDir = "" }, "data dir"},
		{"no addr", func(c *Config) { c.Addr = "" }, "listen address"},
		{"match threshold too high", func(c *Config) { c.MatchThreshold = 101 }, "match threshold"},
		{"negative match threshold", func(c *Config) { c.MatchThreshold = -1 }, "match threshold"},
		{"visibility above one", func(c *Config) { c.VisibilityThreshold = 1.5 }, "visibility threshold"},
		{"negative capture delay", func(c *Config) { c.CaptureDelay = -time.Second }, "capture delay"},
		{"zero plugin timeout", func(c *Config) { c.PluginTimeout = 0 }, "plugin timeout"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestConfig_Validate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Backend = ""
	cfg.MatchThreshold = 200
	cfg.VisibilityThreshold = -0.1

	if errs := multierr.Errors(cfg.Validate()); len(errs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestConfig_Validate_Boundaries(t *testing.T) {
	cfg := Default()
	cfg.MatchThreshold = 0
	cfg.VisibilityThreshold = 1
	cfg.CaptureDelay = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("boundary values should validate, got %v", err)
	}
}

// parse runs a cli.App with the config flags and returns the resulting Config.
func parse(t *testing.T, args ...string) Config {
	t.Helper()

	var got Config
	app := &cli.App{
		Name:  "yogkalp",
		Flags: Flags(Default()),
		Action: func(c *cli.Context) error {
			got = FromContext(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"yogkalp"}, args...)); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}
	return got
}

func TestFlags_Defaults(t *testing.T) {
	if diff := cmp.Diff(Default(), parse(t)); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFlags_Override(t *testing.T) {
	got := parse(t,
		"--store", "json",
		"--pose-file", "/tmp/poses.json",
		"--addr", "127.0.0.1:9000",
		"--match-threshold", "55",
		"--capture-delay", "2s",
		"--palm-trigger=false",
		"--visibility-threshold", "0.5",
		"--watch",
	)

	want := Default()
	want.Backend = BackendJSON
	want.PoseFile = "/tmp/poses.json"
	want.Addr = "127.0.0.1:9000"
	want.MatchThreshold = 55
	want.CaptureDelay = 2 * time.Second
	want.PalmTrigger = false
	want.VisibilityThreshold = 0.5
	want.WatchPoseFile = true

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFlags_Env(t *testing.T) {
	t.Setenv("YOGKALP_STORE", "json")
	t.Setenv("YOGKALP_MATCH_THRESHOLD", "70")
	t.Setenv("YOGKALP_LOG_LEVEL", "debug")

	got := parse(t)
	if got.Backend != BackendJSON || got.MatchThreshold != 70 || got.LogLevel != "debug" {
		t.Errorf("environment not applied: %+v", got)
	}

	// Flags beat the environment
	if got := parse(t, "--match-threshold", "10"); got.MatchThreshold != 10 {
		t.Errorf("expected flag to win, got %v", got.MatchThreshold)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "YOGKALP_TEST_ADDR=:9999\nYOGKALP_TEST_KEEP=fromfile\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("YOGKALP_TEST_KEEP", "fromenv")
	t.Setenv("YOGKALP_TEST_ADDR", "")
	os.Unsetenv("YOGKALP_TEST_ADDR")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("YOGKALP_TEST_ADDR"); got != ":9999" {
		t.Errorf("expected :9999, got %q", got)
	}
	if got := os.Getenv("YOGKALP_TEST_KEEP"); got != "fromenv" {
		t.Errorf("existing variables should win, got %q", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env files should be ignored, got %v", err)
	}
}

// Package config holds the yogkalp runtime configuration and its command
// line and environment bindings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable read by yogkalp.
const EnvPrefix = "YOGKALP_"

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Defaults.
const (
	DefaultAddr                = ":8080"
	DefaultMatchThreshold      = 40.0
	DefaultCaptureDelay        = 5 * time.Second
	DefaultVisibilityThreshold = 0.65
	DefaultPluginTimeout       = 5 * time.Second
	DefaultPoseFileName        = "saved_poses.json"
	DefaultDBFileName          = "yogkalp.db"
)

// Config holds every runtime option.
type Config struct {
	DataDir   string
	Backend   string
	PoseFile  string
	DBPath    string
	Addr      string
	StaticDir string
	PluginDir string
	LogLevel  string

	PluginTimeout       time.Duration
	MatchThreshold      float64
	CaptureDelay        time.Duration
	PalmTrigger         bool
	VisibilityThreshold float64
	WatchPoseFile       bool
}

// Default returns the configuration used when nothing is overridden.
// Data lives under ~/.yogkalp, or ./.yogkalp when there is no home directory.
func Default() Config {
	dataDir := ".yogkalp"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".yogkalp")
	}

	return Config{
		DataDir:             dataDir,
		Backend:             BackendSQLite,
		Addr:                DefaultAddr,
		LogLevel:            "info",
		PluginTimeout:       DefaultPluginTimeout,
		MatchThreshold:      DefaultMatchThreshold,
		CaptureDelay:        DefaultCaptureDelay,
		PalmTrigger:         true,
		VisibilityThreshold: DefaultVisibilityThreshold,
	}
}

// PoseFilePath returns the JSON pose file, defaulting into DataDir.
func (c Config) PoseFilePath() string {
	if c.PoseFile != "" {
		return c.PoseFile
	}
	return filepath.Join(c.DataDir, DefaultPoseFileName)
}

// DBFilePath returns the SQLite database file, defaulting into DataDir.
func (c Config) DBFilePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, DefaultDBFileName)
}

// PluginPath returns the plugin directory, defaulting into DataDir.
func (c Config) PluginPath() string {
	if c.PluginDir != "" {
		return c.PluginDir
	}
	return filepath.Join(c.DataDir, "plugins")
}

// Validate reports every invalid option.
func (c Config) Validate() error {
	var errs error

	if c.DataDir == "" {
		errs = multierr.Append(errs, errors.New("data dir must be set"))
	}
	if c.Backend != BackendSQLite && c.Backend != BackendJSON {
		errs = multierr.Append(errs, fmt.Errorf("unknown store backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendJSON))
	}
	if c.Addr == "" {
		errs = multierr.Append(errs, errors.New("listen address must be set"))
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		errs = multierr.Append(errs, fmt.Errorf("match threshold %v out of range [0,100]", c.MatchThreshold))
	}
	if c.VisibilityThreshold < 0 || c.VisibilityThreshold > 1 {
		errs = multierr.Append(errs, fmt.Errorf("visibility threshold %v out of range [0,1]", c.VisibilityThreshold))
	}
	if c.CaptureDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("capture delay %s must not be negative", c.CaptureDelay))
	}
	if c.PluginTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("plugin timeout %s must be positive", c.PluginTimeout))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log level: %w", err))
	}

	return errs
}

// LoadDotEnv loads environment variables from the given .env files, or from
// ./.env when none are given. Missing files are ignored; variables already
// set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

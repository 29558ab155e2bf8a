package config

import (
	"github.com/urfave/cli/v2"
)

// Flag names.
const (
	FlagDataDir             = "data-dir"
	FlagBackend             = "store"
	FlagPoseFile            = "pose-file"
	FlagDBPath              = "db"
	FlagAddr                = "addr"
	FlagStaticDir           = "static-dir"
	FlagPluginDir           = "plugin-dir"
	FlagPluginTimeout       = "plugin-timeout"
	FlagLogLevel            = "log-level"
	FlagMatchThreshold      = "match-threshold"
	FlagCaptureDelay        = "capture-delay"
	FlagPalmTrigger         = "palm-trigger"
	FlagVisibilityThreshold = "visibility-threshold"
	FlagWatch               = "watch"
)

func env(name string) []string {
	return []string{EnvPrefix + name}
}

// Flags returns the command line flags, each also settable through its
// YOGKALP_* environment variable. Defaults come from base.
func Flags(base Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagDataDir,
			Usage:   "directory for the pose store and plugins",
			Value:   base.DataDir,
			EnvVars: env("DATA_DIR"),
		},
		&cli.StringFlag{
			Name:    FlagBackend,
			Usage:   "pose store backend: sqlite or json",
			Value:   base.Backend,
			EnvVars: env("STORE"),
		},
		&cli.StringFlag{
			Name:    FlagPoseFile,
			Usage:   "JSON pose file for the json backend",
			Value:   base.PoseFile,
			EnvVars: env("POSE_FILE"),
		},
		&cli.StringFlag{
			Name:    FlagDBPath,
			Usage:   "SQLite database for the sqlite backend",
			Value:   base.DBPath,
			EnvVars: env("DB"),
		},
		&cli.StringFlag{
			Name:    FlagAddr,
			Usage:   "HTTP listen address",
			Value:   base.Addr,
			EnvVars: env("ADDR"),
		},
		&cli.StringFlag{
			Name:    FlagStaticDir,
			Usage:   "directory of static web files to serve",
			Value:   base.StaticDir,
			EnvVars: env("STATIC_DIR"),
		},
		&cli.StringFlag{
			Name:    FlagPluginDir,
			Usage:   "directory of feedback plugins",
			Value:   base.PluginDir,
			EnvVars: env("PLUGIN_DIR"),
		},
		&cli.DurationFlag{
			Name:    FlagPluginTimeout,
			Usage:   "maximum run time of one plugin call",
			Value:   base.PluginTimeout,
			EnvVars: env("PLUGIN_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "log level: debug, info, warn or error",
			Value:   base.LogLevel,
			EnvVars: env("LOG_LEVEL"),
		},
		&cli.Float64Flag{
			Name:    FlagMatchThreshold,
			Usage:   "minimum accuracy for a confident match",
			Value:   base.MatchThreshold,
			EnvVars: env("MATCH_THRESHOLD"),
		},
		&cli.DurationFlag{
			Name:    FlagCaptureDelay,
			Usage:   "countdown between an open palm and the captured sample",
			Value:   base.CaptureDelay,
			EnvVars: env("CAPTURE_DELAY"),
		},
		&cli.BoolFlag{
			Name:    FlagPalmTrigger,
			Usage:   "start a capture countdown when an open palm is shown",
			Value:   base.PalmTrigger,
			EnvVars: env("PALM_TRIGGER"),
		},
		&cli.Float64Flag{
			Name:    FlagVisibilityThreshold,
			Usage:   "minimum landmark visibility for a frame to be scored",
			Value:   base.VisibilityThreshold,
			EnvVars: env("VISIBILITY_THRESHOLD"),
		},
		&cli.BoolFlag{
			Name:    FlagWatch,
			Usage:   "reload the JSON pose file when it changes on disk",
			Value:   base.WatchPoseFile,
			EnvVars: env("WATCH"),
		},
	}
}

// FromContext builds a Config from parsed flags.
func FromContext(c *cli.Context) Config {
	return Config{
		DataDir:             c.String(FlagDataDir),
		Backend:             c.String(FlagBackend),
		PoseFile:            c.String(FlagPoseFile),
		DBPath:              c.String(FlagDBPath),
		Addr:                c.String(FlagAddr),
		StaticDir:           c.String(FlagStaticDir),
		PluginDir:           c.String(FlagPluginDir),
		PluginTimeout:       c.Duration(FlagPluginTimeout),
		LogLevel:            c.String(FlagLogLevel),
		MatchThreshold:      c.Float64(FlagMatchThreshold),
		CaptureDelay:        c.Duration(FlagCaptureDelay),
		PalmTrigger:         c.Bool(FlagPalmTrigger),
		VisibilityThreshold: c.Float64(FlagVisibilityThreshold),
		WatchPoseFile:       c.Bool(FlagWatch),
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ayusman/yogkalp/internal/app"
	"github.com/ayusman/yogkalp/internal/config"
	"github.com/ayusman/yogkalp/internal/logging"
	"github.com/ayusman/yogkalp/internal/plugin"
	"github.com/ayusman/yogkalp/internal/pose"
	"github.com/ayusman/yogkalp/internal/posefile"
	"github.com/ayusman/yogkalp/internal/server"
	"github.com/ayusman/yogkalp/internal/server/api"
	"github.com/ayusman/yogkalp/internal/store"
)

const shutdownTimeout = 10 * time.Second

// backend is the opened pose store with its optional capabilities.
type backend struct {
	poses    pose.Store
	samples  api.SampleSource
	records  api.PoseRecords
	settings *store.SettingsRepository
	file     *posefile.Store
	close    func() error
}

// setup validates the configuration, creates the logger and opens the store.
func setup(c *cli.Context) (config.Config, *zap.SugaredLogger, *backend, error) {
	cfg := config.FromContext(c)
	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New("yogkalp", cfg.LogLevel)
	if err != nil {
		return cfg, nil, nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return cfg, nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	b, err := openBackend(cfg, logger)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, logger, b, nil
}

func openBackend(cfg config.Config, logger *zap.SugaredLogger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		path := cfg.PoseFilePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create pose file directory: %w", err)
		}
		file := posefile.New(path, logger)
		logger.Infow("Using JSON pose file", "path", path)
		return &backend{poses: file, file: file, close: func() error { return nil }}, nil
	default:
		st, err := store.New(cfg.DBFilePath())
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		logger.Infow("Using SQLite store", "path", st.Path())
		return &backend{
			poses:    st.Poses(),
			samples:  st.Poses(),
			records:  st.Poses(),
			settings: st.Settings(),
			close:    st.Close,
		}, nil
	}
}

// applySettings overrides options not given on the command line or in the
// environment with the values saved through the settings API.
func applySettings(ctx context.Context, c *cli.Context, cfg *config.Config, settings *store.SettingsRepository, logger *zap.SugaredLogger) {
	if settings == nil {
		return
	}

	if !c.IsSet(config.FlagMatchThreshold) {
		v, err := settings.Float(ctx, store.SettingMatchThreshold)
		switch {
		case err == nil:
			cfg.MatchThreshold = v
		case !errors.Is(err, store.ErrNotFound):
			logger.Warnw("Ignoring saved match threshold", "error", err)
		}
	}

	if !c.IsSet(config.FlagPalmTrigger) {
		v, err := settings.Bool(ctx, store.SettingPalmTrigger)
		switch {
		case err == nil:
			cfg.PalmTrigger = v
		case !errors.Is(err, store.ErrNotFound):
			logger.Warnw("Ignoring saved palm trigger", "error", err)
		}
	}
}

func serve(c *cli.Context) (err error) {
	cfg, logger, b, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer func() {
		err = multierr.Append(err, b.close())
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	applySettings(ctx, c, &cfg, b.settings, logger)

	// A library that fails to load starts empty; the server still runs.
	library := pose.NewLibrary(b.poses, logger)
	_ = library.Load(ctx)

	manager := plugin.NewManager(cfg.PluginPath(), logger)
	if err := manager.Discover(); err != nil {
		logger.Warnw("Failed to discover plugins", "dir", cfg.PluginPath(), "error", err)
	}
	hooks := plugin.NewHooks(manager, plugin.NewExecutor(cfg.PluginTimeout), logger)

	gate := pose.DefaultGate()
	gate.Threshold = cfg.VisibilityThreshold

	a := app.New(app.Config{
		Library:        library,
		Gate:           gate,
		MatchThreshold: cfg.MatchThreshold,
		CaptureDelay:   cfg.CaptureDelay,
		PalmTrigger:    cfg.PalmTrigger,
		Hooks:          hooks,
		Logger:         logger,
	})
	a.Start()

	if b.file != nil && cfg.WatchPoseFile {
		go func() {
			err := b.file.Watch(ctx, func() {
				if err := a.Reload(ctx); err == nil {
					logger.Infow("Pose file changed, library reloaded", "poses", library.Len())
				}
			})
			if err != nil {
				logger.Warnw("Pose file watch stopped", "error", err)
			}
		}()
	}

	srvConfig := server.Config{
		StaticDir: cfg.StaticDir,
		App:       a,
		Samples:   b.samples,
		Records:   b.records,
		Plugins:   manager,
		Logger:    logger,
	}
	if srvConfig.StaticDir == "" {
		srvConfig.StaticDir = findWebDir(cfg.DataDir)
	}
	if b.settings != nil {
		srvConfig.Settings = b.settings
	}
	srv := server.New(srvConfig)

	logger.Infow("yogkalp started",
		"poses", library.Len(),
		"plugins", len(manager.List()),
		"match_threshold", cfg.MatchThreshold,
		"palm_trigger", cfg.PalmTrigger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case serveErr = <-errCh:
		if serveErr != nil {
			serveErr = fmt.Errorf("server failed: %w", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return multierr.Combine(
		serveErr,
		srv.Shutdown(shutdownCtx),
		a.Stop(),
	)
}

// findWebDir returns the first web directory found next to the working
// directory or inside dataDir, or an empty string.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

package plugin

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Hooks delivers pose events to every subscribed plugin.
type Hooks struct {
	manager  *Manager
	executor *Executor
	logger   *zap.SugaredLogger
}

// NewHooks creates Hooks over the plugins known to manager.
func NewHooks(manager *Manager, executor *Executor, logger *zap.SugaredLogger) *Hooks {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hooks{
		manager:  manager,
		executor: executor,
		logger:   logger,
	}
}

// Fire runs every plugin subscribed to req.Event in name order, passing each
// its manifest config. A failing plugin does not stop the others; all
// failures are returned combined.
func (h *Hooks) Fire(ctx context.Context, req *Request) error {
	if h == nil || h.manager == nil || h.executor == nil {
		return nil
	}

	var errs error
	for _, p := range h.manager.Subscribers(req.Event) {
		call := *req
		call.Config = p.Manifest.Config

		resp, err := h.executor.Execute(ctx, p, &call)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("plugin %s: %w", p.Manifest.Name, err))
			continue
		}
		if !resp.Success {
			errs = multierr.Append(errs, fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error))
			continue
		}
		h.logger.Debugw("Plugin handled event", "plugin", p.Manifest.Name, "event", req.Event)
	}

	return errs
}

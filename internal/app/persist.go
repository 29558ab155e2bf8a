package app

import (
	"context"
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/ayusman/yogkalp/internal/pose"
)

// flushTimeout bounds one background write of the library.
const flushTimeout = 30 * time.Second

// Start launches the background persister. Persist requests made while it
// runs are coalesced and written off the caller's goroutine.
func (a *App) Start() {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan error, 1)
	go a.runPersister(a.stopCh, a.doneCh)

	a.logger.Debug("Persister started")
}

// Stop halts the persister after a final flush and waits for running hooks.
// It returns the error of the final flush, if any.
func (a *App) Stop() error {
	a.persistMu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.persistMu.Unlock()

	var err error
	if stopCh != nil {
		close(stopCh)
		err = <-doneCh
	}

	a.hooksWG.Wait()
	a.logger.Debug("Persister stopped")
	return err
}

func (a *App) runPersister(stopCh <-chan struct{}, doneCh chan<- error) {
	for {
		select {
		case <-stopCh:
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			doneCh <- a.flush(ctx)
			cancel()
			return
		case <-a.persistCh:
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := a.flush(ctx); err != nil {
				a.logger.Warnw("Failed to persist pose library", "error", err)
			}
			cancel()
		}
	}
}

// requestPersist schedules a write of the library. Without a running
// persister the write happens inline.
func (a *App) requestPersist(ctx context.Context) {
	a.persistMu.Lock()
	a.dirty = true
	running := a.stopCh != nil
	a.persistMu.Unlock()

	if running {
		select {
		case a.persistCh <- struct{}{}:
		default:
		}
		return
	}

	if err := a.flush(ctx); err != nil {
		a.logger.Warnw("Failed to persist pose library", "error", err)
	}
}

// flush writes the library and then the raw samples saved since the last
// flush, so sample rows always follow the pose rows they belong to.
func (a *App) flush(ctx context.Context) error {
	a.persistMu.Lock()
	if !a.dirty {
		a.persistMu.Unlock()
		return nil
	}
	a.dirty = false
	pending := a.pending
	a.pending = make(map[string][]pose.Vector)
	a.persistMu.Unlock()

	if err := a.library.Persist(ctx); err != nil {
		a.requeue(pending)
		return err
	}

	recorder, ok := a.library.Store().(pose.SampleRecorder)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs error
	for _, name := range names {
		if err := recorder.RecordSamples(ctx, name, pending[name]); err != nil {
			if ctx.Err() != nil {
				return multierr.Append(errs, err)
			}
			// The pose may have been deleted since it was saved.
			a.logger.Warnw("Failed to record samples", "pose", name, "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// requeue marks the library dirty again and restores samples that were not
// written, unless the pose was saved again or deleted in the meantime.
func (a *App) requeue(pending map[string][]pose.Vector) {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	a.dirty = true
	for name, samples := range pending {
		if _, ok := a.pending[name]; ok {
			continue
		}
		if _, ok := a.library.Get(name); ok {
			a.pending[name] = samples
		}
	}
}

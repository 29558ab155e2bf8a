// Package app ties the pose library, the capture workflow and the feedback
// hooks into the per-frame pipeline of the yogkalp service.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/yogkalp/internal/feedback"
	"github.com/ayusman/yogkalp/internal/landmark"
	"github.com/ayusman/yogkalp/internal/plugin"
	"github.com/ayusman/yogkalp/internal/pose"
)

var (
	// ErrNotVisible is returned when a frame cannot be captured because the
	// key landmarks are not visible.
	ErrNotVisible = errors.New("app: body not visible")
	// ErrInvalidName is returned for an empty pose name.
	ErrInvalidName = errors.New("app: pose name must not be empty")
)

// Config holds configuration options for the application.
type Config struct {
	// Library holds the reference poses. A nil Library uses an in-memory one.
	Library *pose.Library
	// Gate is the visibility gate. A gate without indices uses pose.DefaultGate.
	Gate pose.Gate
	// MatchThreshold is the accuracy a best match must exceed to be confident.
	MatchThreshold float64
	// CaptureDelay is the countdown between an open palm and the capture.
	CaptureDelay time.Duration
	// PalmTrigger enables the open-palm capture countdown.
	PalmTrigger bool
	// Hooks receives feedback, capture and pose_saved events. May be nil.
	Hooks *plugin.Hooks
	// Logger may be nil.
	Logger *zap.SugaredLogger
}

// App is the main application that scores frames and manages captures.
type App struct {
	config  Config
	library *pose.Library
	coach   *feedback.Coach
	logger  *zap.SugaredLogger

	mu        sync.Mutex
	batch     []pose.Vector
	batchGen  uint64
	countdown time.Time
	target    string

	persistMu sync.Mutex
	dirty     bool
	pending   map[string][]pose.Vector
	persistCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan error

	hooksWG sync.WaitGroup
}

// State is a point-in-time view of the capture workflow.
type State struct {
	Poses        []string `json:"poses"`
	BatchSize    int      `json:"batch_size"`
	Target       string   `json:"target,omitempty"`
	CountingDown bool     `json:"counting_down"`
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if len(config.Gate.Indices) == 0 {
		config.Gate = pose.DefaultGate()
	}
	library := config.Library
	if library == nil {
		library = pose.NewLibrary(nil, logger)
	}

	return &App{
		config:    config,
		library:   library,
		coach:     feedback.NewCoach(feedback.DefaultRepeatLimit),
		logger:    logger,
		pending:   make(map[string][]pose.Vector),
		persistCh: make(chan struct{}, 1),
	}
}

// Library returns the pose library.
func (a *App) Library() *pose.Library {
	return a.library
}

// Gate returns the visibility gate in use.
func (a *App) Gate() pose.Gate {
	return a.config.Gate
}

// MatchThreshold returns the confidence threshold for best matches.
func (a *App) MatchThreshold() float64 {
	return a.config.MatchThreshold
}

// State returns the current capture workflow state.
func (a *App) State(now time.Time) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return State{
		Poses:        a.library.Names(),
		BatchSize:    len(a.batch),
		Target:       a.target,
		CountingDown: !a.countdown.IsZero() && now.Before(a.countdown),
	}
}

// SetTarget selects a pose to score on every frame in addition to the best
// match. An empty name clears the target.
func (a *App) SetTarget(name string) error {
	if name != "" {
		if _, ok := a.library.Get(name); !ok {
			return fmt.Errorf("%w: %q", pose.ErrPoseNotFound, name)
		}
	}

	a.mu.Lock()
	a.target = name
	a.mu.Unlock()

	a.coach.Reset()
	return nil
}

// Target returns the selected target pose, if any.
func (a *App) Target() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

// Capture adds the features of frame to the current batch immediately.
// It returns the new batch size.
func (a *App) Capture(frame landmark.Frame) (int, error) {
	if !a.visible(frame) {
		return 0, ErrNotVisible
	}

	a.mu.Lock()
	a.batch = append(a.batch, pose.Extract(frame.Body))
	size := len(a.batch)
	a.mu.Unlock()

	a.logger.Infow("Sample captured", "batch_size", size)
	a.fire(&plugin.Request{Event: plugin.EventCapture, Samples: size})
	return size, nil
}

// BatchSize returns the number of samples captured since the last save.
func (a *App) BatchSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batch)
}

// ClearBatch discards the captured samples and any running countdown.
func (a *App) ClearBatch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batch = nil
	a.batchGen++
	a.countdown = time.Time{}
}

// SaveBatch averages the captured samples into the reference pose name and
// clears the batch. The batch is kept when saving fails.
func (a *App) SaveBatch(ctx context.Context, name string) (pose.Vector, error) {
	a.mu.Lock()
	batch := a.batch
	gen := a.batchGen
	a.mu.Unlock()

	if len(batch) == 0 {
		return nil, pose.ErrEmptyBatch
	}

	avg, err := a.AddBatch(ctx, name, batch)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	// Samples captured while saving stay for the next batch. A batch cleared
	// meanwhile holds none of the saved samples.
	if a.batchGen == gen {
		a.batch = append([]pose.Vector(nil), a.batch[len(batch):]...)
		a.batchGen++
	}
	a.mu.Unlock()

	return avg, nil
}

// AddBatch averages batch into the reference pose name, replacing any pose of
// that name, and schedules persistence of the library and the raw samples.
func (a *App) AddBatch(ctx context.Context, name string, batch []pose.Vector) (pose.Vector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	avg, err := a.library.AverageAndAdd(name, batch)
	if err != nil {
		return nil, err
	}

	samples := make([]pose.Vector, len(batch))
	for i, v := range batch {
		samples[i] = v.Clone()
	}

	a.persistMu.Lock()
	a.pending[name] = samples
	a.persistMu.Unlock()

	a.requestPersist(ctx)
	a.fire(&plugin.Request{Event: plugin.EventPoseSaved, Pose: name, Samples: len(batch)})
	return avg, nil
}

// DeletePose removes a reference pose and schedules persistence.
func (a *App) DeletePose(ctx context.Context, name string) error {
	if !a.library.Delete(name) {
		return fmt.Errorf("%w: %q", pose.ErrPoseNotFound, name)
	}

	a.mu.Lock()
	if a.target == name {
		a.target = ""
	}
	a.mu.Unlock()

	a.persistMu.Lock()
	delete(a.pending, name)
	a.persistMu.Unlock()

	a.logger.Infow("Reference pose deleted", "pose", name)
	a.requestPersist(ctx)
	return nil
}

// Reload replaces the library content with what the store holds. A failed
// reload keeps the current library and returns the error.
func (a *App) Reload(ctx context.Context) error {
	if err := a.library.Reload(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	if a.target != "" {
		if _, ok := a.library.Get(a.target); !ok {
			a.target = ""
		}
	}
	a.mu.Unlock()

	a.coach.Reset()
	return nil
}

// fire delivers req to the plugin hooks in the background.
func (a *App) fire(req *plugin.Request) {
	if a.config.Hooks == nil {
		return
	}

	a.hooksWG.Add(1)
	go func() {
		defer a.hooksWG.Done()
		if err := a.config.Hooks.Fire(context.Background(), req); err != nil {
			a.logger.Warnw("Plugin hook failed", "event", req.Event, "error", err)
		}
	}()
}

func (a *App) visible(frame landmark.Frame) bool {
	return frame.HasBody() && a.config.Gate.Visible(frame.Body)
}

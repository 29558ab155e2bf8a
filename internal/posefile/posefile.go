// Package posefile stores the reference pose library as a single JSON file
// of the form {"<pose>": {"<feature>": <value>, ...}, ...}.
package posefile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ayusman/yogkalp/internal/pose"
)

// DefaultDebounce is how long Watch waits for a burst of file events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Store is a pose.Store backed by a JSON file.
type Store struct {
	path     string
	logger   *zap.SugaredLogger
	debounce time.Duration

	mu          sync.Mutex
	lastWritten []byte
}

// New creates a Store for the file at path. The file and its directory are
// created on the first Save.
func New(path string, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		path:     path,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every pose from the file. A missing file is an empty library.
func (s *Store) Load(ctx context.Context) (map[string]pose.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]pose.Vector{}, nil
		}
		return nil, fmt.Errorf("read pose file: %w", err)
	}

	poses, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode pose file %s: %w", s.path, err)
	}
	return poses, nil
}

// Save replaces the file content with poses. It writes a temporary file in
// the same directory and renames it into place.
func (s *Store) Save(ctx context.Context, poses map[string]pose.Vector) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(poses, "", "  ")
	if err != nil {
		return fmt.Errorf("encode poses: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create pose directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace pose file: %w", err)
	}
	s.lastWritten = data
	return nil
}

// Watch calls onChange whenever the file is changed by someone other than
// this Store. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create pose directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: Save replaces the file, which drops a watch on
	// the file itself.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnw("Pose file watcher error", "path", s.path, "error", err)

		case <-fire:
			fire = nil
			if s.ownWrite() {
				continue
			}
			s.logger.Infow("Pose file changed on disk", "path", s.path)
			onChange()
		}
	}
}

// ownWrite reports whether the file still holds exactly what Save last wrote.
func (s *Store) ownWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastWritten == nil {
		return false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return bytes.Equal(data, s.lastWritten)
}

func decode(data []byte) (map[string]pose.Vector, error) {
	poses := map[string]pose.Vector{}
	if len(bytes.TrimSpace(data)) == 0 {
		return poses, nil
	}
	if err := json.Unmarshal(data, &poses); err != nil {
		return nil, err
	}
	for name, v := range poses {
		if v == nil {
			poses[name] = pose.Vector{}
		}
	}
	return poses, nil
}

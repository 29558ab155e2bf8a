package pose

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrPoseNotFound is returned when no reference pose has the given name.
	ErrPoseNotFound = errors.New("pose: not found")
	// ErrEmptyBatch is returned when a batch holds no feature vectors.
	ErrEmptyBatch = errors.New("pose: empty batch")
	// ErrInconsistentBatch is returned when the vectors of a batch do not
	// share the same feature names.
	ErrInconsistentBatch = errors.New("pose: inconsistent feature names in batch")
)

// Store is durable storage for the whole library.
type Store interface {
	// Load returns every stored pose. A store that has never been written
	// returns an empty map and no error.
	Load(ctx context.Context) (map[string]Vector, error)
	// Save replaces the stored content with poses.
	Save(ctx context.Context, poses map[string]Vector) error
}

// SampleRecorder is implemented by stores that also keep the raw batch a
// reference pose was averaged from.
type SampleRecorder interface {
	RecordSamples(ctx context.Context, name string, samples []Vector) error
}

// Match is the result of searching the library for the closest pose.
type Match struct {
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
}

// Library holds the named reference poses. It is safe for concurrent use.
type Library struct {
	mu     sync.RWMutex
	poses  map[string]Vector
	store  Store
	logger *zap.SugaredLogger
}

// NewLibrary creates an empty library backed by store. A nil store keeps the
// library in memory only; a nil logger discards log output.
func NewLibrary(store Store, logger *zap.SugaredLogger) *Library {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Library{
		poses:  make(map[string]Vector),
		store:  store,
		logger: logger,
	}
}

// Store returns the backing store, which may be nil.
func (l *Library) Store() Store {
	return l.store
}

// Add inserts or replaces the pose stored under name.
// The vector is copied; partial vectors are accepted.
func (l *Library) Add(name string, v Vector) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.poses[name] = v.Clone()
}

// AverageAndAdd averages batch and stores the result under name, replacing
// any earlier pose of that name. It returns the stored average.
func (l *Library) AverageAndAdd(name string, batch []Vector) (Vector, error) {
	avg, err := Average(batch)
	if err != nil {
		return nil, err
	}
	l.Add(name, avg)
	l.logger.Infow("Reference pose saved", "pose", name, "samples", len(batch), "features", len(avg))
	return avg.Clone(), nil
}

// Average computes the per-feature arithmetic mean of batch.
//
// Every vector must carry the same feature names and hold valid values. NaN
// values do not take part in a feature's mean, and a feature that is NaN in
// every sample is left out.
func Average(batch []Vector) (Vector, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	first := batch[0]
	for i, v := range batch[1:] {
		if !first.sameKeys(v) {
			return nil, fmt.Errorf("%w: sample %d differs from sample 0", ErrInconsistentBatch, i+1)
		}
	}

	for i, v := range batch {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}

	avg := make(Vector, len(first))
	values := make([]float64, 0, len(batch))
	for name, f := range first {
		values = values[:0]
		for _, v := range batch {
			if v[name].Available() {
				values = append(values, v[name].Value)
			}
		}
		if len(values) == 0 {
			continue
		}
		avg[name] = Feature{Kind: f.Kind, Value: stat.Mean(values, nil)}
	}

	return avg, nil
}

// Get returns a copy of the pose stored under name.
func (l *Library) Get(name string) (Vector, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v, ok := l.poses[name]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Delete removes a pose. It reports whether the pose existed.
func (l *Library) Delete(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.poses[name]; !ok {
		return false
	}
	delete(l.poses, name)
	return true
}

// Names returns the pose names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedNames()
}

// Len returns the number of stored poses.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.poses)
}

// Snapshot returns a deep copy of every stored pose.
func (l *Library) Snapshot() map[string]Vector {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]Vector, len(l.poses))
	for name, v := range l.poses {
		out[name] = v.Clone()
	}
	return out
}

// Score compares live against the pose stored under name.
func (l *Library) Score(live Vector, name string) (float64, error) {
	l.mu.RLock()
	target, ok := l.poses[name]
	l.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrPoseNotFound, name)
	}
	return Compare(live, target)
}

// BestMatch scores live against every pose and returns the highest accuracy.
//
// Poses are visited in sorted name order and a later pose only wins with a
// strictly greater accuracy, so ties go to the first name. Incomparable poses
// are skipped. It returns false when the library is empty or no pose could
// be compared.
func (l *Library) BestMatch(live Vector) (Match, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var best Match
	found := false

	for _, name := range l.sortedNames() {
		accuracy, err := Compare(live, l.poses[name])
		if err != nil {
			continue
		}
		if !found || accuracy > best.Accuracy {
			best = Match{Name: name, Accuracy: accuracy}
			found = true
		}
	}

	return best, found
}

// Persist writes the current library to the store.
func (l *Library) Persist(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	snapshot := l.Snapshot()
	if err := l.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("persist pose library: %w", err)
	}

	l.logger.Debugw("Pose library persisted", "poses", len(snapshot))
	return nil
}

// Load replaces the library content with what the store holds.
//
// If the store cannot be read the library is left empty, a warning is logged
// and the error is returned for the caller to report. Load never panics on
// bad data.
func (l *Library) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	poses, err := l.store.Load(ctx)
	if err != nil {
		l.mu.Lock()
		l.poses = make(map[string]Vector)
		l.mu.Unlock()

		l.logger.Warnw("Failed to load saved poses, starting with an empty library", "error", err)
		return fmt.Errorf("load pose library: %w", err)
	}

	l.replace(poses)
	l.logger.Infow("Loaded saved poses", "poses", len(poses))
	return nil
}

// Reload is Load for a library already in use: when the store cannot be read
// the current content is kept.
func (l *Library) Reload(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	poses, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warnw("Failed to reload saved poses, keeping the current library", "error", err)
		return fmt.Errorf("reload pose library: %w", err)
	}

	l.replace(poses)
	l.logger.Infow("Reloaded saved poses", "poses", len(poses))
	return nil
}

func (l *Library) replace(poses map[string]Vector) {
	loaded := make(map[string]Vector, len(poses))
	for name, v := range poses {
		loaded[name] = v.Clone()
	}

	l.mu.Lock()
	l.poses = loaded
	l.mu.Unlock()
}

func (l *Library) sortedNames() []string {
	names := make([]string, 0, len(l.poses))
	for name := range l.poses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

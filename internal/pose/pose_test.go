package pose

import (
	"context"
	"errors"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })
	approx      = cmpopts.EquateApprox(0, 1e-9)
)

// vec builds a vector from plain numbers for test readability.
func vec(values map[string]float64) Vector {
	return FromValues(values)
}

// vectorValues compares vectors by their numeric content only.
func vectorValues() cmp.Option {
	return cmp.Transformer("values", func(v Vector) map[string]float64 { return v.Values() })
}

// memStore is an in-memory Store for library tests.
type memStore struct {
	mu      sync.Mutex
	poses   map[string]Vector
	saves   int
	loadErr error
	saveErr error
}

func (s *memStore) Load(ctx context.Context) (map[string]Vector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]Vector, len(s.poses))
	for name, v := range s.poses {
		out[name] = v.Clone()
	}
	return out, nil
}

func (s *memStore) Save(ctx context.Context, poses map[string]Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.poses = poses
	s.saves++
	return nil
}

var errDiskFull = errors.New("disk full")

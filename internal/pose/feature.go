// Package pose provides feature extraction, visibility gating, similarity
// scoring and the named reference pose library.
package pose

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Kind tags a feature as a joint angle or a segment distance.
type Kind int

const (
	// KindDistance is a length in normalized image units. It depends on how
	// the subject is framed.
	KindDistance Kind = iota
	// KindAngle is a joint angle in degrees, in [0,180].
	KindAngle
)

// String returns the storage name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAngle:
		return "angle"
	case KindDistance:
		return "distance"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a storage name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "angle":
		return KindAngle, nil
	case "distance":
		return KindDistance, nil
	default:
		return KindDistance, fmt.Errorf("unknown feature kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Feature is one named measurement of a pose.
// A NaN Value means the feature could not be measured on this frame.
type Feature struct {
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value"`
}

// Available reports whether the feature holds a comparable number.
func (f Feature) Available() bool {
	return !math.IsNaN(f.Value) && !math.IsInf(f.Value, 0)
}

// ErrInvalidFeature is returned for a value that cannot be a measurement of
// its kind.
var ErrInvalidFeature = errors.New("pose: invalid feature value")

// Vector maps feature names to features.
type Vector map[string]Feature

// Validate checks that every angle lies in [0,180] and no distance is
// negative. Unavailable features pass.
func (v Vector) Validate() error {
	for _, name := range v.Names() {
		f := v[name]
		if !f.Available() {
			continue
		}
		switch f.Kind {
		case KindAngle:
			if f.Value < 0 || f.Value > 180 {
				return fmt.Errorf("%w: angle %q is %g, want [0,180]", ErrInvalidFeature, name, f.Value)
			}
		case KindDistance:
			if f.Value < 0 {
				return fmt.Errorf("%w: distance %q is negative", ErrInvalidFeature, name)
			}
		}
	}
	return nil
}

// FromValues builds a Vector from plain numbers, resolving each name's kind
// from the extractor's definitions.
func FromValues(values map[string]float64) Vector {
	v := make(Vector, len(values))
	for name, value := range values {
		v[name] = Feature{Kind: KindOf(name), Value: value}
	}
	return v
}

// Values returns the vector as plain numbers. Unavailable features are omitted.
func (v Vector) Values() map[string]float64 {
	out := make(map[string]float64, len(v))
	for name, f := range v {
		if f.Available() {
			out[name] = f.Value
		}
	}
	return out
}

// Names returns the feature names in sorted order.
func (v Vector) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	for name, f := range v {
		out[name] = f
	}
	return out
}

// sameKeys reports whether both vectors carry exactly the same feature names.
func (v Vector) sameKeys(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for name := range v {
		if _, ok := other[name]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the vector as name → number, the stored pose format.
// Unavailable features are omitted.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Values())
}

// UnmarshalJSON decodes a name → number object.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var values map[string]float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*v = FromValues(values)
	return nil
}

package pose

import "github.com/ayusman/yogkalp/internal/landmark"

// DefaultVisibilityThreshold is the minimum confidence a key landmark needs.
const DefaultVisibilityThreshold = 0.65

// Gate decides whether enough of the body is visible to trust extraction.
type Gate struct {
	// Indices are the key landmarks that must all be visible.
	Indices []int
	// Threshold is the minimum visibility, inclusive.
	Threshold float64
}

// DefaultGate returns the gate over the left shoulder, elbow, wrist and hip.
func DefaultGate() Gate {
	return Gate{
		Indices: []int{
			landmark.LeftShoulder,
			landmark.LeftElbow,
			landmark.LeftWrist,
			landmark.LeftHip,
		},
		Threshold: DefaultVisibilityThreshold,
	}
}

// Visible reports whether every key landmark is present and at or above the
// threshold. A body set too short to contain a key index is not visible.
func (g Gate) Visible(body []landmark.Landmark) bool {
	for _, idx := range g.Indices {
		if !g.visible(body, idx) {
			return false
		}
	}
	return true
}

// Missing returns the key indices that fail the gate, in gate order.
func (g Gate) Missing(body []landmark.Landmark) []int {
	var missing []int
	for _, idx := range g.Indices {
		if !g.visible(body, idx) {
			missing = append(missing, idx)
		}
	}
	return missing
}

func (g Gate) visible(body []landmark.Landmark, idx int) bool {
	return idx >= 0 && idx < len(body) && body[idx].Visibility >= g.Threshold
}

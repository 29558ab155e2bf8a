package pose

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Weights of the two feature kinds in the combined difference. Angles do not
// depend on body proportions or camera distance, so they dominate.
const (
	AngleWeight    = 0.7
	DistanceWeight = 0.3
)

// ErrIncomparable is returned when two vectors share no angle feature that
// both sides could measure, so no accuracy can be computed.
var ErrIncomparable = errors.New("pose: no comparable features")

// Compare scores live against target and returns an accuracy in [0,100],
// where 100 means every shared feature matches exactly.
//
// Angle differences are circular and normalized by 180. Distance differences
// are relative to the target and capped at 1. Features missing on either
// side, or holding NaN, are skipped, as are distances whose target is not
// positive.
func Compare(live, target Vector) (float64, error) {
	var angleDiffs, distanceDiffs []float64

	for name, lf := range live {
		tf, ok := target[name]
		if !ok || !lf.Available() || !tf.Available() {
			continue
		}

		switch lf.Kind {
		case KindAngle:
			diff := math.Mod(math.Abs(lf.Value-tf.Value), 360)
			angleDiffs = append(angleDiffs, math.Min(diff, 360-diff)/180)
		case KindDistance:
			if tf.Value <= 0 {
				continue
			}
			diff := math.Abs(lf.Value-tf.Value) / tf.Value
			distanceDiffs = append(distanceDiffs, math.Min(1, diff))
		}
	}

	if len(angleDiffs) == 0 {
		return 0, ErrIncomparable
	}

	weighted := stat.Mean(angleDiffs, nil)
	if len(distanceDiffs) > 0 {
		weighted = AngleWeight*weighted + DistanceWeight*stat.Mean(distanceDiffs, nil)
	}

	return math.Max(0, math.Min(100, 100-weighted*100)), nil
}

// Level is a coarse accuracy band used for user feedback.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// LevelOf returns the band an accuracy falls in: above 80 is high, above 60
// is medium, anything else is low.
func LevelOf(accuracy float64) Level {
	switch {
	case accuracy > 80:
		return LevelHigh
	case accuracy > 60:
		return LevelMedium
	default:
		return LevelLow
	}
}

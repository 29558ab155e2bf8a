// Package gesture provides hand gesture detection used to trigger capture.
package gesture

import (
	"github.com/ayusman/yogkalp/internal/geometry"
	"github.com/ayusman/yogkalp/internal/landmark"
)

// OpenPalmThreshold is the minimum wrist to fingertip distance, in normalized
// image units, for a finger to count as extended.
const OpenPalmThreshold = 0.1

// fingertips are the tip landmarks of the thumb and the four fingers.
var fingertips = [5]int{
	landmark.ThumbTip,
	landmark.IndexTip,
	landmark.MiddleTip,
	landmark.RingTip,
	landmark.PinkyTip,
}

// IsOpenPalm reports whether every fingertip of hand lies farther than
// OpenPalmThreshold from the wrist. Empty or incomplete hands are not open.
func IsOpenPalm(hand []landmark.Landmark) bool {
	if len(hand) < landmark.NumHandLandmarks {
		return false
	}

	wrist := hand[landmark.Wrist].Point()
	for _, tip := range fingertips {
		if geometry.Distance(wrist, hand[tip].Point()) <= OpenPalmThreshold {
			return false
		}
	}
	return true
}

// AnyOpenPalm reports whether at least one of hands is an open palm.
func AnyOpenPalm(hands [][]landmark.Landmark) bool {
	for _, hand := range hands {
		if IsOpenPalm(hand) {
			return true
		}
	}
	return false
}

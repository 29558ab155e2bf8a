package pose

import (
	"github.com/ayusman/yogkalp/internal/geometry"
	"github.com/ayusman/yogkalp/internal/landmark"
)

// Feature names produced by Extract.
const (
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"

	ShoulderWidth  = "shoulder_width"
	LeftArmLength  = "left_arm_length"
	RightArmLength = "right_arm_length"
	HipWidth       = "hip_width"
	LeftLegLength  = "left_leg_length"
	RightLegLength = "right_leg_length"
	TorsoLength    = "torso_length"
)

// definition describes how one feature is measured from a body landmark set.
type definition struct {
	name    string
	kind    Kind
	measure func(p []landmark.Point) float64
}

// angleAt measures the angle at landmark b between landmarks a and c.
func angleAt(a, b, c int) func([]landmark.Point) float64 {
	return func(p []landmark.Point) float64 {
		return geometry.Angle(p[a], p[b], p[c])
	}
}

// span measures the distance between two landmarks.
func span(a, b int) func([]landmark.Point) float64 {
	return func(p []landmark.Point) float64 {
		return geometry.Distance(p[a], p[b])
	}
}

// limb measures the length of a two-segment limb: a→b plus b→c.
func limb(a, b, c int) func([]landmark.Point) float64 {
	return func(p []landmark.Point) float64 {
		return geometry.Distance(p[a], p[b]) + geometry.Distance(p[b], p[c])
	}
}

// torso measures shoulder midpoint to hip midpoint.
func torso(p []landmark.Point) float64 {
	shoulders := geometry.Midpoint(p[landmark.LeftShoulder], p[landmark.RightShoulder])
	hips := geometry.Midpoint(p[landmark.LeftHip], p[landmark.RightHip])
	return geometry.Distance(shoulders, hips)
}

var definitions = []definition{
	{LeftElbow, KindAngle, angleAt(landmark.LeftShoulder, landmark.LeftElbow, landmark.LeftWrist)},
	{RightElbow, KindAngle, angleAt(landmark.RightShoulder, landmark.RightElbow, landmark.RightWrist)},
	{LeftShoulder, KindAngle, angleAt(landmark.LeftElbow, landmark.LeftShoulder, landmark.LeftHip)},
	{RightShoulder, KindAngle, angleAt(landmark.RightElbow, landmark.RightShoulder, landmark.RightHip)},
	{LeftKnee, KindAngle, angleAt(landmark.LeftHip, landmark.LeftKnee, landmark.LeftAnkle)},
	{RightKnee, KindAngle, angleAt(landmark.RightHip, landmark.RightKnee, landmark.RightAnkle)},

	{ShoulderWidth, KindDistance, span(landmark.LeftShoulder, landmark.RightShoulder)},
	{LeftArmLength, KindDistance, limb(landmark.LeftShoulder, landmark.LeftElbow, landmark.LeftWrist)},
	{RightArmLength, KindDistance, limb(landmark.RightShoulder, landmark.RightElbow, landmark.RightWrist)},
	{HipWidth, KindDistance, span(landmark.LeftHip, landmark.RightHip)},
	{LeftLegLength, KindDistance, limb(landmark.LeftHip, landmark.LeftKnee, landmark.LeftAnkle)},
	{RightLegLength, KindDistance, limb(landmark.RightHip, landmark.RightKnee, landmark.RightAnkle)},
	{TorsoLength, KindDistance, torso},
}

var kinds = func() map[string]Kind {
	m := make(map[string]Kind, len(definitions))
	for _, d := range definitions {
		m[d.name] = d.kind
	}
	return m
}()

// KindOf returns the kind of a named feature. Names the extractor does not
// produce are treated as distances.
func KindOf(name string) Kind {
	if k, ok := kinds[name]; ok {
		return k
	}
	return KindDistance
}

// FeatureNames returns the names Extract produces, in definition order.
func FeatureNames() []string {
	names := make([]string, len(definitions))
	for i, d := range definitions {
		names[i] = d.name
	}
	return names
}

// Extract measures every feature from a full body landmark set.
//
// Extract does not check visibility; gate the frame first. The body must hold
// NumBodyLandmarks points, fewer is a caller error and panics. Angles that
// cannot be measured come back as NaN and are skipped by scoring.
func Extract(body []landmark.Landmark) Vector {
	points := make([]landmark.Point, len(body))
	for i, l := range body {
		points[i] = l.Point()
	}

	v := make(Vector, len(definitions))
	for _, d := range definitions {
		v[d.name] = Feature{Kind: d.kind, Value: d.measure(points)}
	}
	return v
}

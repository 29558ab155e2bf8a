package landmark

// StandingLandmarks returns a preset body landmark set of a person standing
// upright, arms hanging at the sides. Every landmark is fully visible.
func StandingLandmarks() []Landmark {
	body := filledBody(1.0)

	body[Nose] = Landmark{X: 0.50, Y: 0.10, Visibility: 1}

	body[LeftShoulder] = Landmark{X: 0.60, Y: 0.25, Visibility: 1}
	body[RightShoulder] = Landmark{X: 0.40, Y: 0.25, Visibility: 1}
	body[LeftElbow] = Landmark{X: 0.62, Y: 0.40, Visibility: 1}
	body[RightElbow] = Landmark{X: 0.38, Y: 0.40, Visibility: 1}
	body[LeftWrist] = Landmark{X: 0.63, Y: 0.55, Visibility: 1}
	body[RightWrist] = Landmark{X: 0.37, Y: 0.55, Visibility: 1}

	body[LeftHip] = Landmark{X: 0.56, Y: 0.55, Visibility: 1}
	body[RightHip] = Landmark{X: 0.44, Y: 0.55, Visibility: 1}
	body[LeftKnee] = Landmark{X: 0.56, Y: 0.72, Visibility: 1}
	body[RightKnee] = Landmark{X: 0.44, Y: 0.72, Visibility: 1}
	body[LeftAnkle] = Landmark{X: 0.56, Y: 0.90, Visibility: 1}
	body[RightAnkle] = Landmark{X: 0.44, Y: 0.90, Visibility: 1}

	return body
}

// WarriorLandmarks returns a preset body landmark set of a warrior II pose:
// arms extended horizontally, front knee bent, back leg straight.
func WarriorLandmarks() []Landmark {
	body := filledBody(1.0)

	body[Nose] = Landmark{X: 0.50, Y: 0.15, Visibility: 1}

	body[LeftShoulder] = Landmark{X: 0.58, Y: 0.30, Visibility: 1}
	body[RightShoulder] = Landmark{X: 0.42, Y: 0.30, Visibility: 1}
	body[LeftElbow] = Landmark{X: 0.72, Y: 0.30, Visibility: 1}
	body[RightElbow] = Landmark{X: 0.28, Y: 0.30, Visibility: 1}
	body[LeftWrist] = Landmark{X: 0.86, Y: 0.30, Visibility: 1}
	body[RightWrist] = Landmark{X: 0.14, Y: 0.30, Visibility: 1}

	body[LeftHip] = Landmark{X: 0.56, Y: 0.58, Visibility: 1}
	body[RightHip] = Landmark{X: 0.44, Y: 0.58, Visibility: 1}
	body[LeftKnee] = Landmark{X: 0.72, Y: 0.70, Visibility: 1}
	body[RightKnee] = Landmark{X: 0.34, Y: 0.74, Visibility: 1}
	body[LeftAnkle] = Landmark{X: 0.72, Y: 0.90, Visibility: 1}
	body[RightAnkle] = Landmark{X: 0.22, Y: 0.90, Visibility: 1}

	return body
}

// OpenPalmLandmarks returns a preset hand landmark set with all fingers extended.
func OpenPalmLandmarks() []Landmark {
	hand := make([]Landmark, NumHandLandmarks)

	hand[Wrist] = Landmark{X: 0.50, Y: 0.80, Visibility: 1}

	hand[ThumbCMC] = Landmark{X: 0.55, Y: 0.75, Visibility: 1}
	hand[ThumbMCP] = Landmark{X: 0.62, Y: 0.70, Visibility: 1}
	hand[ThumbIP] = Landmark{X: 0.68, Y: 0.65, Visibility: 1}
	hand[ThumbTip] = Landmark{X: 0.73, Y: 0.60, Visibility: 1}

	hand[IndexMCP] = Landmark{X: 0.55, Y: 0.68, Visibility: 1}
	hand[IndexPIP] = Landmark{X: 0.57, Y: 0.55, Visibility: 1}
	hand[IndexDIP] = Landmark{X: 0.58, Y: 0.45, Visibility: 1}
	hand[IndexTip] = Landmark{X: 0.58, Y: 0.35, Visibility: 1}

	hand[MiddleMCP] = Landmark{X: 0.50, Y: 0.66, Visibility: 1}
	hand[MiddlePIP] = Landmark{X: 0.50, Y: 0.52, Visibility: 1}
	hand[MiddleDIP] = Landmark{X: 0.50, Y: 0.40, Visibility: 1}
	hand[MiddleTip] = Landmark{X: 0.50, Y: 0.28, Visibility: 1}

	hand[RingMCP] = Landmark{X: 0.45, Y: 0.68, Visibility: 1}
	hand[RingPIP] = Landmark{X: 0.43, Y: 0.55, Visibility: 1}
	hand[RingDIP] = Landmark{X: 0.42, Y: 0.45, Visibility: 1}
	hand[RingTip] = Landmark{X: 0.42, Y: 0.35, Visibility: 1}

	hand[PinkyMCP] = Landmark{X: 0.40, Y: 0.70, Visibility: 1}
	hand[PinkyPIP] = Landmark{X: 0.37, Y: 0.60, Visibility: 1}
	hand[PinkyDIP] = Landmark{X: 0.35, Y: 0.50, Visibility: 1}
	hand[PinkyTip] = Landmark{X: 0.34, Y: 0.42, Visibility: 1}

	return hand
}

// FistLandmarks returns a preset hand landmark set with all fingers curled
// back toward the wrist.
func FistLandmarks() []Landmark {
	hand := make([]Landmark, NumHandLandmarks)

	hand[Wrist] = Landmark{X: 0.50, Y: 0.80, Visibility: 1}

	hand[ThumbCMC] = Landmark{X: 0.54, Y: 0.77, Visibility: 1}
	hand[ThumbMCP] = Landmark{X: 0.56, Y: 0.74, Visibility: 1}
	hand[ThumbIP] = Landmark{X: 0.55, Y: 0.72, Visibility: 1}
	hand[ThumbTip] = Landmark{X: 0.53, Y: 0.72, Visibility: 1}

	hand[IndexMCP] = Landmark{X: 0.55, Y: 0.72, Visibility: 1}
	hand[IndexPIP] = Landmark{X: 0.55, Y: 0.70, Visibility: 1}
	hand[IndexDIP] = Landmark{X: 0.53, Y: 0.72, Visibility: 1}
	hand[IndexTip] = Landmark{X: 0.52, Y: 0.74, Visibility: 1}

	hand[MiddleMCP] = Landmark{X: 0.50, Y: 0.71, Visibility: 1}
	hand[MiddlePIP] = Landmark{X: 0.50, Y: 0.69, Visibility: 1}
	hand[MiddleDIP] = Landmark{X: 0.49, Y: 0.72, Visibility: 1}
	hand[MiddleTip] = Landmark{X: 0.49, Y: 0.74, Visibility: 1}

	hand[RingMCP] = Landmark{X: 0.46, Y: 0.72, Visibility: 1}
	hand[RingPIP] = Landmark{X: 0.46, Y: 0.70, Visibility: 1}
	hand[RingDIP] = Landmark{X: 0.46, Y: 0.73, Visibility: 1}
	hand[RingTip] = Landmark{X: 0.47, Y: 0.75, Visibility: 1}

	hand[PinkyMCP] = Landmark{X: 0.43, Y: 0.74, Visibility: 1}
	hand[PinkyPIP] = Landmark{X: 0.43, Y: 0.72, Visibility: 1}
	hand[PinkyDIP] = Landmark{X: 0.44, Y: 0.75, Visibility: 1}
	hand[PinkyTip] = Landmark{X: 0.45, Y: 0.77, Visibility: 1}

	return hand
}

// filledBody returns a full body set with every point at the frame centre.
func filledBody(visibility float64) []Landmark {
	body := make([]Landmark, NumBodyLandmarks)
	for i := range body {
		body[i] = Landmark{X: 0.5, Y: 0.5, Visibility: visibility}
	}
	return body
}

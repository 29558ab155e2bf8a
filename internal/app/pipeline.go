package app

import (
	"time"

	"github.com/ayusman/yogkalp/internal/feedback"
	"github.com/ayusman/yogkalp/internal/gesture"
	"github.com/ayusman/yogkalp/internal/landmark"
	"github.com/ayusman/yogkalp/internal/plugin"
	"github.com/ayusman/yogkalp/internal/pose"
)

// FrameResult is the outcome of processing one frame.
type FrameResult struct {
	// Visible reports whether the key landmarks passed the gate. When false
	// nothing was extracted or scored.
	Visible bool `json:"visible"`
	// Missing lists the key landmarks that failed the gate.
	Missing []int `json:"missing,omitempty"`

	Features pose.Vector `json:"features,omitempty"`

	// Match is the best scoring reference pose, nil when none is comparable.
	Match *pose.Match `json:"match,omitempty"`
	// Confident reports whether the match accuracy exceeds the threshold.
	Confident bool              `json:"confident"`
	Level     pose.Level        `json:"level,omitempty"`
	Summary   string            `json:"summary,omitempty"`
	Feedback  *feedback.Message `json:"feedback,omitempty"`

	Target         string   `json:"target,omitempty"`
	TargetAccuracy *float64 `json:"target_accuracy,omitempty"`

	// Countdown is the time left before the next capture, zero when idle.
	Countdown time.Duration `json:"-"`
	Captured  bool          `json:"captured"`
	BatchSize int           `json:"batch_size"`
}

// ProcessFrame runs one frame through the pipeline:
//
//  1. An open palm starts the capture countdown when enabled and idle
//  2. Frames whose key landmarks are not visible stop here
//  3. Features are extracted and scored against every reference pose
//  4. A confident match feeds the coach, whose messages go to the hooks
//  5. An elapsed countdown captures the frame into the batch
func (a *App) ProcessFrame(frame landmark.Frame, now time.Time) FrameResult {
	var result FrameResult

	a.mu.Lock()
	if a.config.PalmTrigger && a.countdown.IsZero() && gesture.AnyOpenPalm(frame.Hands) {
		a.countdown = now.Add(a.config.CaptureDelay)
		a.logger.Infow("Open palm detected, capture countdown started", "delay", a.config.CaptureDelay)
	}
	countdown := a.countdown
	target := a.target
	a.mu.Unlock()

	if frame.HasBody() {
		result.Missing = a.config.Gate.Missing(frame.Body)
		result.Visible = len(result.Missing) == 0
	} else {
		result.Missing = append([]int(nil), a.config.Gate.Indices...)
	}

	if result.Visible {
		result.Features = pose.Extract(frame.Body)
		a.score(&result, target)
	}

	if !countdown.IsZero() {
		if now.Before(countdown) {
			result.Countdown = countdown.Sub(now)
		} else {
			a.finishCountdown(&result)
		}
	}

	result.BatchSize = a.BatchSize()
	return result
}

func (a *App) score(result *FrameResult, target string) {
	if match, ok := a.library.BestMatch(result.Features); ok {
		result.Match = &match
		result.Confident = match.Accuracy > a.config.MatchThreshold
		result.Level = pose.LevelOf(match.Accuracy)
		result.Summary = feedback.Summary(result.Level)
	}

	if target != "" {
		if accuracy, err := a.library.Score(result.Features, target); err == nil {
			result.Target = target
			result.TargetAccuracy = &accuracy
		}
	}

	// Coaching follows the selected target when there is one, otherwise the
	// confident best match.
	var (
		name     string
		accuracy float64
	)
	switch {
	case result.TargetAccuracy != nil:
		name, accuracy = result.Target, *result.TargetAccuracy
	case result.Confident:
		name, accuracy = result.Match.Name, result.Match.Accuracy
	default:
		return
	}

	if msg, ok := a.coach.Observe(name, accuracy); ok {
		result.Feedback = &msg
		a.fire(&plugin.Request{
			Event:    plugin.EventFeedback,
			Pose:     msg.Pose,
			Level:    string(msg.Level),
			Accuracy: msg.Accuracy,
			Message:  msg.Text,
		})
	}
}

// finishCountdown captures the frame once the countdown has elapsed. The
// countdown ends either way; a frame without a visible body is not captured.
func (a *App) finishCountdown(result *FrameResult) {
	a.mu.Lock()
	a.countdown = time.Time{}
	if result.Visible {
		a.batch = append(a.batch, result.Features.Clone())
	}
	size := len(a.batch)
	a.mu.Unlock()

	if !result.Visible {
		a.logger.Infow("Capture skipped, body not visible", "missing", result.Missing)
		return
	}

	result.Captured = true
	a.logger.Infow("Sample captured", "batch_size", size)
	a.fire(&plugin.Request{Event: plugin.EventCapture, Samples: size})
}

// Package feedback turns accuracy scores into spoken-style coaching messages.
package feedback

import (
	"fmt"
	"sync"

	"github.com/ayusman/yogkalp/internal/pose"
)

// DefaultRepeatLimit is how many times a degraded level is announced before
// the coach falls silent until the form is good again.
const DefaultRepeatLimit = 2

// Message is a coaching message for one pose.
type Message struct {
	Pose     string     `json:"pose"`
	Level    pose.Level `json:"level"`
	Accuracy float64    `json:"accuracy"`
	Text     string     `json:"text"`
}

// Summary returns the short on-screen description of a level.
func Summary(level pose.Level) string {
	switch level {
	case pose.LevelHigh:
		return "Excellent form! Keep it up."
	case pose.LevelMedium:
		return "Good form. Minor adjustments needed."
	default:
		return "Form needs improvement. Follow the guide."
	}
}

// Coach decides when a score is worth announcing. A message is produced when
// the level changes into medium or low, at most RepeatLimit times per level.
// Returning to high resets both counts. It is safe for concurrent use.
type Coach struct {
	mu     sync.Mutex
	limit  int
	last   pose.Level
	counts map[pose.Level]int
}

// NewCoach creates a Coach that announces each degraded level at most limit
// times. A limit below one uses DefaultRepeatLimit.
func NewCoach(limit int) *Coach {
	if limit < 1 {
		limit = DefaultRepeatLimit
	}
	return &Coach{
		limit:  limit,
		counts: make(map[pose.Level]int),
	}
}

// Observe records a score for poseName and returns the message to announce,
// if any.
func (c *Coach) Observe(poseName string, accuracy float64) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	level := pose.LevelOf(accuracy)
	var (
		msg  Message
		emit bool
	)

	if level != pose.LevelHigh && level != c.last && c.counts[level] < c.limit {
		c.counts[level]++
		msg = Message{
			Pose:     poseName,
			Level:    level,
			Accuracy: accuracy,
			Text:     text(poseName, level),
		}
		emit = true
	}

	if level != c.last {
		if level == pose.LevelHigh {
			c.counts = make(map[pose.Level]int)
		}
		c.last = level
	}

	return msg, emit
}

// Reset forgets the level history.
func (c *Coach) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = ""
	c.counts = make(map[pose.Level]int)
}

func text(poseName string, level pose.Level) string {
	if level == pose.LevelMedium {
		return fmt.Sprintf("Your %s form needs minor adjustments.", poseName)
	}
	return fmt.Sprintf("Your %s form needs significant improvement. Please check the guide.", poseName)
}

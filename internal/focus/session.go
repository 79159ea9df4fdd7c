// Package focus implements the countdown focus timer: a small state
// machine stepped by one-second ticks. The step function is pure so the
// machine can be exercised with synthetic ticks; a per-owner runner feeds
// it from a real ticker.
package focus

import (
	"errors"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

var ErrInvalidTransition = errors.New("invalid focus session transition")

// Session is one countdown run, optionally tied to a task.
type Session struct {
	State            State      `json:"state"`
	TaskID           string     `json:"task_id,omitempty"`
	DurationMinutes  int        `json:"duration_minutes"`
	RemainingSeconds int        `json:"remaining_seconds"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
}

// NewSession returns a running session with the full countdown ahead.
func NewSession(taskID string, durationMinutes int, now time.Time) Session {
	if durationMinutes <= 0 {
		durationMinutes = 25
	}
	return Session{
		State:            StateRunning,
		TaskID:           taskID,
		DurationMinutes:  durationMinutes,
		RemainingSeconds: durationMinutes * 60,
		StartedAt:        &now,
	}
}

// Tick advances the countdown by one second. It only moves a running
// session; remaining never goes below zero, and the completed transition
// fires exactly once, reported by done.
func (s Session) Tick() (next Session, done bool) {
	if s.State != StateRunning {
		return s, false
	}
	if s.RemainingSeconds > 0 {
		s.RemainingSeconds--
	}
	if s.RemainingSeconds == 0 {
		s.State = StateCompleted
		return s, true
	}
	return s, false
}

// Pause freezes a running countdown.
func (s Session) Pause() (Session, error) {
	if s.State != StateRunning {
		return s, ErrInvalidTransition
	}
	s.State = StatePaused
	return s, nil
}

// Resume continues a paused countdown from its frozen remainder.
func (s Session) Resume() (Session, error) {
	if s.State != StatePaused {
		return s, ErrInvalidTransition
	}
	s.State = StateRunning
	return s, nil
}

// Reset restarts the countdown at the full duration and puts the session
// straight back into running, whatever state it was in.
func (s Session) Reset(now time.Time) Session {
	s.State = StateRunning
	s.RemainingSeconds = s.DurationMinutes * 60
	s.StartedAt = &now
	return s
}

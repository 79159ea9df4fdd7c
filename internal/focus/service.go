package focus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier receives the completion side effect when a countdown reaches
// zero.
type Notifier interface {
	FocusCompleted(ctx context.Context, ownerID, taskID string, durationMinutes int)
}

// Service tracks at most one focus session per owner and drives running
// sessions from a one-second ticker. Starting a new session while one is
// active stops the old one first, so no two timers ever run for the same
// owner.
type Service struct {
	notifier Notifier
	logger   *zap.Logger
	interval time.Duration // tick period, shortened in tests
	now      func() time.Time

	mu          sync.Mutex
	sessions    map[string]Session
	stops       map[string]chan struct{}
	completions map[string][]time.Time
	wg          sync.WaitGroup
}

func NewService(notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		notifier:    notifier,
		logger:      logger,
		interval:    time.Second,
		now:         time.Now,
		sessions:    make(map[string]Session),
		stops:       make(map[string]chan struct{}),
		completions: make(map[string][]time.Time),
	}
}

// Start begins a new session for the owner, replacing any active one.
func (s *Service) Start(ownerID, taskID string, durationMinutes int) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked(ownerID)
	sn := NewSession(taskID, durationMinutes, s.now())
	s.sessions[ownerID] = sn
	s.startTimerLocked(ownerID)
	return sn
}

// Pause freezes the owner's running countdown.
func (s *Service) Pause(ownerID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.sessions[ownerID].Pause()
	if err != nil {
		return s.sessions[ownerID], err
	}
	s.stopTimerLocked(ownerID)
	s.sessions[ownerID] = next
	return next, nil
}

// Resume continues a paused countdown.
func (s *Service) Resume(ownerID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.sessions[ownerID].Resume()
	if err != nil {
		return s.sessions[ownerID], err
	}
	s.sessions[ownerID] = next
	s.startTimerLocked(ownerID)
	return next, nil
}

// Reset restarts the countdown at full duration and keeps it running.
func (s *Service) Reset(ownerID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, ok := s.sessions[ownerID]
	if !ok {
		return Session{State: StateIdle}, ErrInvalidTransition
	}
	s.stopTimerLocked(ownerID)
	next := sn.Reset(s.now())
	s.sessions[ownerID] = next
	s.startTimerLocked(ownerID)
	return next, nil
}

// Stop clears the owner's session, returning to idle.
func (s *Service) Stop(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked(ownerID)
	delete(s.sessions, ownerID)
}

// State reports the owner's current session; idle when none exists.
func (s *Service) State(ownerID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, ok := s.sessions[ownerID]
	if !ok {
		return Session{State: StateIdle}
	}
	return sn
}

// Completions lists when the owner's sessions ran to zero, oldest first.
// The gamification layer turns these into achievements and challenges.
func (s *Service) Completions(ownerID string) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Time, len(s.completions[ownerID]))
	copy(out, s.completions[ownerID])
	return out
}

// Shutdown stops every running timer and waits for them to exit.
func (s *Service) Shutdown() {
	s.mu.Lock()
	for owner := range s.stops {
		s.stopTimerLocked(owner)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) startTimerLocked(ownerID string) {
	stop := make(chan struct{})
	s.stops[ownerID] = stop
	s.wg.Add(1)
	go s.run(ownerID, stop)
}

func (s *Service) stopTimerLocked(ownerID string) {
	if stop, ok := s.stops[ownerID]; ok {
		close(stop)
		delete(s.stops, ownerID)
	}
}

func (s *Service) run(ownerID string, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.tick(ownerID, stop) {
				return
			}
		}
	}
}

// tick advances the owner's session by one second. Returns true when the
// timer goroutine should exit.
func (s *Service) tick(ownerID string, stop chan struct{}) bool {
	s.mu.Lock()

	// A Start/Stop may have raced this tick; only act if this goroutine
	// still owns the session's timer.
	if current, ok := s.stops[ownerID]; !ok || current != stop {
		s.mu.Unlock()
		return true
	}

	next, done := s.sessions[ownerID].Tick()
	s.sessions[ownerID] = next
	if !done {
		s.mu.Unlock()
		return false
	}

	delete(s.stops, ownerID)
	s.completions[ownerID] = append(s.completions[ownerID], s.now())
	s.mu.Unlock()

	s.logger.Info("focus session completed",
		zap.String("owner_id", ownerID),
		zap.String("task_id", next.TaskID),
		zap.Int("duration_minutes", next.DurationMinutes),
	)
	if s.notifier != nil {
		s.notifier.FocusCompleted(context.Background(), ownerID, next.TaskID, next.DurationMinutes)
	}
	return true
}

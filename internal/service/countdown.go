package service

import (
	"time"
)

// startCountdown launches the session's single ticker goroutine.
func (s *Session) startCountdown() {
	s.mu.Lock()
	if s.remaining <= 0 {
		begun := s.beginSubmitLocked()
		s.mu.Unlock()
		if begun {
			go s.autoSubmit()
		}
		return
	}
	s.mu.Unlock()

	go s.run()
}

func (s *Session) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.tick() {
				s.autoSubmit()
				return
			}
		}
	}
}

// tick advances the countdown by one second. It reports whether the
// deadline was reached and this tick owns the forced submission.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.closed || s.state != StateRunning || s.review {
		s.mu.Unlock()
		return false
	}

	s.remaining--
	if s.remaining < 0 {
		s.remaining = 0
	}
	remaining := s.remaining
	expired := remaining == 0 && s.beginSubmitLocked()
	s.mu.Unlock()

	if s.hooks.OnTick != nil {
		s.hooks.OnTick(remaining)
	}
	return expired
}

// beginSubmitLocked moves RUNNING to SUBMITTING and stops the timer. Only
// the first caller wins.
func (s *Session) beginSubmitLocked() bool {
	if s.state != StateRunning || s.inFlight {
		return false
	}
	s.state = StateSubmitting
	s.inFlight = true
	s.stopTimerLocked()
	return true
}

func (s *Session) stopTimerLocked() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) autoSubmit() {
	s.mu.Lock()
	answers := s.pendingAnswersLocked()
	s.mu.Unlock()

	s.log.Info().Int("exam_id", s.exam.ID).Int("answered", len(answers)).Msg("Time is up, submitting")
	s.notifyState(StateSubmitting)

	if _, err := s.deliver(s.baseCtx, answers); err != nil && s.hooks.OnAutoSubmitError != nil {
		s.hooks.OnAutoSubmitError(err)
	}
}

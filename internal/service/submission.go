package service

import (
	"context"
	"errors"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

var errEmptyResult = errors.New("server returned no result")

// Submit sends the buffered answers. A FINISHED session returns its stored
// result without another call. After a failure the session stays in
// SUBMITTING and Submit may be retried; the countdown never resumes.
func (s *Session) Submit(ctx context.Context) (*model.AttemptResult, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case s.state == StateFinished:
		res := s.result
		s.mu.Unlock()
		return res, nil
	case s.inFlight:
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	changed := s.state == StateRunning
	if changed {
		s.state = StateSubmitting
		s.stopTimerLocked()
	}
	s.inFlight = true
	answers := s.pendingAnswersLocked()
	s.mu.Unlock()

	if changed {
		s.notifyState(StateSubmitting)
	}
	return s.deliver(ctx, answers)
}

// deliver performs the network call and settles the session.
func (s *Session) deliver(ctx context.Context, answers []model.SubmittedAnswer) (*model.AttemptResult, error) {
	res, err := s.submit(ctx, answers)
	if err == nil && res == nil {
		err = errEmptyResult
	}

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.log.Warn().Err(err).Int("exam_id", s.exam.ID).Msg("Submission failed")
		return nil, &SubmitError{Err: err}
	}

	s.result = res
	s.lastErr = nil
	s.state = StateFinished
	s.review = s.exam.RevealAnswersOnFinish
	s.stopTimerLocked()
	s.mu.Unlock()

	s.log.Info().
		Int("exam_id", s.exam.ID).
		Float64("score", res.Score).
		Bool("passed", res.Passed).
		Msg("Exam submitted")

	s.notifyState(StateFinished)
	if s.onFinish != nil {
		s.onFinish(s)
	}
	s.doneOnce.Do(func() { close(s.done) })
	return res, nil
}

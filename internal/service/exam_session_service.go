package service

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// QuestionSource fetches the canonical question set of an exam.
type QuestionSource interface {
	ListByExam(ctx context.Context, examID int) ([]model.Question, error)
}

// AttemptGateway opens, submits and reads back attempts.
type AttemptGateway interface {
	Open(ctx context.Context, examID int) (string, error)
	Submit(ctx context.Context, examID, studentID int, answers []model.SubmittedAnswer, questions []model.Question) (*model.AttemptResult, error)
	StoredAnswers(ctx context.Context, attemptID int, questions []model.Question) (*model.AttemptResult, error)
}

// SessionOption configures an ExamSessionService.
type SessionOption func(*ExamSessionService)

// WithClock overrides the clock used by the attempt gate.
func WithClock(now func() time.Time) SessionOption {
	return func(s *ExamSessionService) { s.now = now }
}

// WithRand sets the source used to shuffle questions.
func WithRand(r *rand.Rand) SessionOption {
	return func(s *ExamSessionService) { s.rnd = r }
}

// WithTickInterval sets how long one countdown second lasts.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *ExamSessionService) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithHooks registers session event callbacks.
func WithHooks(h Hooks) SessionOption {
	return func(s *ExamSessionService) { s.hooks = h }
}

// WithBaseContext sets the context used for forced submissions.
func WithBaseContext(ctx context.Context) SessionOption {
	return func(s *ExamSessionService) { s.baseCtx = ctx }
}

// ExamSessionService owns the single active Session of a student.
type ExamSessionService struct {
	questions QuestionSource
	attempts  AttemptGateway
	identity  Identity
	now       func() time.Time
	interval  time.Duration
	hooks     Hooks
	baseCtx   context.Context
	log       zerolog.Logger

	mu       sync.Mutex
	rnd      *rand.Rand
	active   *Session
	starting bool
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	questions QuestionSource,
	attempts AttemptGateway,
	identity Identity,
	log zerolog.Logger,
	opts ...SessionOption,
) *ExamSessionService {
	s := &ExamSessionService{
		questions: questions,
		attempts:  attempts,
		identity:  identity,
		now:       time.Now,
		interval:  time.Second,
		baseCtx:   context.Background(),
		log:       log.With().Str("component", "exam_session_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Active returns the current session, or nil.
func (s *ExamSessionService) Active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start opens an attempt and begins a new session, closing any previous
// one. attemptsUsed is the student's consumed attempt count for exam.
func (s *ExamSessionService) Start(ctx context.Context, exam model.Exam, attemptsUsed int) (*Session, error) {
	s.mu.Lock()
	if s.starting {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if d := CanStart(exam, s.now(), attemptsUsed); !d.Allowed {
		s.mu.Unlock()
		return nil, &BlockedError{Reason: d.Reason}
	}
	if s.active != nil {
		if !s.active.tryClose() {
			s.mu.Unlock()
			return nil, ErrSubmissionInFlight
		}
		s.active = nil
	}
	s.starting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
	}()

	msg, err := s.attempts.Open(ctx, exam.ID)
	if err != nil {
		s.log.Error().Err(err).Int("exam_id", exam.ID).Msg("Failed to open attempt")
		return nil, &StartError{Stage: StageOpenAttempt, Err: err}
	}
	s.log.Info().Int("exam_id", exam.ID).Str("message", msg).Msg("Attempt opened")

	canonical, err := s.questions.ListByExam(ctx, exam.ID)
	if err != nil {
		s.log.Error().Err(err).Int("exam_id", exam.ID).Msg("Failed to load questions after opening attempt")
		return nil, &StartError{Stage: StageLoadQuestions, Err: err}
	}

	order := slices.Clone(canonical)
	if exam.ShuffleQuestions {
		s.mu.Lock()
		shuffle(order, s.rnd)
		s.mu.Unlock()
	}

	studentID := s.identity.StudentID()
	sess := newSession(sessionParams{
		exam:      exam,
		questions: order,
		interval:  s.interval,
		hooks:     s.hooks,
		submit: func(ctx context.Context, answers []model.SubmittedAnswer) (*model.AttemptResult, error) {
			return s.attempts.Submit(ctx, exam.ID, studentID, answers, canonical)
		},
		onFinish: s.finished,
		baseCtx:  s.baseCtx,
		log:      s.log,
	})

	s.mu.Lock()
	s.active = sess
	s.mu.Unlock()

	s.log.Info().
		Int("exam_id", exam.ID).
		Int("questions", len(order)).
		Int("seconds", exam.DurationSeconds()).
		Bool("shuffled", exam.ShuffleQuestions).
		Msg("Session started")

	sess.startCountdown()
	return sess, nil
}

// finished returns to the catalog unless the session enters review.
func (s *ExamSessionService) finished(sess *Session) {
	if sess.ReviewMode() {
		return
	}
	s.mu.Lock()
	if s.active == sess {
		s.active = nil
	}
	s.mu.Unlock()
}

// Cancel tears down the active session without notifying the server. It
// refuses while a submission is outstanding.
func (s *ExamSessionService) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil
	}
	if !s.active.tryClose() {
		return ErrSubmissionInFlight
	}
	s.active = nil
	return nil
}

// ReviewAttempt rebuilds the read-only walkthrough of a historical attempt
// from its stored answers, in canonical question order.
func (s *ExamSessionService) ReviewAttempt(ctx context.Context, exam model.Exam, attemptID int) (*Walkthrough, error) {
	if !exam.RevealAnswersOnFinish {
		return nil, ErrReviewUnavailable
	}

	questions, err := s.questions.ListByExam(ctx, exam.ID)
	if err != nil {
		s.log.Error().Err(err).Int("exam_id", exam.ID).Msg("Failed to load questions for review")
		return nil, err
	}
	stored, err := s.attempts.StoredAnswers(ctx, attemptID, questions)
	if err != nil {
		s.log.Error().Err(err).Int("attempt_id", attemptID).Msg("Failed to load stored answers")
		return nil, err
	}

	return newWalkthrough(questions, nil, *stored), nil
}

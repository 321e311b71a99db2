package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// SessionState is the countdown state of a Session.
type SessionState string

const (
	StateRunning    SessionState = "RUNNING"
	StateSubmitting SessionState = "SUBMITTING"
	StateFinished   SessionState = "FINISHED"
)

// Hooks receive session events. They run on the countdown goroutine or the
// submitting goroutine, never while the session is locked.
type Hooks struct {
	OnTick            func(remaining int)
	OnStateChange     func(state SessionState)
	OnAutoSubmitError func(err error)
}

// ProgressMark is one entry of the progress indicator, in display order.
type ProgressMark struct {
	Ordinal    int
	QuestionID int
	Answered   bool
}

type submitFunc func(ctx context.Context, answers []model.SubmittedAnswer) (*model.AttemptResult, error)

// Session is the ephemeral state of one in-progress attempt. It is created
// by ExamSessionService.Start and is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	exam      model.Exam
	questions []model.Question // display order, fixed for the session
	position  map[int]int
	answers   map[int]model.Answer
	current   int
	remaining int

	state    SessionState
	review   bool
	inFlight bool
	result   *model.AttemptResult
	lastErr  error
	closed   bool

	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once

	hooks    Hooks
	submit   submitFunc
	onFinish func(*Session)
	baseCtx  context.Context
	log      zerolog.Logger
}

type sessionParams struct {
	exam      model.Exam
	questions []model.Question
	interval  time.Duration
	hooks     Hooks
	submit    submitFunc
	onFinish  func(*Session)
	baseCtx   context.Context
	log       zerolog.Logger
}

func newSession(p sessionParams) *Session {
	position := make(map[int]int, len(p.questions))
	for i, q := range p.questions {
		position[q.ID] = i
	}
	return &Session{
		exam:      p.exam,
		questions: p.questions,
		position:  position,
		answers:   make(map[int]model.Answer),
		remaining: p.exam.DurationSeconds(),
		state:     StateRunning,
		interval:  p.interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		hooks:     p.hooks,
		submit:    p.submit,
		onFinish:  p.onFinish,
		baseCtx:   p.baseCtx,
		log:       p.log,
	}
}

// Exam returns the exam this session belongs to.
func (s *Session) Exam() model.Exam {
	return s.exam
}

// Questions returns a copy of the display order. The order never changes.
func (s *Session) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// Len returns the number of questions.
func (s *Session) Len() int {
	return len(s.questions)
}

// ─── Answer Buffer ────────────────────────────────────────────────────

// SetAnswer stores the answer for a question, replacing any previous one.
func (s *Session) SetAnswer(questionID int, answer model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateRunning {
		return ErrNotRunning
	}
	idx, ok := s.position[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	if !fits(s.questions[idx], answer) {
		return ErrInvalidAnswer
	}

	s.answers[questionID] = answer
	return nil
}

// Answer returns the buffered answer for a question.
func (s *Session) Answer(questionID int) (model.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[questionID]
	return a, ok
}

// AnsweredCount returns how many questions have a buffered answer.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Progress reports, per question in display order, whether it is answered.
func (s *Session) Progress() []ProgressMark {
	s.mu.Lock()
	defer s.mu.Unlock()

	marks := make([]ProgressMark, len(s.questions))
	for i, q := range s.questions {
		_, answered := s.answers[q.ID]
		marks[i] = ProgressMark{Ordinal: i + 1, QuestionID: q.ID, Answered: answered}
	}
	return marks
}

// pendingAnswersLocked returns the buffered answers in display order,
// omitting unanswered questions.
func (s *Session) pendingAnswersLocked() []model.SubmittedAnswer {
	out := make([]model.SubmittedAnswer, 0, len(s.answers))
	for _, q := range s.questions {
		if a, ok := s.answers[q.ID]; ok {
			out = append(out, model.SubmittedAnswer{QuestionID: q.ID, Answer: a})
		}
	}
	return out
}

func fits(q model.Question, a model.Answer) bool {
	if a.Kind != q.Kind.AnswerKind() {
		return false
	}
	if a.Kind == model.AnswerChoice {
		return a.Index >= 0 && a.Index < len(q.Options)
	}
	return true
}

// ─── Navigation ───────────────────────────────────────────────────────

// GoTo moves the pointer to index, clamped to the question range, and
// returns the resulting index.
func (s *Session) GoTo(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = clamp(index, len(s.questions))
	return s.current
}

// Next moves to the following question.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = clamp(s.current+1, len(s.questions))
	return s.current
}

// Previous moves to the preceding question.
func (s *Session) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = clamp(s.current-1, len(s.questions))
	return s.current
}

// Index returns the current pointer.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Current returns the question under the pointer. ok is false when the
// exam has no questions.
func (s *Session) Current() (q model.Question, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return model.Question{}, false
	}
	return s.questions[s.current].Clone(), true
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// ─── State ────────────────────────────────────────────────────────────

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// State returns the countdown state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReviewMode reports whether the session entered the read-only review.
func (s *Session) ReviewMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review
}

// Result returns the graded result once the session is FINISHED.
func (s *Session) Result() *model.AttemptResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LastError returns the most recent submission failure, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Done is closed when the session finishes or is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close tears down the session and its timer. Nothing is sent to the
// server. It is a no-op on a closed session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// tryClose closes the session unless its submission is outstanding.
func (s *Session) tryClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.closeLocked()
	return true
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.doneOnce.Do(func() { close(s.done) })
	s.log.Debug().Int("exam_id", s.exam.ID).Str("state", string(s.state)).Msg("Session closed")
}

func (s *Session) notifyState(state SessionState) {
	if s.hooks.OnStateChange != nil {
		s.hooks.OnStateChange(state)
	}
}

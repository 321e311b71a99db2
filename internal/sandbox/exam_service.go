package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// Domain Errors
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotOpen       = errors.New("exam window has not opened")
	ErrExamClosed        = errors.New("exam window has closed")
	ErrNoAttemptsLeft    = errors.New("no attempts left")
	ErrNoOpenAttempt     = errors.New("no open attempt for this exam")
	ErrNotOwner          = errors.New("attempt belongs to another student")
	ErrAttemptNotGraded  = errors.New("attempt has not been submitted")
	ErrAnswersNotVisible = errors.New("exam does not reveal answers")
	ErrUnknownQuestion   = errors.New("answer for a question outside the exam")
)

// Start messages returned by POST /examenes/{id}/iniciar.
const (
	MsgAttemptStarted = "Intento iniciado"
	MsgAttemptResumed = "Intento en curso reanudado"
)

// ExamService implements the LMS exam endpoints over a Catalog and an
// AttemptStore.
type ExamService struct {
	catalog *Catalog
	store   AttemptStore
	now     func() time.Time
	log     zerolog.Logger

	// mu serializes attempt transitions so concurrent starts cannot
	// exceed the attempt limit.
	mu sync.Mutex
}

// NewExamService creates a new ExamService. now defaults to time.Now.
func NewExamService(catalog *Catalog, store AttemptStore, now func() time.Time, log zerolog.Logger) *ExamService {
	if now == nil {
		now = time.Now
	}
	return &ExamService{
		catalog: catalog,
		store:   store,
		now:     now,
		log:     log.With().Str("component", "sandbox_exam_service").Logger(),
	}
}

// ListByAssignment returns the exams of an assignment.
func (s *ExamService) ListByAssignment(_ context.Context, assignmentID int) []model.ExamPayload {
	return s.catalog.ExamsByAssignment(assignmentID)
}

// Questions returns an exam's questions in canonical order.
func (s *ExamService) Questions(_ context.Context, examID int) ([]model.QuestionPayload, error) {
	if _, ok := s.catalog.Exam(examID); !ok {
		return nil, ErrExamNotFound
	}
	qs := s.catalog.Questions[examID]
	if qs == nil {
		qs = []model.QuestionPayload{}
	}
	return qs, nil
}

// Attempts returns a student's attempt history for an exam.
func (s *ExamService) Attempts(ctx context.Context, examID, studentID int) ([]model.AttemptPayload, error) {
	if _, ok := s.catalog.Exam(examID); !ok {
		return nil, ErrExamNotFound
	}
	records, err := s.store.List(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]model.AttemptPayload, 0, len(records))
	for _, r := range records {
		out = append(out, r.AttemptPayload)
	}
	return out, nil
}

// StartAttempt opens an attempt, reusing one the student left open.
func (s *ExamService) StartAttempt(ctx context.Context, examID, studentID int) (string, error) {
	exam, ok := s.catalog.Exam(examID)
	if !ok {
		return "", ErrExamNotFound
	}

	now := s.now()
	switch {
	case now.Before(exam.Start):
		return "", ErrExamNotOpen
	case now.After(exam.End):
		return "", ErrExamClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.List(ctx, examID, studentID)
	if err != nil {
		return "", err
	}
	used := 0
	for _, r := range records {
		if r.Open() {
			s.log.Info().Int("exam_id", examID).Int("student_id", studentID).Int("attempt_id", r.ID).Msg("Reusing open attempt")
			return MsgAttemptResumed, nil
		}
		used++
	}
	if used >= exam.MaxAttempts {
		return "", ErrNoAttemptsLeft
	}

	r, err := s.store.Create(ctx, examID, studentID, now)
	if err != nil {
		return "", err
	}
	s.log.Info().Int("exam_id", examID).Int("student_id", studentID).Int("attempt_id", r.ID).Msg("Attempt opened")
	return MsgAttemptStarted, nil
}

// Submit grades the student's open attempt and closes it.
func (s *ExamService) Submit(ctx context.Context, studentID int, req model.SubmitRequest) (*model.ResultPayload, error) {
	exam, ok := s.catalog.Exam(req.ExamID)
	if !ok {
		return nil, ErrExamNotFound
	}
	questions := s.catalog.Questions[exam.ID]

	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	answers := make(map[int]string, len(req.Answers))
	for _, a := range req.Answers {
		if !known[a.QuestionID] {
			return nil, fmt.Errorf("question %d: %w", a.QuestionID, ErrUnknownQuestion)
		}
		answers[a.QuestionID] = a.Answer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.List(ctx, exam.ID, studentID)
	if err != nil {
		return nil, err
	}
	var open *AttemptRecord
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Open() {
			open = &records[i]
			break
		}
	}
	if open == nil {
		return nil, ErrNoOpenAttempt
	}

	res := Grade(exam, questions, answers, exam.RevealAnswers)
	if err := s.store.Finish(ctx, open.ID, s.now(), res.Score, res.Passed, answers); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("exam_id", exam.ID).
		Int("student_id", studentID).
		Int("attempt_id", open.ID).
		Int("answered", len(answers)).
		Float64("score", res.Score).
		Msg("Attempt graded")
	return &res, nil
}

// StoredAnswers regrades a finished attempt for historical review.
func (s *ExamService) StoredAnswers(ctx context.Context, attemptID, studentID int) (*model.ResultPayload, error) {
	r, err := s.store.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if r.StudentID != studentID {
		return nil, ErrNotOwner
	}
	if r.Open() {
		return nil, ErrAttemptNotGraded
	}
	exam, ok := s.catalog.Exam(r.ExamID)
	if !ok {
		return nil, ErrExamNotFound
	}
	if !exam.RevealAnswers {
		return nil, ErrAnswersNotVisible
	}

	res := Grade(exam, s.catalog.Questions[exam.ID], r.Answers, true)
	return &res, nil
}

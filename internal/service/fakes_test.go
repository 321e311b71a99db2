package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

var errNetwork = errors.New("connection refused")

type fixedIdentity int

func (f fixedIdentity) StudentID() int { return int(f) }

func openExam(id int) model.Exam {
	return model.Exam{
		ID:              id,
		Title:           fmt.Sprintf("Examen %d", id),
		Start:           testNow.Add(-time.Hour),
		End:             testNow.Add(time.Hour),
		DurationMinutes: 1,
		MaxAttempts:     2,
		PassThreshold:   11,
	}
}

func choiceQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		correct := model.ChoiceAnswer(0)
		qs[i] = model.Question{
			ID:       i + 1,
			Ordinal:  i + 1,
			Prompt:   fmt.Sprintf("Pregunta %d", i+1),
			Kind:     model.QuestionMultipleChoice,
			Options:  []string{"a", "b", "c"},
			Correct:  &correct,
			Feedback: fmt.Sprintf("Repase el tema %d.", i+1),
			Points:   1,
		}
	}
	return qs
}

// fakeGateway serves every collaborator interface from memory and counts
// submissions.
type fakeGateway struct {
	mu sync.Mutex

	exams        []model.Exam
	examsErr     error
	history      map[int][]model.Attempt
	historyErr   map[int]error
	questions    []model.Question
	questionsErr error
	openErr      error
	submitErr    error
	result       *model.AttemptResult
	stored       *model.AttemptResult

	// When release is set, Submit signals entered and waits on release.
	entered chan struct{}
	release chan struct{}

	openCalls   int
	submitCalls int
	lastAnswers []model.SubmittedAnswer
}

func newFakeGateway(questions []model.Question) *fakeGateway {
	return &fakeGateway{
		questions: questions,
		result:    &model.AttemptResult{Score: 14, Passed: true, PointsObtained: 7, PointsPossible: 10, Percentage: 70},
	}
}

func (f *fakeGateway) blockSubmissions() {
	f.entered = make(chan struct{}, 4)
	f.release = make(chan struct{})
}

func (f *fakeGateway) ListByAssignment(_ context.Context, _ int) ([]model.Exam, error) {
	return f.exams, f.examsErr
}

func (f *fakeGateway) ListByStudent(_ context.Context, examID, _ int) ([]model.Attempt, error) {
	if err := f.historyErr[examID]; err != nil {
		return nil, err
	}
	return f.history[examID], nil
}

func (f *fakeGateway) ListByExam(_ context.Context, _ int) ([]model.Question, error) {
	if f.questionsErr != nil {
		return nil, f.questionsErr
	}
	out := make([]model.Question, len(f.questions))
	copy(out, f.questions)
	return out, nil
}

func (f *fakeGateway) Open(_ context.Context, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	if f.openErr != nil {
		return "", f.openErr
	}
	return "Intento iniciado", nil
}

func (f *fakeGateway) Submit(_ context.Context, _, _ int, answers []model.SubmittedAnswer, _ []model.Question) (*model.AttemptResult, error) {
	f.mu.Lock()
	f.submitCalls++
	f.lastAnswers = answers
	err := f.submitErr
	res := f.result
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if release != nil {
		entered <- struct{}{}
		<-release
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *fakeGateway) StoredAnswers(_ context.Context, _ int, _ []model.Question) (*model.AttemptResult, error) {
	if f.stored == nil {
		return nil, errNetwork
	}
	return f.stored, nil
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}

func (f *fakeGateway) setSubmitErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitErr = err
}

// newTestController uses an hour-long tick so tests drive the countdown
// through tick directly.
func newTestController(gw *fakeGateway, opts ...SessionOption) *ExamSessionService {
	base := []SessionOption{
		WithClock(func() time.Time { return testNow }),
		WithTickInterval(time.Hour),
	}
	return NewExamSessionService(gw, gw, fixedIdentity(4), zerolog.Nop(), append(base, opts...)...)
}

package repository

import (
	"context"
	"fmt"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
	"github.com/stemsi/exstem-exam-client/internal/model"
)

// AttemptRepository opens, submits and reads attempts through the LMS API.
type AttemptRepository struct {
	api *apiclient.Client
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(api *apiclient.Client) *AttemptRepository {
	return &AttemptRepository{api: api}
}

// ListByStudent retrieves a student's attempt history for an exam.
func (r *AttemptRepository) ListByStudent(ctx context.Context, examID, studentID int) ([]model.Attempt, error) {
	var payloads []model.AttemptPayload
	if err := r.api.Get(ctx, fmt.Sprintf("/examenes/%d/intentos/%d", examID, studentID), &payloads); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	attempts := make([]model.Attempt, 0, len(payloads))
	for _, p := range payloads {
		a, err := attemptFromPayload(p)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// Open registers a new attempt and returns the server's message.
func (r *AttemptRepository) Open(ctx context.Context, examID int) (string, error) {
	var resp model.StartAttemptResponse
	if err := r.api.Post(ctx, fmt.Sprintf("/examenes/%d/iniciar", examID), nil, &resp); err != nil {
		return "", fmt.Errorf("open attempt: %w", err)
	}
	return resp.Message, nil
}

// Submit posts the answered questions and returns the graded result.
// questions supplies the kinds needed to decode a returned breakdown.
func (r *AttemptRepository) Submit(ctx context.Context, examID, studentID int, answers []model.SubmittedAnswer, questions []model.Question) (*model.AttemptResult, error) {
	var resp model.ResultPayload
	body := submitPayload(examID, studentID, answers)
	if err := r.api.Post(ctx, fmt.Sprintf("/examenes/%d/enviar", examID), body, &resp); err != nil {
		return nil, fmt.Errorf("submit answers: %w", err)
	}

	res, err := resultFromPayload(resp, kindsOf(questions))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// StoredAnswers retrieves a finished attempt's answers and grade. Answers
// come back in Breakdown, decoded using the kinds of questions.
func (r *AttemptRepository) StoredAnswers(ctx context.Context, attemptID int, questions []model.Question) (*model.AttemptResult, error) {
	var resp model.ResultPayload
	if err := r.api.Get(ctx, fmt.Sprintf("/intentos/%d/respuestas", attemptID), &resp); err != nil {
		return nil, fmt.Errorf("stored answers: %w", err)
	}

	res, err := resultFromPayload(resp, kindsOf(questions))
	if err != nil {
		return nil, err
	}
	if res.Breakdown == nil {
		res.Breakdown = []model.QuestionResult{}
	}
	return &res, nil
}

func kindsOf(questions []model.Question) map[int]model.QuestionKind {
	kinds := make(map[int]model.QuestionKind, len(questions))
	for _, q := range questions {
		kinds[q.ID] = q.Kind
	}
	return kinds
}

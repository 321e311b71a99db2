package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
	"github.com/stemsi/exstem-exam-client/internal/model"
)

// QuestionRepository reads exam questions from the LMS API.
type QuestionRepository struct {
	api *apiclient.Client
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(api *apiclient.Client) *QuestionRepository {
	return &QuestionRepository{api: api}
}

// ListByExam retrieves all questions for a given exam, ordered by ordinal.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID int) ([]model.Question, error) {
	var payloads []model.QuestionPayload
	if err := r.api.Get(ctx, fmt.Sprintf("/examenes/%d/preguntas", examID), &payloads); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	questions := make([]model.Question, 0, len(payloads))
	seen := make(map[int]bool, len(payloads))
	for _, p := range payloads {
		q, err := questionFromPayload(p)
		if err != nil {
			return nil, err
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Ordinal < questions[j].Ordinal
	})
	return questions, nil
}

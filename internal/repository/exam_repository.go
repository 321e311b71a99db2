package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
	"github.com/stemsi/exstem-exam-client/internal/model"
)

// ExamRepository reads exam metadata from the LMS API.
type ExamRepository struct {
	api *apiclient.Client
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(api *apiclient.Client) *ExamRepository {
	return &ExamRepository{api: api}
}

// ListByAssignment retrieves the exams visible for a course assignment.
// Exams that fail to decode are left out; the valid ones are returned
// together with the joined decode errors.
func (r *ExamRepository) ListByAssignment(ctx context.Context, assignmentID int) ([]model.Exam, error) {
	var payloads []model.ExamPayload
	if err := r.api.Get(ctx, fmt.Sprintf("/examenes/asignacion/%d", assignmentID), &payloads); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	exams := make([]model.Exam, 0, len(payloads))
	var errs []error
	for _, p := range payloads {
		e, err := examFromPayload(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		exams = append(exams, e)
	}
	return exams, errors.Join(errs...)
}

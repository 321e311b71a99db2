package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// ErrAttemptNotFound is returned when an attempt ID is unknown to the store.
var ErrAttemptNotFound = errors.New("attempt not found")

// AttemptRecord is a stored attempt plus the answers it was submitted with.
type AttemptRecord struct {
	model.AttemptPayload
	Answers map[int]string `json:"-"`
}

// Open reports whether the attempt has not been submitted yet.
func (r AttemptRecord) Open() bool {
	return r.FinishedAt == nil
}

// AttemptStore persists sandbox attempts.
type AttemptStore interface {
	// List returns a student's attempts for an exam, oldest first.
	List(ctx context.Context, examID, studentID int) ([]AttemptRecord, error)
	Create(ctx context.Context, examID, studentID int, startedAt time.Time) (AttemptRecord, error)
	Finish(ctx context.Context, attemptID int, finishedAt time.Time, score float64, passed bool, answers map[int]string) error
	Get(ctx context.Context, attemptID int) (AttemptRecord, error)
}

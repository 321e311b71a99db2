package model

import (
	"time"
)

// Attempt is the client's mirror of a server-side attempt.
type Attempt struct {
	ID         int
	StudentID  int
	ExamID     int
	StartedAt  time.Time
	FinishedAt *time.Time
	Score      *float64
	Passed     *bool
}

// Completed reports whether the attempt was finalized and therefore counts
// against the exam's attempt limit.
func (a Attempt) Completed() bool {
	return a.FinishedAt != nil
}

// SubmittedAnswer is one buffered answer as it leaves the session.
type SubmittedAnswer struct {
	QuestionID int
	Answer     Answer
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID int
	Answer     *Answer
	// Correct is nil when the server did not grade the question (e.g. essays).
	Correct *bool
	Points  *float64
}

// AttemptResult is the graded response to a submission.
type AttemptResult struct {
	// Score is on the 0–20 scale.
	Score          float64
	Passed         bool
	PointsObtained float64
	PointsPossible float64
	Percentage     float64
	// Breakdown is nil unless the exam grants per-question results.
	Breakdown []QuestionResult
}

// BreakdownByQuestion indexes the breakdown by question ID.
func (r AttemptResult) BreakdownByQuestion() map[int]QuestionResult {
	out := make(map[int]QuestionResult, len(r.Breakdown))
	for _, qr := range r.Breakdown {
		out[qr.QuestionID] = qr
	}
	return out
}

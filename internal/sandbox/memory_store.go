package sandbox

import (
	"context"
	"sync"
	"time"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// MemoryStore keeps attempts in process memory. Used when REDIS_URL is unset.
type MemoryStore struct {
	mu       sync.Mutex
	seq      int
	attempts map[int]AttemptRecord
	order    []int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[int]AttemptRecord)}
}

func (s *MemoryStore) List(_ context.Context, examID, studentID int) ([]AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []AttemptRecord{}
	for _, id := range s.order {
		r := s.attempts[id]
		if r.ExamID == examID && r.StudentID == studentID {
			out = append(out, copyRecord(r))
		}
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, examID, studentID int, startedAt time.Time) (AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	r := AttemptRecord{AttemptPayload: model.AttemptPayload{
		ID:        s.seq,
		StudentID: studentID,
		ExamID:    examID,
		StartedAt: startedAt,
	}}
	s.attempts[r.ID] = r
	s.order = append(s.order, r.ID)
	return copyRecord(r), nil
}

func (s *MemoryStore) Finish(_ context.Context, attemptID int, finishedAt time.Time, score float64, passed bool, answers map[int]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.attempts[attemptID]
	if !ok {
		return ErrAttemptNotFound
	}
	r.FinishedAt = &finishedAt
	r.Score = &score
	r.Passed = &passed
	r.Answers = make(map[int]string, len(answers))
	for k, v := range answers {
		r.Answers[k] = v
	}
	s.attempts[attemptID] = r
	return nil
}

func (s *MemoryStore) Get(_ context.Context, attemptID int) (AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.attempts[attemptID]
	if !ok {
		return AttemptRecord{}, ErrAttemptNotFound
	}
	return copyRecord(r), nil
}

func copyRecord(r AttemptRecord) AttemptRecord {
	if r.Answers != nil {
		answers := make(map[int]string, len(r.Answers))
		for k, v := range r.Answers {
			answers[k] = v
		}
		r.Answers = answers
	}
	return r
}

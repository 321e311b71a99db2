package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/exstem-exam-client/internal/config"
	"github.com/stemsi/exstem-exam-client/internal/model"
)

// RedisStore keeps attempts in Redis so they survive sandbox restarts.
//
// Layout: a JSON document per attempt, a list of attempt IDs per
// student and exam, and a hash of question ID → answer per attempt.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore on an already connected client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) List(ctx context.Context, examID, studentID int) ([]AttemptRecord, error) {
	ids, err := s.rdb.LRange(ctx, config.CacheKey.StudentAttemptsKey(examID, studentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempt ids: %w", err)
	}

	out := make([]AttemptRecord, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("attempt id %q: %w", raw, err)
		}
		r, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RedisStore) Create(ctx context.Context, examID, studentID int, startedAt time.Time) (AttemptRecord, error) {
	id, err := s.rdb.Incr(ctx, config.CacheKey.AttemptSequenceKey()).Result()
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("allocate attempt id: %w", err)
	}

	r := AttemptRecord{AttemptPayload: model.AttemptPayload{
		ID:        int(id),
		StudentID: studentID,
		ExamID:    examID,
		StartedAt: startedAt,
	}}
	doc, err := json.Marshal(r.AttemptPayload)
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("marshal attempt: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.AttemptKey(r.ID), doc, 0)
		pipe.RPush(ctx, config.CacheKey.StudentAttemptsKey(examID, studentID), r.ID)
		return nil
	})
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("store attempt: %w", err)
	}
	return r, nil
}

func (s *RedisStore) Finish(ctx context.Context, attemptID int, finishedAt time.Time, score float64, passed bool, answers map[int]string) error {
	r, err := s.Get(ctx, attemptID)
	if err != nil {
		return err
	}
	r.FinishedAt = &finishedAt
	r.Score = &score
	r.Passed = &passed

	doc, err := json.Marshal(r.AttemptPayload)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	fields := make(map[string]interface{}, len(answers))
	for qid, a := range answers {
		fields[strconv.Itoa(qid)] = a
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.AttemptKey(attemptID), doc, 0)
		if len(fields) > 0 {
			pipe.HSet(ctx, config.CacheKey.AttemptAnswersKey(attemptID), fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("finish attempt: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, attemptID int) (AttemptRecord, error) {
	doc, err := s.rdb.Get(ctx, config.CacheKey.AttemptKey(attemptID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return AttemptRecord{}, ErrAttemptNotFound
		}
		return AttemptRecord{}, fmt.Errorf("get attempt: %w", err)
	}

	var r AttemptRecord
	if err := json.Unmarshal(doc, &r.AttemptPayload); err != nil {
		return AttemptRecord{}, fmt.Errorf("unmarshal attempt: %w", err)
	}

	stored, err := s.rdb.HGetAll(ctx, config.CacheKey.AttemptAnswersKey(attemptID)).Result()
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("get answers: %w", err)
	}
	if len(stored) > 0 || !r.Open() {
		r.Answers = make(map[int]string, len(stored))
		for k, v := range stored {
			qid, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			r.Answers[qid] = v
		}
	}
	return r, nil
}

package config

import (
	"fmt"
)

// CacheKeyStruct builds the Redis keys used by the sandbox attempt store.
type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptSequenceKey returns the counter key used to allocate attempt IDs
func (r *CacheKeyStruct) AttemptSequenceKey() string {
	return "sandbox:attempt_seq"
}

// AttemptKey returns the key holding a single attempt record
func (r *CacheKeyStruct) AttemptKey(attemptID int) string {
	return fmt.Sprintf("sandbox:attempt:%d", attemptID)
}

// StudentAttemptsKey returns the list key of a student's attempt IDs for an exam
func (r *CacheKeyStruct) StudentAttemptsKey(examID, studentID int) string {
	return fmt.Sprintf("sandbox:student:%d:exam:%d:attempts", studentID, examID)
}

// AttemptAnswersKey returns the hash key of the answers submitted for an attempt
func (r *CacheKeyStruct) AttemptAnswersKey(attemptID int) string {
	return fmt.Sprintf("sandbox:attempt:%d:answers", attemptID)
}

var CacheKey = NewCacheKeyStruct()

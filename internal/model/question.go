package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// QuestionKind enumerates the supported question types.
type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionTrueFalse      QuestionKind = "true_false"
	QuestionShortAnswer    QuestionKind = "short_answer"
	QuestionEssay          QuestionKind = "essay"
)

// ErrUnknownQuestionKind is returned for a tipo_pregunta value outside the
// supported set.
var ErrUnknownQuestionKind = errors.New("unknown question kind")

// wireKinds maps the LMS spelling of each kind.
var wireKinds = map[QuestionKind]string{
	QuestionMultipleChoice: "opcion_multiple",
	QuestionTrueFalse:      "verdadero_falso",
	QuestionShortAnswer:    "respuesta_corta",
	QuestionEssay:          "ensayo",
}

// ParseQuestionKind reads a tipo_pregunta value. The LMS sends the Spanish
// form; the English constant names are accepted as well.
func ParseQuestionKind(s string) (QuestionKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, wire := range wireKinds {
		if s == wire || s == string(kind) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownQuestionKind, s)
}

// Wire returns the kind as the LMS spells it.
func (k QuestionKind) Wire() string {
	if w, ok := wireKinds[k]; ok {
		return w
	}
	return string(k)
}

// AnswerKind returns the Answer variant a question of this kind accepts.
func (k QuestionKind) AnswerKind() AnswerKind {
	switch k {
	case QuestionMultipleChoice:
		return AnswerChoice
	case QuestionTrueFalse:
		return AnswerBoolean
	default:
		return AnswerText
	}
}

// Question is a single exam question in canonical order.
type Question struct {
	ID      int
	Ordinal int
	Prompt  string
	Kind    QuestionKind
	// Options is only populated for multiple-choice questions.
	Options []string
	// Correct is nil when the server withholds the answer.
	Correct  *Answer
	Feedback string
	Points   float64
}

// Clone returns a copy that shares no slices or pointers with q.
func (q Question) Clone() Question {
	q.Options = slices.Clone(q.Options)
	if q.Correct != nil {
		c := *q.Correct
		q.Correct = &c
	}
	return q
}

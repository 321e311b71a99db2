package model

import (
	"strconv"
)

// AnswerKind tags which field of Answer carries the value.
type AnswerKind string

const (
	AnswerChoice  AnswerKind = "choice"
	AnswerBoolean AnswerKind = "boolean"
	AnswerText    AnswerKind = "text"
)

// Answer is a student response or a correct-answer reference.
// Only the field matching Kind is meaningful.
type Answer struct {
	Kind  AnswerKind
	Index int
	Value bool
	Text  string
}

// ChoiceAnswer selects the zero-based option index.
func ChoiceAnswer(index int) Answer {
	return Answer{Kind: AnswerChoice, Index: index}
}

// BooleanAnswer answers a true/false question.
func BooleanAnswer(v bool) Answer {
	return Answer{Kind: AnswerBoolean, Value: v}
}

// TextAnswer holds a short-answer or essay response.
func TextAnswer(s string) Answer {
	return Answer{Kind: AnswerText, Text: s}
}

// Equal reports whether both answers carry the same tagged value.
func (a Answer) Equal(b Answer) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case AnswerChoice:
		return a.Index == b.Index
	case AnswerBoolean:
		return a.Value == b.Value
	default:
		return a.Text == b.Text
	}
}

// String renders the answer for display.
func (a Answer) String() string {
	switch a.Kind {
	case AnswerChoice:
		return "opción " + strconv.Itoa(a.Index+1)
	case AnswerBoolean:
		if a.Value {
			return "Verdadero"
		}
		return "Falso"
	default:
		return a.Text
	}
}

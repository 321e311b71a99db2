package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/validator"
)

// Wire literals for true/false answers.
const (
	wireTrue  = "verdadero"
	wireFalse = "falso"
)

// EncodeAnswer renders an answer in the LMS wire form: a stringified index
// for choices, "verdadero"/"falso" for booleans and the raw text otherwise.
func EncodeAnswer(a model.Answer) string {
	switch a.Kind {
	case model.AnswerChoice:
		return strconv.Itoa(a.Index)
	case model.AnswerBoolean:
		if a.Value {
			return wireTrue
		}
		return wireFalse
	default:
		return a.Text
	}
}

// DecodeAnswer parses a wire answer for a question of the given kind.
func DecodeAnswer(kind model.QuestionKind, raw string) (model.Answer, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case model.QuestionMultipleChoice:
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 {
			return model.Answer{}, fmt.Errorf("invalid option index %q", raw)
		}
		return model.ChoiceAnswer(idx), nil
	case model.QuestionTrueFalse:
		switch strings.ToLower(raw) {
		case wireTrue, "true":
			return model.BooleanAnswer(true), nil
		case wireFalse, "false":
			return model.BooleanAnswer(false), nil
		}
		return model.Answer{}, fmt.Errorf("invalid true/false answer %q", raw)
	default:
		return model.TextAnswer(raw), nil
	}
}

// parseOptions decodes the options field, which the LMS sends as a JSON
// array encoded inside a string (occasionally as a bare array).
func parseOptions(raw model.FlexString) ([]string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(s), &opts); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	return opts, nil
}

func examFromPayload(p model.ExamPayload) (model.Exam, error) {
	if err := validator.Struct(p); err != nil {
		return model.Exam{}, fmt.Errorf("exam %d: %w", p.ID, err)
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return model.Exam{}, fmt.Errorf("exam %d: missing exam window", p.ID)
	}
	return model.Exam{
		ID:                    p.ID,
		Title:                 p.Title,
		Description:           p.Description,
		Type:                  p.Type,
		Start:                 p.Start,
		End:                   p.End,
		DurationMinutes:       p.DurationMinutes,
		MaxAttempts:           p.MaxAttempts,
		PassThreshold:         p.PassThreshold,
		RevealAnswersOnFinish: p.RevealAnswers,
		ShuffleQuestions:      p.Shuffle,
		QuestionCount:         p.QuestionCount,
	}, nil
}

func questionFromPayload(p model.QuestionPayload) (model.Question, error) {
	if err := validator.Struct(p); err != nil {
		return model.Question{}, fmt.Errorf("question %d: %w", p.ID, err)
	}
	kind, err := model.ParseQuestionKind(p.Kind)
	if err != nil {
		return model.Question{}, fmt.Errorf("question %d: %w", p.ID, err)
	}

	q := model.Question{
		ID:      p.ID,
		Ordinal: p.Ordinal,
		Prompt:  p.Prompt,
		Kind:    kind,
		Points:  p.Points,
	}
	if p.Feedback != nil {
		q.Feedback = *p.Feedback
	}

	if q.Kind == model.QuestionMultipleChoice {
		opts, err := parseOptions(p.Options)
		if err != nil {
			return model.Question{}, fmt.Errorf("question %d: %w", p.ID, err)
		}
		if len(opts) == 0 {
			return model.Question{}, fmt.Errorf("question %d: multiple choice without options", p.ID)
		}
		q.Options = opts
	}

	if p.Correct != nil && strings.TrimSpace(string(*p.Correct)) != "" {
		correct, err := DecodeAnswer(q.Kind, string(*p.Correct))
		if err != nil {
			return model.Question{}, fmt.Errorf("question %d correct answer: %w", p.ID, err)
		}
		if correct.Kind == model.AnswerChoice && correct.Index >= len(q.Options) {
			return model.Question{}, fmt.Errorf("question %d: correct option %d out of range", p.ID, correct.Index)
		}
		q.Correct = &correct
	}
	return q, nil
}

func attemptFromPayload(p model.AttemptPayload) (model.Attempt, error) {
	if err := validator.Struct(p); err != nil {
		return model.Attempt{}, fmt.Errorf("attempt %d: %w", p.ID, err)
	}
	return model.Attempt{
		ID:         p.ID,
		StudentID:  p.StudentID,
		ExamID:     p.ExamID,
		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,
		Score:      p.Score,
		Passed:     p.Passed,
	}, nil
}

// resultFromPayload converts a graded result. kinds maps question IDs to
// their kind so stored answers can be decoded; answers for unknown
// questions are kept as text.
func resultFromPayload(p model.ResultPayload, kinds map[int]model.QuestionKind) (model.AttemptResult, error) {
	if err := validator.Struct(p); err != nil {
		return model.AttemptResult{}, fmt.Errorf("result: %w", err)
	}

	res := model.AttemptResult{
		Score:          p.Score,
		Passed:         p.Passed,
		PointsObtained: p.PointsObtained,
		PointsPossible: p.PointsPossible,
		Percentage:     p.Percentage,
	}
	if p.Answers == nil {
		return res, nil
	}

	res.Breakdown = make([]model.QuestionResult, 0, len(p.Answers))
	for _, ap := range p.Answers {
		if ap.QuestionID <= 0 {
			return model.AttemptResult{}, fmt.Errorf("result: answer without question id")
		}
		qr := model.QuestionResult{
			QuestionID: ap.QuestionID,
			Correct:    ap.Correct,
			Points:     ap.Points,
		}
		if raw := string(ap.Answer); raw != "" {
			kind, ok := kinds[ap.QuestionID]
			if !ok {
				kind = model.QuestionShortAnswer
			}
			a, err := DecodeAnswer(kind, raw)
			if err != nil {
				return model.AttemptResult{}, fmt.Errorf("result question %d: %w", ap.QuestionID, err)
			}
			qr.Answer = &a
		}
		res.Breakdown = append(res.Breakdown, qr)
	}
	return res, nil
}

// submitPayload builds the submission body. Answers keep the order given;
// the slice is never nil so an empty submission encodes as [].
func submitPayload(examID, studentID int, answers []model.SubmittedAnswer) model.SubmitRequest {
	out := model.SubmitRequest{
		StudentID: studentID,
		ExamID:    examID,
		Answers:   make([]model.SubmittedAnswerPayload, 0, len(answers)),
	}
	for _, a := range answers {
		out.Answers = append(out.Answers, model.SubmittedAnswerPayload{
			QuestionID: a.QuestionID,
			Answer:     EncodeAnswer(a.Answer),
		})
	}
	return out
}

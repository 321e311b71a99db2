package sandbox

import (
	"math"
	"strconv"
	"strings"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// MaxScore is the top of the grading scale.
const MaxScore = 20.0

// Grade scores answers against the exam's questions. Questions without a
// reference answer (essays) are left ungraded and excluded from the
// possible points. The per-question breakdown is included only when
// withBreakdown is set; it then lists every question in canonical order.
func Grade(exam model.ExamPayload, questions []model.QuestionPayload, answers map[int]string, withBreakdown bool) model.ResultPayload {
	var obtained, possible float64
	breakdown := make([]model.AnswerResultPayload, 0, len(questions))

	for _, q := range questions {
		raw := answers[q.ID]
		entry := model.AnswerResultPayload{QuestionID: q.ID, Answer: model.FlexString(raw)}

		if correct, graded := gradeOne(q, raw); graded {
			possible += q.Points
			pts := 0.0
			if correct {
				pts = q.Points
				obtained += pts
			}
			entry.Correct = &correct
			entry.Points = &pts
		}
		breakdown = append(breakdown, entry)
	}

	res := model.ResultPayload{PointsObtained: obtained, PointsPossible: possible}
	if possible > 0 {
		res.Score = round2(obtained / possible * MaxScore)
		res.Percentage = round2(obtained / possible * 100)
	}
	res.Passed = res.Score >= exam.PassThreshold
	if withBreakdown {
		res.Answers = breakdown
	}
	return res
}

// gradeOne reports whether raw is correct and whether q is auto-gradable.
func gradeOne(q model.QuestionPayload, raw string) (correct, graded bool) {
	kind, err := model.ParseQuestionKind(q.Kind)
	if err != nil || q.Correct == nil || kind == model.QuestionEssay {
		return false, false
	}
	want := strings.TrimSpace(string(*q.Correct))
	if want == "" {
		return false, false
	}
	got := strings.TrimSpace(raw)
	if got == "" {
		return false, true
	}

	switch kind {
	case model.QuestionMultipleChoice:
		w, err1 := strconv.Atoi(want)
		g, err2 := strconv.Atoi(got)
		return err1 == nil && err2 == nil && w == g, true
	case model.QuestionTrueFalse:
		return normalizeBool(want) == normalizeBool(got) && normalizeBool(got) != "", true
	default:
		return strings.EqualFold(want, got), true
	}
}

func normalizeBool(s string) string {
	switch strings.ToLower(s) {
	case "verdadero", "true":
		return "verdadero"
	case "falso", "false":
		return "falso"
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package service

import (
	"slices"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// OptionMark classifies a multiple-choice option in review.
type OptionMark string

const (
	MarkCorrect   OptionMark = "correct"
	MarkWrongPick OptionMark = "wrong_pick"
	MarkNeutral   OptionMark = "neutral"
)

// Verdict is the recorded correctness of one answer.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictUnknown   Verdict = "unknown"
)

// ReviewOption is one multiple-choice option as shown in review.
type ReviewOption struct {
	Index  int
	Text   string
	Mark   OptionMark
	Picked bool
}

// ReviewItem is the read-only view of one question.
type ReviewItem struct {
	Ordinal  int
	Question model.Question
	Answer   *model.Answer
	Correct  *model.Answer
	Verdict  Verdict
	Points   *float64
	Options  []ReviewOption
	// Feedback is empty unless Verdict is VerdictIncorrect.
	Feedback string
}

func (it ReviewItem) clone() ReviewItem {
	it.Question = it.Question.Clone()
	it.Answer = clonePtr(it.Answer)
	it.Correct = clonePtr(it.Correct)
	it.Points = clonePtr(it.Points)
	it.Options = slices.Clone(it.Options)
	return it
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Walkthrough navigates review items. It never touches a session's answers.
type Walkthrough struct {
	items   []ReviewItem
	current int
	result  model.AttemptResult
}

func newWalkthrough(questions []model.Question, answers map[int]model.Answer, result model.AttemptResult) *Walkthrough {
	breakdown := result.BreakdownByQuestion()
	items := make([]ReviewItem, len(questions))
	for i, q := range questions {
		items[i] = reviewItem(i+1, q, answers, breakdown)
	}
	return &Walkthrough{items: items, result: result}
}

func reviewItem(ordinal int, q model.Question, answers map[int]model.Answer, breakdown map[int]model.QuestionResult) ReviewItem {
	item := ReviewItem{Ordinal: ordinal, Question: q, Correct: q.Correct}

	graded, hasGrade := breakdown[q.ID]
	if a, ok := answers[q.ID]; ok {
		item.Answer = &a
	} else if hasGrade && graded.Answer != nil {
		a := *graded.Answer
		item.Answer = &a
	}
	if hasGrade {
		item.Points = graded.Points
	}

	item.Verdict = verdictFor(q, item.Answer, graded, hasGrade)
	if item.Verdict == VerdictIncorrect {
		item.Feedback = q.Feedback
	}

	if q.Kind == model.QuestionMultipleChoice {
		item.Options = optionMarks(q, item.Answer, item.Verdict)
	}
	return item
}

// verdictFor prefers the server's grade and falls back to comparing against
// the known correct answer for choice and boolean questions.
func verdictFor(q model.Question, answer *model.Answer, graded model.QuestionResult, hasGrade bool) Verdict {
	if hasGrade && graded.Correct != nil {
		if *graded.Correct {
			return VerdictCorrect
		}
		return VerdictIncorrect
	}

	if q.Correct == nil || q.Kind.AnswerKind() == model.AnswerText {
		return VerdictUnknown
	}
	if answer != nil && answer.Equal(*q.Correct) {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

func optionMarks(q model.Question, answer *model.Answer, verdict Verdict) []ReviewOption {
	correct, picked := -1, -1
	if answer != nil && answer.Kind == model.AnswerChoice {
		picked = answer.Index
	}
	switch {
	case q.Correct != nil && q.Correct.Kind == model.AnswerChoice:
		correct = q.Correct.Index
	case verdict == VerdictCorrect:
		correct = picked
	}

	opts := make([]ReviewOption, len(q.Options))
	for i, text := range q.Options {
		mark := MarkNeutral
		switch {
		case i == correct:
			mark = MarkCorrect
		case i == picked && (correct >= 0 || verdict == VerdictIncorrect):
			mark = MarkWrongPick
		}
		opts[i] = ReviewOption{Index: i, Text: text, Mark: mark, Picked: i == picked}
	}
	return opts
}

// Result returns the grade the walkthrough was built from.
func (w *Walkthrough) Result() model.AttemptResult {
	return w.result
}

// Items returns a copy of every review item in display order.
func (w *Walkthrough) Items() []ReviewItem {
	out := make([]ReviewItem, len(w.items))
	for i, it := range w.items {
		out[i] = it.clone()
	}
	return out
}

// Len returns the number of items.
func (w *Walkthrough) Len() int {
	return len(w.items)
}

// Current returns the item under the pointer.
func (w *Walkthrough) Current() (ReviewItem, bool) {
	if len(w.items) == 0 {
		return ReviewItem{}, false
	}
	return w.items[w.current].clone(), true
}

// Index returns the pointer.
func (w *Walkthrough) Index() int {
	return w.current
}

// GoTo clamps like Session.GoTo.
func (w *Walkthrough) GoTo(index int) int {
	w.current = clamp(index, len(w.items))
	return w.current
}

func (w *Walkthrough) Next() int     { return w.GoTo(w.current + 1) }
func (w *Walkthrough) Previous() int { return w.GoTo(w.current - 1) }

// Review opens the read-only walkthrough of a finished session. It fails
// unless the exam reveals answers on finish.
func (s *Session) Review() (*Walkthrough, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFinished || !s.review || s.result == nil {
		return nil, ErrReviewUnavailable
	}
	answers := make(map[int]model.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}
	return newWalkthrough(s.questions, answers, *s.result), nil
}

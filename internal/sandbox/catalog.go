// Package sandbox is a self-contained LMS backend serving the exam
// endpoints the client consumes. It backs local development and the
// end-to-end tests.
package sandbox

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// Student is a sandbox account able to log in.
type Student struct {
	ID           int
	Username     string
	Name         string
	PasswordHash string
}

// Catalog is the read-only exam data of the sandbox.
type Catalog struct {
	Exams     []model.ExamPayload
	Questions map[int][]model.QuestionPayload
	Students  []Student
}

// Exam looks up an exam by ID.
func (c *Catalog) Exam(id int) (model.ExamPayload, bool) {
	for _, e := range c.Exams {
		if e.ID == id {
			return e, true
		}
	}
	return model.ExamPayload{}, false
}

// ExamsByAssignment returns the exams of an assignment. Never nil.
func (c *Catalog) ExamsByAssignment(assignmentID int) []model.ExamPayload {
	out := []model.ExamPayload{}
	for _, e := range c.Exams {
		if e.AssignmentID == assignmentID {
			out = append(out, e)
		}
	}
	return out
}

// StudentByUsername finds an account, case-insensitively.
func (c *Catalog) StudentByUsername(username string) (Student, bool) {
	for _, s := range c.Students {
		if strings.EqualFold(s.Username, strings.TrimSpace(username)) {
			return s, true
		}
	}
	return Student{}, false
}

// AddExam appends an exam and its questions, keeping total_preguntas in sync.
func (c *Catalog) AddExam(e model.ExamPayload, questions []model.QuestionPayload) {
	if c.Questions == nil {
		c.Questions = make(map[int][]model.QuestionPayload)
	}
	e.QuestionCount = len(questions)
	c.Exams = append(c.Exams, e)
	c.Questions[e.ID] = questions
}

// ─── Seed Data ────────────────────────────────────────────────────────

// SeedPassword is the password of every seeded student.
const SeedPassword = "secreto"

// Seed builds the demo catalog relative to now: one open exam that
// shuffles and reveals answers, one closed, one not yet open and one
// single-attempt exam without review.
func Seed(now time.Time, hash func(password string) (string, error)) (*Catalog, error) {
	pw, err := hash(SeedPassword)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Students: []Student{
			{ID: 4, Username: "alumno", Name: "Ana Quispe", PasswordHash: pw},
			{ID: 5, Username: "beto", Name: "Alberto Rojas", PasswordHash: pw},
		},
	}
	day := 24 * time.Hour

	c.AddExam(model.ExamPayload{
		ID:              101,
		AssignmentID:    1,
		Title:           "Parcial de Biología",
		Description:     "Unidad 2: la célula y la fotosíntesis.",
		Type:            "parcial",
		Start:           now.Add(-time.Hour),
		End:             now.Add(7 * day),
		DurationMinutes: 10,
		MaxAttempts:     2,
		PassThreshold:   11,
		RevealAnswers:   true,
		Shuffle:         true,
	}, []model.QuestionPayload{
		choice(1, 1, "¿Qué orgánulo realiza la fotosíntesis?", []string{"Mitocondria", "Cloroplasto", "Ribosoma"}, 1, "El cloroplasto contiene clorofila.", 2),
		trueFalse(2, 2, "La célula animal tiene pared celular.", false, "Solo las células vegetales y fúngicas la tienen.", 1),
		choice(3, 3, "¿Cuál es la unidad básica de la vida?", []string{"El átomo", "La molécula", "La célula", "El tejido"}, 2, "La teoría celular la define así.", 2),
		shortAnswer(4, 4, "Nombre el pigmento verde de las plantas.", "clorofila", "Se encuentra en los tilacoides.", 2),
		essay(5, 5, "Explique la importancia de la fotosíntesis para el ecosistema.", 3),
	})

	c.AddExam(model.ExamPayload{
		ID:              102,
		AssignmentID:    1,
		Title:           "Quiz de Química",
		Type:            "quiz",
		Start:           now.Add(-10 * day),
		End:             now.Add(-day),
		DurationMinutes: 5,
		MaxAttempts:     1,
		PassThreshold:   11,
	}, []model.QuestionPayload{
		trueFalse(6, 1, "El agua es un compuesto.", true, "", 1),
	})

	c.AddExam(model.ExamPayload{
		ID:              103,
		AssignmentID:    1,
		Title:           "Final de Física",
		Type:            "final",
		Start:           now.Add(3 * day),
		End:             now.Add(4 * day),
		DurationMinutes: 60,
		MaxAttempts:     1,
		PassThreshold:   11,
		RevealAnswers:   true,
	}, []model.QuestionPayload{
		choice(7, 1, "¿Unidad de fuerza en el SI?", []string{"Joule", "Newton", "Watt"}, 1, "", 1),
	})

	c.AddExam(model.ExamPayload{
		ID:              104,
		AssignmentID:    1,
		Title:           "Control de Lectura",
		Description:     "Capítulos 1 al 3.",
		Type:            "control",
		Start:           now.Add(-day),
		End:             now.Add(2 * day),
		DurationMinutes: 5,
		MaxAttempts:     1,
		PassThreshold:   13,
	}, []model.QuestionPayload{
		trueFalse(8, 1, "El protagonista vive en Arequipa.", true, "Se menciona en el capítulo 1.", 1),
		trueFalse(9, 2, "La historia ocurre en invierno.", false, "Ocurre en verano.", 1),
		choice(10, 3, "¿Quién narra la historia?", []string{"El protagonista", "Su hermana", "Un narrador omnisciente"}, 2, "", 2),
	})

	return c, nil
}

func choice(id, ordinal int, prompt string, options []string, correct int, feedback string, points float64) model.QuestionPayload {
	encoded, _ := json.Marshal(options)
	return question(id, ordinal, prompt, model.QuestionMultipleChoice, string(encoded), strconv.Itoa(correct), feedback, points)
}

func trueFalse(id, ordinal int, prompt string, correct bool, feedback string, points float64) model.QuestionPayload {
	c := "falso"
	if correct {
		c = "verdadero"
	}
	return question(id, ordinal, prompt, model.QuestionTrueFalse, "", c, feedback, points)
}

func shortAnswer(id, ordinal int, prompt, correct, feedback string, points float64) model.QuestionPayload {
	return question(id, ordinal, prompt, model.QuestionShortAnswer, "", correct, feedback, points)
}

func essay(id, ordinal int, prompt string, points float64) model.QuestionPayload {
	return question(id, ordinal, prompt, model.QuestionEssay, "", "", "", points)
}

func question(id, ordinal int, prompt string, kind model.QuestionKind, options, correct, feedback string, points float64) model.QuestionPayload {
	q := model.QuestionPayload{
		ID:      id,
		Ordinal: ordinal,
		Prompt:  prompt,
		Kind:    kind.Wire(),
		Options: model.FlexString(options),
		Points:  points,
	}
	if correct != "" {
		fc := model.FlexString(correct)
		q.Correct = &fc
	}
	if feedback != "" {
		q.Feedback = &feedback
	}
	return q
}

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/service"
)

const dateLayout = "02/01/2006 15:04"

// console serializes output from the input loop and the session hooks.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

func (c *console) Println(s string) {
	c.Printf("%s\n", s)
}

// formatClock renders seconds as mm:ss, or h:mm:ss past an hour.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ─── Catalog ───────────────────────────────────────────────────────────

func printCatalog(con *console, cat service.Catalog) {
	if cat.Degraded {
		con.Println("Aviso: algunos exámenes no se pudieron cargar.")
	}

	con.Println("== Pendientes ==")
	if len(cat.Pending) == 0 {
		con.Println("  (ninguno)")
	}
	for _, e := range cat.Pending {
		printEntry(con, e)
	}

	con.Println("== Completados ==")
	if len(cat.Completed) == 0 {
		con.Println("  (ninguno)")
	}
	for _, e := range cat.Completed {
		printEntry(con, e)
		for _, at := range e.Attempts {
			if !at.Completed() {
				continue
			}
			score := "sin nota"
			if at.Score != nil {
				score = fmt.Sprintf("%.2f/20", *at.Score)
			}
			con.Printf("      intento %d  %s  %s\n", at.ID, at.FinishedAt.Local().Format(dateLayout), score)
		}
	}
}

func printEntry(con *console, e service.CatalogEntry) {
	ex := e.Exam
	con.Printf("  [%d] %s\n", ex.ID, ex.Title)
	con.Printf("      %s a %s  %d min  %d preguntas  intentos %d/%d  -> %s\n",
		ex.Start.Local().Format(dateLayout),
		ex.End.Local().Format(dateLayout),
		ex.DurationMinutes,
		ex.QuestionCount,
		e.AttemptsUsed,
		ex.MaxAttempts,
		e.Gate.Reason.Label(),
	)
}

// ─── Session ───────────────────────────────────────────────────────────

func printQuestion(con *console, sess *service.Session) {
	q, ok := sess.Current()
	if !ok {
		con.Println("Este examen no tiene preguntas.")
		return
	}
	answer, answered := sess.Answer(q.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "\nPregunta %d/%d  (%s)  [%s]\n", sess.Index()+1, sess.Len(), kindLabel(q.Kind), formatClock(sess.Remaining()))
	fmt.Fprintf(&b, "%s\n", q.Prompt)
	switch q.Kind {
	case model.QuestionMultipleChoice:
		for i, opt := range q.Options {
			mark := " "
			if answered && answer.Index == i {
				mark = "*"
			}
			fmt.Fprintf(&b, " %s %d) %s\n", mark, i+1, opt)
		}
	case model.QuestionTrueFalse:
		b.WriteString("   v) Verdadero   f) Falso\n")
	}
	if answered {
		fmt.Fprintf(&b, "Su respuesta: %s\n", answer)
	}
	con.Printf("%s", b.String())
}

func printProgress(con *console, sess *service.Session) {
	var b strings.Builder
	for _, m := range sess.Progress() {
		if m.Answered {
			fmt.Fprintf(&b, "[%d✓] ", m.Ordinal)
		} else {
			fmt.Fprintf(&b, "[%d ] ", m.Ordinal)
		}
	}
	con.Printf("%s\n%d/%d respondidas\n", b.String(), sess.AnsweredCount(), sess.Len())
}

func printResult(con *console, exam model.Exam, res model.AttemptResult) {
	status := "Desaprobado"
	if res.Passed {
		status = "Aprobado"
	}
	con.Printf("\n%s: nota %.2f/20 (%s, mínimo %.2f)\n", exam.Title, res.Score, status, exam.PassThreshold)
	con.Printf("Puntos %.2f de %.2f (%.1f%%)\n", res.PointsObtained, res.PointsPossible, res.Percentage)
}

// ─── Review ────────────────────────────────────────────────────────────

func printReviewItem(con *console, w *service.Walkthrough) {
	item, ok := w.Current()
	if !ok {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nPregunta %d/%d  (%s)  %s\n", item.Ordinal, w.Len(), kindLabel(item.Question.Kind), verdictLabel(item.Verdict))
	fmt.Fprintf(&b, "%s\n", item.Question.Prompt)

	for _, opt := range item.Options {
		mark := "  "
		switch opt.Mark {
		case service.MarkCorrect:
			mark = "✔ "
		case service.MarkWrongPick:
			mark = "✘ "
		}
		picked := " "
		if opt.Picked {
			picked = "*"
		}
		fmt.Fprintf(&b, " %s%s %d) %s\n", mark, picked, opt.Index+1, opt.Text)
	}

	if item.Answer != nil {
		fmt.Fprintf(&b, "Su respuesta: %s\n", item.Answer)
	} else {
		b.WriteString("Sin responder\n")
	}
	if item.Correct != nil && item.Question.Kind != model.QuestionMultipleChoice {
		fmt.Fprintf(&b, "Respuesta correcta: %s\n", item.Correct)
	}
	if item.Points != nil {
		fmt.Fprintf(&b, "Puntos: %.2f de %.2f\n", *item.Points, item.Question.Points)
	}
	if item.Feedback != "" {
		fmt.Fprintf(&b, "Retroalimentación: %s\n", item.Feedback)
	}
	con.Printf("%s", b.String())
}

func kindLabel(k model.QuestionKind) string {
	switch k {
	case model.QuestionMultipleChoice:
		return "opción múltiple"
	case model.QuestionTrueFalse:
		return "verdadero o falso"
	case model.QuestionShortAnswer:
		return "respuesta corta"
	default:
		return "desarrollo"
	}
}

func verdictLabel(v service.Verdict) string {
	switch v {
	case service.VerdictCorrect:
		return "Correcta"
	case service.VerdictIncorrect:
		return "Incorrecta"
	default:
		return "Sin calificar"
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/service"
)

const takeHelp = `Comandos: n siguiente, p anterior, g N ir a la pregunta N, a VALOR responder,
l progreso, t tiempo, s enviar, q abandonar, ? ayuda`

const reviewHelp = `Comandos: n siguiente, p anterior, g N ir a la pregunta N, q salir`

// cancelPoll is how often an interrupted take retries Cancel while a
// submission is outstanding.
const cancelPoll = 100 * time.Millisecond

// readLines feeds trimmed stdin lines to the returned channel until EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- strings.TrimSpace(sc.Text())
		}
	}()
	return ch
}

// ─── take ──────────────────────────────────────────────────────────────

func (a *app) runTake(ctx context.Context, args []string) error {
	ids, err := positionalInts(args, "examen")
	if err != nil {
		return err
	}
	entry, err := a.findEntry(ctx, ids[0])
	if err != nil {
		return err
	}

	con := newConsole(os.Stdout)
	hooks := service.Hooks{
		OnTick: func(remaining int) {
			if remaining == 60 || remaining == 10 || (remaining > 0 && remaining%300 == 0) {
				con.Printf("Quedan %s.\n", formatClock(remaining))
			}
		},
		OnStateChange: func(state service.SessionState) {
			if state == service.StateSubmitting {
				con.Println("Enviando respuestas...")
			}
		},
		OnAutoSubmitError: func(err error) {
			con.Println("Se acabó el tiempo. " + service.UserMessage(err))
			con.Println("Escriba 's' para reintentar el envío.")
		},
	}

	sessions := service.NewExamSessionService(a.questions, a.attempts, a.identity, a.log,
		service.WithTickInterval(a.cfg.TickInterval),
		service.WithHooks(hooks),
	)

	sess, err := sessions.Start(ctx, entry.Exam, entry.AttemptsUsed)
	if err != nil {
		return err
	}

	con.Printf("%s: %d preguntas, %s.\n", entry.Exam.Title, sess.Len(), formatClock(sess.Remaining()))
	con.Println(takeHelp)
	printQuestion(con, sess)

	lines := readLines(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return a.abandon(con, sessions, sess)

		case <-sess.Done():
			return a.finish(ctx, con, sess, lines)

		case line, ok := <-lines:
			if !ok {
				con.Println("Entrada cerrada. El examen se enviará al terminar el tiempo.")
				lines = nil
				continue
			}
			if quit := a.handleTakeCommand(ctx, con, sess, line); quit {
				return a.abandon(con, sessions, sess)
			}
		}
	}
}

// handleTakeCommand applies one command line. It returns true when the
// student asked to leave.
func (a *app) handleTakeCommand(ctx context.Context, con *console, sess *service.Session, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "n":
		sess.Next()
		printQuestion(con, sess)
	case "p":
		sess.Previous()
		printQuestion(con, sess)
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil {
			con.Println("Indique el número de pregunta, por ejemplo: g 3")
			return false
		}
		sess.GoTo(n - 1)
		printQuestion(con, sess)
	case "a":
		q, ok := sess.Current()
		if !ok {
			return false
		}
		answer, err := parseAnswer(q, arg)
		if err != nil {
			con.Println(err.Error())
			return false
		}
		if err := sess.SetAnswer(q.ID, answer); err != nil {
			con.Println(service.UserMessage(err))
			return false
		}
		con.Printf("Respuesta guardada: %s (%d/%d respondidas)\n", answer, sess.AnsweredCount(), sess.Len())
	case "l":
		printProgress(con, sess)
	case "t":
		con.Printf("Quedan %s.\n", formatClock(sess.Remaining()))
	case "s":
		if _, err := sess.Submit(ctx); err != nil {
			con.Println(service.UserMessage(err))
		}
	case "q":
		return true
	case "?", "h":
		con.Println(takeHelp)
	default:
		con.Println("Comando desconocido. " + takeHelp)
	}
	return false
}

// abandon cancels the session, waiting out a submission already in flight.
func (a *app) abandon(con *console, sessions *service.ExamSessionService, sess *service.Session) error {
	for {
		err := sessions.Cancel()
		if err == nil {
			break
		}
		if !errors.Is(err, service.ErrSubmissionInFlight) {
			return err
		}
		select {
		case <-sess.Done():
			if res := sess.Result(); res != nil {
				printResult(con, sess.Exam(), *res)
			}
			return nil
		case <-time.After(cancelPoll):
		}
	}
	con.Println("Intento abandonado. Sus respuestas no fueron enviadas.")
	return nil
}

// finish prints the grade and, when the exam allows it, walks the review.
func (a *app) finish(ctx context.Context, con *console, sess *service.Session, lines <-chan string) error {
	res := sess.Result()
	if res == nil {
		return nil
	}
	printResult(con, sess.Exam(), *res)

	if !sess.ReviewMode() {
		con.Println("Volviendo al catálogo.")
		return nil
	}
	w, err := sess.Review()
	if err != nil {
		return err
	}
	browse(ctx, con, w, lines)
	return nil
}

// parseAnswer reads the student's input for q's kind.
func parseAnswer(q model.Question, input string) (model.Answer, error) {
	if input == "" {
		return model.Answer{}, userError("Escriba la respuesta después de 'a'.")
	}
	switch q.Kind {
	case model.QuestionMultipleChoice:
		if n, err := strconv.Atoi(input); err == nil {
			return model.ChoiceAnswer(n - 1), nil
		}
		if len(input) == 1 {
			if c := strings.ToLower(input)[0]; c >= 'a' && c <= 'z' {
				return model.ChoiceAnswer(int(c - 'a')), nil
			}
		}
		return model.Answer{}, userError("Indique el número o la letra de la opción.")
	case model.QuestionTrueFalse:
		switch strings.ToLower(input) {
		case "v", "verdadero", "true", "1":
			return model.BooleanAnswer(true), nil
		case "f", "falso", "false", "0":
			return model.BooleanAnswer(false), nil
		}
		return model.Answer{}, userError("Responda 'v' (verdadero) o 'f' (falso).")
	default:
		return model.TextAnswer(input), nil
	}
}

// ─── review ────────────────────────────────────────────────────────────

func (a *app) runReview(ctx context.Context, args []string) error {
	ids, err := positionalInts(args, "examen", "intento")
	if err != nil {
		return err
	}
	entry, err := a.findEntry(ctx, ids[0])
	if err != nil {
		return err
	}

	sessions := service.NewExamSessionService(a.questions, a.attempts, a.identity, a.log)
	w, err := sessions.ReviewAttempt(ctx, entry.Exam, ids[1])
	if err != nil {
		return err
	}

	con := newConsole(os.Stdout)
	printResult(con, entry.Exam, w.Result())
	browse(ctx, con, w, readLines(os.Stdin))
	return nil
}

// browse navigates a walkthrough until the student quits or input ends.
func browse(ctx context.Context, con *console, w *service.Walkthrough, lines <-chan string) {
	if w.Len() == 0 {
		return
	}
	con.Println(reviewHelp)
	printReviewItem(con, w)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			cmd, arg, _ := strings.Cut(line, " ")
			switch strings.ToLower(cmd) {
			case "":
				continue
			case "n":
				w.Next()
			case "p":
				w.Previous()
			case "g":
				n, err := strconv.Atoi(strings.TrimSpace(arg))
				if err != nil {
					con.Println("Indique el número de pregunta, por ejemplo: g 3")
					continue
				}
				w.GoTo(n - 1)
			case "q":
				return
			default:
				con.Println(reviewHelp)
				continue
			}
			printReviewItem(con, w)
		}
	}
}

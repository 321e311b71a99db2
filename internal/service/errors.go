package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
)

// Domain Errors
var (
	ErrBusy               = errors.New("another exam is being started")
	ErrSubmissionInFlight = errors.New("previous session is still submitting")
	ErrSessionClosed      = errors.New("exam session is closed")
	ErrNotRunning         = errors.New("exam session is no longer accepting answers")
	ErrSubmitInProgress   = errors.New("submission already in progress")
	ErrUnknownQuestion    = errors.New("question is not part of this exam")
	ErrInvalidAnswer      = errors.New("answer does not fit the question")
	ErrReviewUnavailable  = errors.New("answers are not revealed for this exam")
)

// BlockedError is returned by Start when the attempt gate refuses a new attempt.
type BlockedError struct {
	Reason Reason
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("exam cannot be started: %s", e.Reason)
}

// StartStage names the step of session initialization that failed.
type StartStage string

const (
	StageOpenAttempt   StartStage = "open_attempt"
	StageLoadQuestions StartStage = "load_questions"
)

// StartError is a network failure while initializing a session. No Session
// exists afterwards; when Stage is StageLoadQuestions the server already
// counts the opened attempt.
type StartError struct {
	Stage StartStage
	Err   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start exam (%s): %v", e.Stage, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// SubmitError is a recoverable submission failure. The session stays in
// SUBMITTING and Submit may be called again.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit exam: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// UserMessage turns any error from this package into text for the student.
// The underlying diagnostic is expected to be logged separately.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked.Reason.Label()
	}

	var startErr *StartError
	if errors.As(err, &startErr) {
		detail := apiMessage(startErr.Err)
		switch startErr.Stage {
		case StageOpenAttempt:
			return "No se pudo iniciar el intento. " + detail
		default:
			return "No se pudieron cargar las preguntas. Vuelva a iniciar el examen. " + detail
		}
	}

	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return "No se pudieron enviar sus respuestas. Sus respuestas se conservan; intente enviar de nuevo. " + apiMessage(submitErr.Err)
	}

	switch {
	case errors.Is(err, ErrBusy):
		return "Ya se está iniciando un examen."
	case errors.Is(err, ErrSubmissionInFlight), errors.Is(err, ErrSubmitInProgress):
		return "Sus respuestas se están enviando. Espere un momento."
	case errors.Is(err, ErrSessionClosed):
		return "El examen ya fue cerrado."
	case errors.Is(err, ErrNotRunning):
		return "El examen ya no acepta respuestas."
	case errors.Is(err, ErrUnknownQuestion):
		return "La pregunta no pertenece a este examen."
	case errors.Is(err, ErrInvalidAnswer):
		return "La respuesta no corresponde al tipo de pregunta."
	case errors.Is(err, ErrReviewUnavailable):
		return "Este examen no muestra las respuestas."
	}
	return apiMessage(err)
}

func apiMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var tErr *apiclient.TransportError
	if errors.As(err, &tErr) || errors.Is(err, context.DeadlineExceeded) {
		return "No se pudo conectar con el servidor."
	}
	return "Ocurrió un error inesperado."
}

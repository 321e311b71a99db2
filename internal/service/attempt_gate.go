package service

import (
	"time"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// Reason explains why the attempt gate blocked a new attempt.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNotYetOpen     Reason = "NOT_YET_OPEN"
	ReasonClosed         Reason = "CLOSED"
	ReasonNoAttemptsLeft Reason = "NO_ATTEMPTS_LEFT"
)

// Label returns the start-action microcopy for the reason.
func (r Reason) Label() string {
	switch r {
	case ReasonNotYetOpen:
		return "Aún no disponible"
	case ReasonClosed:
		return "Examen cerrado"
	case ReasonNoAttemptsLeft:
		return "Sin intentos disponibles"
	default:
		return "Iniciar examen"
	}
}

// Decision is the outcome of CanStart.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// CanStart decides whether a new attempt may begin. Rules are evaluated in
// order: window not open, window closed, attempts exhausted.
func CanStart(exam model.Exam, now time.Time, attemptsUsed int) Decision {
	switch {
	case now.Before(exam.Start):
		return Decision{Reason: ReasonNotYetOpen}
	case now.After(exam.End):
		return Decision{Reason: ReasonClosed}
	case attemptsUsed >= exam.MaxAttempts:
		return Decision{Reason: ReasonNoAttemptsLeft}
	}
	return Decision{Allowed: true}
}

// AttemptsUsed counts consumed attempts: those with an end time.
func AttemptsUsed(attempts []model.Attempt) int {
	n := 0
	for _, a := range attempts {
		if a.Completed() {
			n++
		}
	}
	return n
}

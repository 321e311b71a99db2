package model

import (
	"time"
)

// Exam is an exam as published by the LMS. The client never mutates it.
type Exam struct {
	ID          int
	Title       string
	Description string
	Type        string
	Start       time.Time
	End         time.Time
	// DurationMinutes is the time a student gets once an attempt starts.
	DurationMinutes int
	MaxAttempts     int
	// PassThreshold is expressed on the 0–20 grading scale.
	PassThreshold         float64
	RevealAnswersOnFinish bool
	ShuffleQuestions      bool
	QuestionCount         int
}

// DurationSeconds returns the countdown length of a session for this exam.
func (e Exam) DurationSeconds() int {
	return e.DurationMinutes * 60
}

// Enrollment identifies the course assignment whose exams the student sees.
type Enrollment struct {
	AssignmentID int
	CourseName   string
}

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// The *Payload types mirror the LMS JSON wire format. Decoding into domain
// types happens in the repository package; the sandbox serves them as-is.

// ExamPayload is an exam as listed by GET /examenes/asignacion/{id}.
type ExamPayload struct {
	ID              int       `json:"id_examen" validate:"required,min=1"`
	Title           string    `json:"titulo" validate:"required"`
	Description     string    `json:"descripcion"`
	Type            string    `json:"tipo"`
	Start           time.Time `json:"fecha_inicio"`
	End             time.Time `json:"fecha_fin" validate:"gtefield=Start"`
	DurationMinutes int       `json:"duracion_minutos" validate:"min=1"`
	MaxAttempts     int       `json:"intentos_permitidos" validate:"min=0"`
	PassThreshold   float64   `json:"nota_minima" validate:"min=0,max=20"`
	RevealAnswers   bool      `json:"mostrar_respuestas"`
	Shuffle         bool      `json:"preguntas_aleatorias"`
	QuestionCount   int       `json:"total_preguntas" validate:"min=0"`
	AssignmentID    int       `json:"id_asignacion,omitempty"`
}

// QuestionPayload is a question as returned by GET /examenes/{id}/preguntas.
// Options holds a JSON array encoded inside a string for multiple choice.
type QuestionPayload struct {
	ID       int         `json:"id_pregunta" validate:"required,min=1"`
	Ordinal  int         `json:"orden"`
	Prompt   string      `json:"enunciado" validate:"required"`
	Kind     string      `json:"tipo_pregunta" validate:"required"`
	Options  FlexString  `json:"opciones"`
	Correct  *FlexString `json:"respuesta_correcta"`
	Feedback *string     `json:"retroalimentacion"`
	Points   float64     `json:"puntos" validate:"min=0"`
}

// AttemptPayload is an attempt as returned by GET /examenes/{id}/intentos/{student}.
type AttemptPayload struct {
	ID         int        `json:"id_intento" validate:"required,min=1"`
	StudentID  int        `json:"id_alumno"`
	ExamID     int        `json:"id_examen"`
	StartedAt  time.Time  `json:"fecha_inicio"`
	FinishedAt *time.Time `json:"fecha_fin"`
	Score      *float64   `json:"nota"`
	Passed     *bool      `json:"aprobado"`
}

// StartAttemptResponse is returned by POST /examenes/{id}/iniciar.
type StartAttemptResponse struct {
	Message string `json:"mensaje"`
}

// SubmitRequest is the body of POST /examenes/{id}/enviar.
type SubmitRequest struct {
	StudentID int                      `json:"id_alumno" binding:"required,min=1"`
	ExamID    int                      `json:"id_examen" binding:"required,min=1"`
	Answers   []SubmittedAnswerPayload `json:"respuestas" binding:"dive"`
}

// SubmittedAnswerPayload is one answered question in a submission.
type SubmittedAnswerPayload struct {
	QuestionID int    `json:"id_pregunta" binding:"required,min=1"`
	Answer     string `json:"respuesta_alumno"`
}

// ResultPayload is the graded submission, also embedded in the stored
// answers of GET /intentos/{id}/respuestas.
type ResultPayload struct {
	Score          float64               `json:"nota" validate:"min=0,max=20"`
	Passed         bool                  `json:"aprobado"`
	PointsObtained float64               `json:"puntos_obtenidos" validate:"min=0"`
	PointsPossible float64               `json:"puntos_totales" validate:"min=0"`
	Percentage     float64               `json:"porcentaje" validate:"min=0,max=100"`
	Answers        []AnswerResultPayload `json:"respuestas,omitempty"`
}

// AnswerResultPayload is the per-question entry of a result.
type AnswerResultPayload struct {
	QuestionID int        `json:"id_pregunta" validate:"required,min=1"`
	Answer     FlexString `json:"respuesta_alumno"`
	Correct    *bool      `json:"es_correcta,omitempty"`
	Points     *float64   `json:"puntos_obtenidos,omitempty"`
}

// LoginRequest is the sandbox login body.
type LoginRequest struct {
	Username string `json:"usuario" binding:"required,min=1,max=100"`
	Password string `json:"clave" binding:"required,min=1,max=200"`
}

// LoginResponse carries the bearer token issued on login.
type LoginResponse struct {
	Token     string `json:"token"`
	StudentID int    `json:"id_alumno"`
	Name      string `json:"nombre"`
}

// FlexString decodes a JSON string or number into its string form.
// The LMS is inconsistent about quoting indexes and IDs.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if data[0] == '[' || data[0] == '{' {
		*f = FlexString(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = FlexString(strconv.FormatBool(b))
	return nil
}

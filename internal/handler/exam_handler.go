package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/middleware"
	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/response"
	"github.com/stemsi/exstem-exam-client/internal/sandbox"
	"github.com/stemsi/exstem-exam-client/internal/validator"
)

// ExamHandler serves the student exam endpoints of the sandbox.
type ExamHandler struct {
	examService *sandbox.ExamService
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *sandbox.ExamService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// ListByAssignment godoc
// GET /api/examenes/asignacion/:id
func (h *ExamHandler) ListByAssignment(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.examService.ListByAssignment(c.Request.Context(), assignmentID))
}

// ListAttempts godoc
// GET /api/examenes/:id/intentos/:student_id
// Students may only read their own history.
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, ok := intParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := intParam(c, "student_id")
	if !ok {
		return
	}
	if studentID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	attempts, err := h.examService.Attempts(c.Request.Context(), examID, studentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attempts)
}

// StartAttempt godoc
// POST /api/examenes/:id/iniciar
func (h *ExamHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, ok := intParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.examService.StartAttempt(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, model.StartAttemptResponse{Message: msg})
}

// ListQuestions godoc
// GET /api/examenes/:id/preguntas
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	examID, ok := intParam(c, "id")
	if !ok {
		return
	}

	questions, err := h.examService.Questions(c.Request.Context(), examID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions)
}

// Submit godoc
// POST /api/examenes/:id/enviar
// Grades the student's open attempt.
func (h *ExamHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, ok := intParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if req.ExamID != examID {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"id_examen": "does not match the exam in the path"})
		return
	}
	if req.StudentID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	res, err := h.examService.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// StoredAnswers godoc
// GET /api/intentos/:id/respuestas
func (h *ExamHandler) StoredAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, ok := intParam(c, "id")
	if !ok {
		return
	}

	res, err := h.examService.StoredAnswers(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// fail maps sandbox domain errors to response codes.
func (h *ExamHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sandbox.ErrExamNotFound), errors.Is(err, sandbox.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, sandbox.ErrExamNotOpen):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotOpen)
	case errors.Is(err, sandbox.ErrExamClosed):
		response.Fail(c, http.StatusForbidden, response.ErrExamClosed)
	case errors.Is(err, sandbox.ErrNoAttemptsLeft):
		response.Fail(c, http.StatusForbidden, response.ErrNoAttemptsLeft)
	case errors.Is(err, sandbox.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, sandbox.ErrAnswersNotVisible):
		response.Fail(c, http.StatusForbidden, response.ErrAnswersNotVisible)
	case errors.Is(err, sandbox.ErrNoOpenAttempt):
		response.Fail(c, http.StatusConflict, response.ErrNoOpenAttempt)
	case errors.Is(err, sandbox.ErrAttemptNotGraded):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotGraded)
	case errors.Is(err, sandbox.ErrUnknownQuestion):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"respuestas": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/response"
	"github.com/stemsi/exstem-exam-client/internal/sandbox"
	"github.com/stemsi/exstem-exam-client/internal/validator"
)

// AuthHandler handles the sandbox login endpoint.
type AuthHandler struct {
	authService *sandbox.AuthService
	catalog     *sandbox.Catalog
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *sandbox.AuthService, catalog *sandbox.Catalog, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		catalog:     catalog,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/auth/login
// Validates username + password and returns a student JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, ok := h.catalog.StudentByUsername(req.Username)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(student.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateStudentToken(student)
	if err != nil {
		h.log.Error().Err(err).Int("student_id", student.ID).Msg("Failed to issue token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Int("student_id", student.ID).Msg("Student logged in")
	response.JSON(c, http.StatusOK, model.LoginResponse{Token: token, StudentID: student.ID, Name: student.Name})
}

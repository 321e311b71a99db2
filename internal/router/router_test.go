package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/exstem-exam-client/internal/config"
	"github.com/stemsi/exstem-exam-client/internal/handler"
	"github.com/stemsi/exstem-exam-client/internal/middleware"
	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/response"
	"github.com/stemsi/exstem-exam-client/internal/sandbox"
	"github.com/stemsi/exstem-exam-client/internal/validator"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type sandboxEnv struct {
	engine *gin.Engine
	auth   *sandbox.AuthService
}

func newSandbox(t *testing.T, limiter *middleware.RateLimiter) *sandboxEnv {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:    gin.TestMode,
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	authService := sandbox.NewAuthService(cfg)
	catalog, err := sandbox.Seed(testNow, authService.HashPassword)
	require.NoError(t, err)

	log := zerolog.Nop()
	examService := sandbox.NewExamService(catalog, sandbox.NewMemoryStore(), func() time.Time { return testNow }, log)
	handlers := &Handlers{
		Auth: handler.NewAuthHandler(authService, catalog, log),
		Exam: handler.NewExamHandler(examService, log),
	}
	return &sandboxEnv{
		engine: SetupRouter(authService, handlers, limiter, cfg),
		auth:   authService,
	}
}

func (e *sandboxEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *sandboxEnv) login(t *testing.T, username string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: username, Password: sandbox.SeedPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NotNil(t, env.Error, w.Body.String())
	assert.NotEmpty(t, env.Metadata.RequestID)
	return env.Error.Code
}

func TestHealth(t *testing.T) {
	env := newSandbox(t, nil)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(response.HeaderRequestID))
}

func TestLogin(t *testing.T) {
	env := newSandbox(t, nil)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: "alumno", Password: sandbox.SeedPassword})
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.StudentID)
	assert.Equal(t, "Ana Quispe", resp.Name)

	claims, err := env.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 4, claims.UserID)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: "alumno", Password: "mal"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrInvalidCredentials, errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: "nadie", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"usuario": "alumno"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrValidation, errorCode(t, w))
}

func TestLoginRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	defer limiter.Close()
	env := newSandbox(t, limiter)

	bad := model.LoginRequest{Username: "alumno", Password: "mal"}
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", bad).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", bad).Code)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newSandbox(t, nil)

	w := env.do(t, http.MethodGet, "/api/examenes/asignacion/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/examenes/asignacion/1", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenInvalid, errorCode(t, w))
}

func TestExamEndpoints(t *testing.T) {
	env := newSandbox(t, nil)
	token := env.login(t, "alumno")

	w := env.do(t, http.MethodGet, "/api/examenes/asignacion/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exams []model.ExamPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exams))
	assert.Len(t, exams, 4)

	w = env.do(t, http.MethodGet, "/api/examenes/asignacion/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/examenes/101/iniciar", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var started model.StartAttemptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.Equal(t, sandbox.MsgAttemptStarted, started.Message)

	w = env.do(t, http.MethodGet, "/api/examenes/101/preguntas", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var questions []model.QuestionPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.Len(t, questions, 5)

	submit := model.SubmitRequest{
		StudentID: 4,
		ExamID:    101,
		Answers:   []model.SubmittedAnswerPayload{{QuestionID: 1, Answer: "1"}, {QuestionID: 4, Answer: "clorofila"}},
	}
	w = env.do(t, http.MethodPost, "/api/examenes/101/enviar", token, submit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result model.ResultPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 4, result.PointsObtained, 1e-9)
	assert.Len(t, result.Answers, 5)

	w = env.do(t, http.MethodGet, "/api/examenes/101/intentos/4", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attempts []model.AttemptPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempts))
	require.Len(t, attempts, 1)
	require.NotNil(t, attempts[0].Score)

	w = env.do(t, http.MethodGet, "/api/intentos/"+strconv.Itoa(attempts[0].ID)+"/respuestas", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored model.ResultPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.InDelta(t, result.Score, stored.Score, 1e-9)

	w = env.do(t, http.MethodPost, "/api/examenes/101/enviar", token, submit)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.ErrNoOpenAttempt, errorCode(t, w))
}

func TestExamEndpointErrors(t *testing.T) {
	env := newSandbox(t, nil)
	ana := env.login(t, "alumno")
	beto := env.login(t, "beto")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
		code   response.ErrCode
	}{
		{"closed exam", http.MethodPost, "/api/examenes/102/iniciar", ana, nil, http.StatusForbidden, response.ErrExamClosed},
		{"future exam", http.MethodPost, "/api/examenes/103/iniciar", ana, nil, http.StatusForbidden, response.ErrExamNotOpen},
		{"unknown exam", http.MethodGet, "/api/examenes/999/preguntas", ana, nil, http.StatusNotFound, response.ErrNotFound},
		{"foreign history", http.MethodGet, "/api/examenes/101/intentos/4", beto, nil, http.StatusForbidden, response.ErrForbidden},
		{"unknown attempt", http.MethodGet, "/api/intentos/77/respuestas", ana, nil, http.StatusNotFound, response.ErrNotFound},
		{
			"submit for another student", http.MethodPost, "/api/examenes/101/enviar", beto,
			model.SubmitRequest{StudentID: 4, ExamID: 101}, http.StatusForbidden, response.ErrForbidden,
		},
		{
			"path and body disagree", http.MethodPost, "/api/examenes/101/enviar", ana,
			model.SubmitRequest{StudentID: 4, ExamID: 104}, http.StatusBadRequest, response.ErrInvalidPayload,
		},
		{
			"nothing to submit", http.MethodPost, "/api/examenes/104/enviar", ana,
			model.SubmitRequest{StudentID: 4, ExamID: 104}, http.StatusConflict, response.ErrNoOpenAttempt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestNoAttemptsLeft(t *testing.T) {
	env := newSandbox(t, nil)
	token := env.login(t, "alumno")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/examenes/104/iniciar", token, nil).Code)
	submit := model.SubmitRequest{StudentID: 4, ExamID: 104, Answers: []model.SubmittedAnswerPayload{}}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/examenes/104/enviar", token, submit).Code)

	w := env.do(t, http.MethodPost, "/api/examenes/104/iniciar", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrNoAttemptsLeft, errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/intentos/1/respuestas", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrAnswersNotVisible, errorCode(t, w))
}

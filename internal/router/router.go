package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/exstem-exam-client/internal/config"
	"github.com/stemsi/exstem-exam-client/internal/handler"
	"github.com/stemsi/exstem-exam-client/internal/middleware"
	"github.com/stemsi/exstem-exam-client/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth *handler.AuthHandler
	Exam *handler.ExamHandler
}

// SetupRouter configures the sandbox routes under /api. loginLimiter may be
// nil to disable rate limiting.
func SetupRouter(
	tokens middleware.TokenValidator,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.GinMode != gin.TestMode {
		router.Use(gin.Logger())
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// ─── 1. Auth (Public, Rate Limited) ────────────────────────────────
	authGroup := api.Group("/auth")
	if loginLimiter != nil {
		authGroup.Use(loginLimiter.Middleware())
	}
	{
		authGroup.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Student (JWT Protected) ────────────────────────────────────
	student := api.Group("")
	student.Use(middleware.RequireStudentJWT(tokens))
	{
		student.GET("/examenes/asignacion/:id", handlers.Exam.ListByAssignment)
		student.GET("/examenes/:id/intentos/:student_id", handlers.Exam.ListAttempts)
		student.POST("/examenes/:id/iniciar", handlers.Exam.StartAttempt)
		student.GET("/examenes/:id/preguntas", handlers.Exam.ListQuestions)
		student.POST("/examenes/:id/enviar", handlers.Exam.Submit)
		student.GET("/intentos/:id/respuestas", handlers.Exam.StoredAnswers)
	}

	return router
}

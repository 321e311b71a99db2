package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/config"
	"github.com/stemsi/exstem-exam-client/internal/database"
	"github.com/stemsi/exstem-exam-client/internal/handler"
	"github.com/stemsi/exstem-exam-client/internal/logger"
	"github.com/stemsi/exstem-exam-client/internal/middleware"
	"github.com/stemsi/exstem-exam-client/internal/router"
	"github.com/stemsi/exstem-exam-client/internal/sandbox"
	"github.com/stemsi/exstem-exam-client/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.SandboxPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem LMS sandbox")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Attempt Store ─────────────────────────────────────────────────
	var store sandbox.AttemptStore = sandbox.NewMemoryStore()
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
		store = sandbox.NewRedisStore(rdb)
	} else {
		log.Info().Msg("REDIS_URL not set, attempts are kept in memory")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := sandbox.NewAuthService(cfg)
	catalog, err := sandbox.Seed(time.Now(), authService.HashPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed catalog")
	}
	examService := sandbox.NewExamService(catalog, store, time.Now, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService, catalog, log),
		Exam: handler.NewExamHandler(examService, log),
	}

	// Rate limiter for login (30 requests per minute per IP).
	loginLimiter := middleware.NewRateLimiter(30, time.Minute)
	defer loginLimiter.Close()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, loginLimiter, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.SandboxPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", ":"+cfg.SandboxPort).
			Str("student", "alumno").
			Str("password", sandbox.SeedPassword).
			Msg("Sandbox listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

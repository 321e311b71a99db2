package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration for both the exam client and the sandbox backend.
type Config struct {
	LogLevel  string
	LogFormat string

	// ─── Client ────────────────────────────────────────────────────────
	APIBaseURL   string
	TokenFile    string
	AssignmentID int
	// HTTPTimeout of zero leaves requests bounded only by their context.
	HTTPTimeout  time.Duration
	TickInterval time.Duration

	// ─── Sandbox ───────────────────────────────────────────────────────
	SandboxPort string
	GinMode     string
	JWTSecret   string
	JWTExpiry   time.Duration
	BcryptCost  int
	// RedisURL switches the sandbox attempt store to Redis when set.
	RedisURL string
	// AllowedOrigins controls sandbox CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "pretty"),

		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
		TokenFile:    getEnv("TOKEN_FILE", defaultTokenFile()),
		AssignmentID: getEnvInt("ASSIGNMENT_ID", 1),
		HTTPTimeout:  time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
		TickInterval: time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,

		SandboxPort:    getEnv("SANDBOX_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		JWTSecret:      getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:      time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		BcryptCost:     getEnvInt("BCRYPT_COST", 6),
		RedisURL:       getEnv("REDIS_URL", ""),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".exstem-token"
	}
	return dir + string(os.PathSeparator) + "exstem" + string(os.PathSeparator) + "token"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

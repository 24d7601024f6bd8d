package app

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// =========================== REQUIRED ===========================

	// Database configuration (required)
	DSN *string
	// Redis configuration (required)
	RedisAddr *string
	// Secret for verifying session tokens (required)
	JWTSecret *string
	// API key for the completion backend (required)
	OpenAIKey *string

	// =========================== OPTIONAL ===========================

	// Logging configuration
	LogLevel *string

	// HTTP server configuration
	Port *string

	// CORS configuration
	AllowOrigins *[]string

	// Completion backend configuration
	OpenAIBaseURL     *string
	OpenAIModel       *string
	GenerationTimeout *time.Duration

	// Quota configuration
	MaxQuota        *int
	QuotaResetHours *int

	// Migration configuration
	MigrationPath *string
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{}

	// Load required configuration
	loadRequiredConfig(config)

	// Load optional configuration with defaults
	loadOptionalConfig(config)

	return config
}

// loadRequiredConfig loads all required configuration values and fails fast if any are missing
func loadRequiredConfig(config *AppConfig) {
	// Database URL (required)
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatalf("REQUIRED: DB_URL not set in environment")
	}
	config.DSN = &dsn

	// Redis URL (required)
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		log.Fatalf("REQUIRED: REDIS_URL not set in environment")
	}
	config.RedisAddr = &redisAddr

	// Session token secret (required)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatalf("REQUIRED: JWT_SECRET not set in environment")
	}
	// Keys delivered through .env files carry literal \n sequences
	jwtSecret = strings.ReplaceAll(jwtSecret, `\n`, "\n")
	config.JWTSecret = &jwtSecret

	// Completion backend API key (required)
	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Fatalf("REQUIRED: OPENAI_API_KEY not set in environment")
	}
	config.OpenAIKey = &openAIKey

	// CORS origins (required in production, optional in development)
	loadCORSConfig(config)
}

// loadOptionalConfig loads all optional configuration values with sensible defaults
func loadOptionalConfig(config *AppConfig) {
	// HTTP server port (default: 8080)
	port := getEnvWithDefault("PORT", "8080")
	config.Port = &port

	// Log level (default: debug)
	// Available levels: "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"
	logLevel := getEnvWithDefault("LOG_LEVEL", "debug")
	config.LogLevel = &logLevel

	// Completion backend endpoint (default: Groq's OpenAI-compatible API)
	openAIBaseURL := getEnvWithDefault("OPENAI_BASE_URL", "https://api.groq.com/openai/v1")
	config.OpenAIBaseURL = &openAIBaseURL

	// Completion model
	openAIModel := getEnvWithDefault("OPENAI_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct")
	config.OpenAIModel = &openAIModel

	// Upper bound on a single generation round trip (default: 30 seconds)
	generationTimeout := time.Duration(getEnvIntWithDefault("GENERATION_TIMEOUT", 30)) * time.Second
	config.GenerationTimeout = &generationTimeout

	// Quota defaults: 50 generations per rolling 24 hours
	maxQuota := getEnvIntWithDefault("MAX_QUOTA", 50)
	config.MaxQuota = &maxQuota

	quotaResetHours := getEnvIntWithDefault("QUOTA_RESET_HOURS", 24)
	config.QuotaResetHours = &quotaResetHours

	// Migration path (default: file://migrations)
	migrationPath := getEnvWithDefault("MIGRATION_PATH", "file://migrations")
	config.MigrationPath = &migrationPath
}

// loadCORSConfig handles CORS origins configuration with environment-specific behavior
func loadCORSConfig(config *AppConfig) {
	allowOriginsStr := os.Getenv("ALLOW_ORIGINS")
	var allowOrigins []string

	if allowOriginsStr != "" {
		// Parse comma-separated origins
		origins := strings.Split(allowOriginsStr, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	} else {
		// Handle missing ALLOW_ORIGINS based on environment
		environment := os.Getenv("ENVIRONMENT")
		if environment == "development" || environment == "dev" {
			// Default to localhost in development
			allowOrigins = []string{"http://localhost:5173"}
		} else {
			log.Fatalf("REQUIRED: ALLOW_ORIGINS not set in environment (required in production)")
		}
	}

	config.AllowOrigins = &allowOrigins
}

// getEnvIntWithDefault parses an integer environment variable with default fallback
func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}

	log.Printf("Warning: Invalid %s value '%s', using default %d", key, value, defaultValue)
	return defaultValue
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

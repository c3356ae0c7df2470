package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// CRM auth: the shared password compared against the crm_session
	// cookie. May be a bcrypt hash (recognized by prefix) or plaintext.
	CRMPassword     string
	SessionMaxAge   int // seconds
	SecureCookies   bool
	LoginRedirectTo string

	// CORS
	CORSAllowedOrigins []string

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Logging
	LogLevel  string
	LogFormat string

	// Storage (data-room uploads)
	StorageType      string
	StorageLocalPath string
	AWSRegion        string
	S3Bucket         string

	// Exports
	ExportDir string

	// Jobs
	JobsEnabled bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "./data/crm.db"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		// CRM auth
		CRMPassword:     getEnv("CRM_PASSWORD", "bluecore2024"),
		SessionMaxAge:   getEnvAsInt("SESSION_MAX_AGE", 60*60*24*7),
		SecureCookies:   getEnvAsBool("SECURE_COOKIES", false),
		LoginRedirectTo: getEnv("LOGIN_REDIRECT_TO", "/crm/login"),

		// CORS
		CORSAllowedOrigins: []string{
			getEnv("FRONTEND_URL", "http://localhost:3000"),
		},

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", getEnv("API_ENVIRONMENT", "development")),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Storage
		StorageType:      getEnv("STORAGE_TYPE", "local"),
		StorageLocalPath: getEnv("STORAGE_LOCAL_PATH", "./data/data-room"),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),

		// Exports
		ExportDir: getEnv("EXPORT_DIR", "./data/exports"),

		// Jobs
		JobsEnabled: getEnvAsBool("JOBS_ENABLED", true),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

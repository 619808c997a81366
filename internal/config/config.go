package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// Scratch directory shared by concurrent requests; files inside it are
	// uniquely named per request.
	UploadDir string

	// History store backend: memory, sqlite or postgres.
	HistoryBackend string
	SQLitePath     string
	DatabaseURL    string

	// External conversion backend: cloudconvert or office.
	ExternalBackend     string
	CloudConvertAPIKey  string
	CloudConvertBaseURL string
	OfficeBinary        string

	// OCR engine configuration
	OCRLanguage string
	OCRPoolSize int

	// Retry policy for external backends
	RetryAttempts     int
	RetryInitialDelay time.Duration

	// Bounded wait for a single external attempt
	ExternalTimeout time.Duration

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		HistoryBackend: getEnv("HISTORY_BACKEND", "memory"),
		SQLitePath:     getEnv("SQLITE_PATH", "conversions.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		ExternalBackend:     getEnv("EXTERNAL_BACKEND", defaultBackend()),
		CloudConvertAPIKey:  getEnv("CLOUDCONVERT_API_KEY", ""),
		CloudConvertBaseURL: getEnv("CLOUDCONVERT_BASE_URL", "https://api.cloudconvert.com"),
		OfficeBinary:        getEnv("OFFICE_BINARY", "soffice"),

		OCRLanguage: getEnv("OCR_LANGUAGE", "eng"),
		OCRPoolSize: getEnvInt("OCR_POOL_SIZE", 2),

		RetryAttempts:     getEnvInt("RETRY_ATTEMPTS", 3),
		RetryInitialDelay: getEnvDuration("RETRY_INITIAL_DELAY", time.Second),

		ExternalTimeout: getEnvDuration("EXTERNAL_TIMEOUT", 2*time.Minute),

		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// defaultBackend prefers the cloud provider when a key is present, otherwise
// the local office suite.
func defaultBackend() string {
	if os.Getenv("CLOUDCONVERT_API_KEY") != "" {
		return "cloudconvert"
	}
	return "office"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

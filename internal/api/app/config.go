package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	StoreDriver  string // Store driver: postgrest or sqlite (default: sqlite)
	StoreURL     string // PostgREST store root URL, e.g. https://xyz.supabase.co
	StoreKey     string // PostgREST service key
	DatabaseFile string // SQLite database file (default: ./traveltalk.db)

	AdminSecret string // Shared admin password; empty disables the admin surface

	GeminiAPIKey      string // Gemini API key for translate/tts proxies
	AzureSpeechKey    string // Azure speech subscription key
	AzureSpeechRegion string // Azure region (default: eastus)

	SessionTTL         time.Duration // User session lifetime (default: 720h = 30 days)
	AdminTokenTTL      time.Duration // Admin token lifetime (default: 8h)
	DeviceLimitDefault int           // Device limit for new codes (default: 3)
	UpstreamTimeout    time.Duration // Per-call bound on store and AI round trips (default: 30s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-credential sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		StoreDriver:  getEnvOrDefault("STORE_DRIVER", "sqlite"),
		StoreURL:     os.Getenv("STORE_URL"),
		StoreKey:     os.Getenv("STORE_KEY"),
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "traveltalk.db"),

		AdminSecret: os.Getenv("ADMIN_SECRET"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		AzureSpeechKey:    os.Getenv("AZURE_SPEECH_KEY"),
		AzureSpeechRegion: getEnvOrDefault("AZURE_SPEECH_REGION", "eastus"),

		SessionTTL:         getEnvDurationOrDefault("SESSION_TTL", 720*time.Hour),
		AdminTokenTTL:      getEnvDurationOrDefault("ADMIN_TOKEN_TTL", 8*time.Hour),
		DeviceLimitDefault: getEnvIntOrDefault("DEVICE_LIMIT_DEFAULT", 3),
		UpstreamTimeout:    getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

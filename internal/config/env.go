package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	AnthropicAPIKey       string
	GoogleCredentialsFile string

	// Optional with defaults
	DBPath            string
	HTTPPort          int
	BaseURL           string
	Timezone          string
	ClaudeModel       string
	ClaudeTemperature float64
	TurnTimeoutSecs   int

	// Optional integrations
	BitlyAccessToken string
	ResendAPIKey     string
	EmailFrom        string
}

func LoadFromEnv() *Config {
	return &Config{
		// Required
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),

		// Optional with defaults
		DBPath:            getEnvOrDefault("MEETBOT_DB_PATH", "./meetbot.db"),
		HTTPPort:          getEnvAsIntOrDefault("MEETBOT_HTTP_PORT", 8000),
		BaseURL:           getEnvOrDefault("MEETBOT_BASE_URL", ""),
		Timezone:          getEnvOrDefault("MEETBOT_TIMEZONE", "Asia/Kolkata"),
		ClaudeModel:       getEnvOrDefault("MEETBOT_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		ClaudeTemperature: getEnvAsFloatOrDefault("MEETBOT_CLAUDE_TEMPERATURE", 0.1),
		TurnTimeoutSecs:   getEnvAsIntOrDefault("MEETBOT_TURN_TIMEOUT_SECS", 90),

		// Optional integrations
		BitlyAccessToken: os.Getenv("BITLY_ACCESS_TOKEN"),
		ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
		EmailFrom:        getEnvOrDefault("MEETBOT_EMAIL_FROM", "Meetbot <meetbot@localhost>"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

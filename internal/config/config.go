// Package config centralises configuration parsing for the AICare+ service.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures runtime configuration values for the monitoring service.
type Config struct {
	HTTPAddress string
	AppName     string

	// Storage: si DBDSN está seteado se usa Postgres; si no, SQLite local.
	DBDSN      string
	SQLitePath string

	// Ollama (runtime LLM local)
	OllamaBaseURL    string
	OllamaModel      string
	OllamaEmbedModel string
	OllamaTimeout    time.Duration

	// MQTT ingest de wearables
	MQTTBroker      string
	MQTTTopicPrefix string

	// Auth de caregivers (vacío = modo dev con X-Debug-Caregiver-ID)
	JWTSecret string
	JWTIssuer string

	// Scheduler de reminders
	ReminderInterval time.Duration

	// Importer
	DataDir string

	DefaultDeviceID string
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
func Load() Config {
	return Config{
		HTTPAddress: getEnv("HTTP_ADDRESS", ":5000"),
		AppName:     getEnv("APP_NAME", "aicare"),

		DBDSN:      getEnv("DB_DSN", ""),
		SQLitePath: getEnv("SQLITE_PATH", "aicareplus.db"),

		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3"),
		OllamaEmbedModel: getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		OllamaTimeout:    getDurationEnv("OLLAMA_TIMEOUT", 60*time.Second),

		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTTopicPrefix: strings.TrimSuffix(getEnv("MQTT_TOPIC_PREFIX", "aicare"), "/"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "aicare"),

		ReminderInterval: getDurationEnv("REMINDER_INTERVAL", 30*time.Second),

		DataDir: getEnv("DATA_DIR", "attached_assets"),

		DefaultDeviceID: getEnv("DEFAULT_DEVICE_ID", "D1000"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

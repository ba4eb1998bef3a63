package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings for the InvoiceStudio backend.
type Config struct {
	Environment string
	HTTPAddr    string

	DatabaseDSN string

	// APIKey authenticates API callers. Empty disables auth (dev mode).
	APIKey string

	// WebhookSecret verifies inbound email webhooks. Empty disables
	// verification (dev mode).
	WebhookSecret string

	PDFServiceURL string

	ResendAPIKey   string
	EmailFromName  string
	EmailFromAddr  string
	EmailReplyTo   string
	EmailSendLimit int

	SchedulerPollInterval time.Duration
	SchedulerBatchSize    int

	Tracing TracingConfig
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// IsProduction reports whether the service runs with production hardening.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment, honoring a local .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),

		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=invoicestudio dbname=invoicestudio sslmode=disable"),

		APIKey:        os.Getenv("API_KEY"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		PDFServiceURL: getEnv("PDF_SERVICE_URL", "http://localhost:3001"),

		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		EmailFromName:  os.Getenv("EMAIL_FROM_NAME"),
		EmailFromAddr:  os.Getenv("EMAIL_FROM_ADDRESS"),
		EmailReplyTo:   os.Getenv("EMAIL_REPLY_TO"),
		EmailSendLimit: getEnvInt("EMAIL_SEND_LIMIT", 30),

		SchedulerPollInterval: getEnvDuration("SCHEDULER_POLL_INTERVAL", 5*time.Minute),
		SchedulerBatchSize:    getEnvInt("SCHEDULER_BATCH_SIZE", 25),

		Tracing: TracingConfig{
			Enabled:          getEnvBool("OTEL_ENABLED", false),
			ExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ExporterProtocol: getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    getEnvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

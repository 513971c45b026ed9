package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ProviderConfig holds the credentials for a single payment provider.
// An empty SecretKey means the provider is not configured for this deployment.
type ProviderConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
}

type Config struct {
	Port        string
	Environment string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string

	JWTSecret    string
	RedisURL     string
	KafkaBrokers []string
	PaymentTopic string

	Paystack    ProviderConfig
	Flutterwave ProviderConfig
	Etegram     ProviderConfig

	// AllowUnsignedWebhooks skips signature verification for providers with no
	// webhook secret configured. Intended for development only; defaults to off.
	AllowUnsignedWebhooks bool

	S3Bucket string
	S3Region string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	FrontendURL string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
		PaymentTopic: getEnv("PAYMENT_EVENTS_TOPIC", "payment.events"),

		Paystack: ProviderConfig{
			SecretKey:     os.Getenv("PAYSTACK_SECRET_KEY"),
			WebhookSecret: os.Getenv("PAYSTACK_WEBHOOK_SECRET"),
			BaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		Flutterwave: ProviderConfig{
			SecretKey:     os.Getenv("FLW_SECRET_KEY"),
			WebhookSecret: os.Getenv("FLW_WEBHOOK_SECRET"),
			BaseURL:       getEnv("FLW_BASE_URL", "https://api.flutterwave.com/v3"),
		},
		Etegram: ProviderConfig{
			SecretKey:     os.Getenv("ETEGRAM_SECRET_KEY"),
			WebhookSecret: os.Getenv("ETEGRAM_WEBHOOK_SECRET"),
			BaseURL:       getEnv("ETEGRAM_BASE_URL", "https://api.etegram.com/v1"),
		},

		AllowUnsignedWebhooks: getEnv("PAYMENT_ALLOW_UNSIGNED_WEBHOOKS", "false") == "true",

		S3Bucket: os.Getenv("S3_ATTACHMENTS_BUCKET"),
		S3Region: getEnv("AWS_REGION", "eu-west-2"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required POSTGRES_* environment variables")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

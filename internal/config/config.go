package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/blomcosmetics/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Postgres
	PostgresHost    string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort    int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser    string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass    string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB      string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis. An empty host keeps the session stores on the in-process
	// memory backend, which loses state on restart.
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Session state TTL in hours (default: 30 days).
	SessionTTL int `env:"SESSION_TTL_HOURS" envDefault:"720"`

	// Elasticsearch. An empty URL falls back to the in-memory engine.
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:""`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"storefront_products"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	// Payment confirmation
	PollInterval     time.Duration `env:"PAYMENT_POLL_INTERVAL" envDefault:"1500ms"`
	PollMaxTries     uint          `env:"PAYMENT_POLL_MAX_TRIES" envDefault:"30"`
	ReconcileURL     string        `env:"PAYMENT_RECONCILE_URL" envDefault:""`
	InvoiceBaseURL   string        `env:"INVOICE_BASE_URL" envDefault:""`
	CourierBaseURL   string        `env:"COURIER_BASE_URL" envDefault:""`
	AddressBaseURL   string        `env:"ADDRESS_BASE_URL" envDefault:""`
	AddressAPIKey    string        `env:"ADDRESS_API_KEY" envDefault:""`
	ResendAPIKey     string        `env:"RESEND_API_KEY" envDefault:""`
	ReceiptFromEmail string        `env:"RECEIPT_FROM_EMAIL" envDefault:"orders@blomcosmetics.co.za"`

	// Tracing
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`

	// Rate limiting. Zero disables.
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PollMaxTries == 0 {
		return fmt.Errorf("payment poll max tries must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid payment poll interval: %s", c.PollInterval)
	}
	if !c.IsDevelopment() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	return nil
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

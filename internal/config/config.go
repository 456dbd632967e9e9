package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Mail     MailConfig
	API      APIConfig
	Trigger  TriggerConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `env:"SERVER_PORT" envDefault:"8080"`
	Env            string        `env:"SERVER_ENV" envDefault:"development"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `env:"DB_HOST" envDefault:"localhost"`
	Port      string `env:"DB_PORT" envDefault:"8000"`
	Namespace string `env:"DB_NAMESPACE" envDefault:"nutrilife"`
	Database  string `env:"DB_DATABASE" envDefault:"campus"`
	User      string `env:"DB_USER" envDefault:"root"`
	Password  string `env:"DB_PASSWORD" envDefault:"root"`
}

// JWTConfig holds JWT validation settings. The server only needs the
// public key; the private key lives with the admin-token tool.
type JWTConfig struct {
	PrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./keys/jwt_public.pem"`
	ExpirationMins int    `env:"JWT_EXPIRATION_MINS" envDefault:"60"`
	Issuer         string `env:"JWT_ISSUER" envDefault:"api.nutrilife-campus.org"`
}

// MailConfig holds outbound email settings. An empty SendGrid key leaves
// the mailer unconfigured: notification workflows then skip dispatch
// instead of failing.
type MailConfig struct {
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SenderEmail    string `env:"MAIL_SENDER_EMAIL" envDefault:"noreply@nutrilife-campus.org"`
	SenderName     string `env:"MAIL_SENDER_NAME" envDefault:"NutriLife Campus"`

	// DisplayTimezone is the timezone used for dates in email bodies.
	DisplayTimezone string `env:"MAIL_DISPLAY_TIMEZONE" envDefault:"Australia/Melbourne"`
}

// APIConfig holds the public API gate settings
type APIConfig struct {
	// Key gates the public read endpoints via X-API-Key. Empty disables
	// the check.
	Key string `env:"API_KEY"`
}

// TriggerConfig holds trigger bus settings
type TriggerConfig struct {
	Workers     int           `env:"TRIGGER_WORKERS" envDefault:"4"`
	QueueSize   int           `env:"TRIGGER_QUEUE_SIZE" envDefault:"256"`
	MaxAttempts int           `env:"TRIGGER_MAX_ATTEMPTS" envDefault:"3"`
	Timeout     time.Duration `env:"TRIGGER_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from the environment, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation
	if c.JWT.PublicKeyPath == "" {
		errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required"))
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	// Mail validation
	if c.Mail.SendGridAPIKey != "" && c.Mail.SenderEmail == "" {
		errs = append(errs, errors.New("MAIL_SENDER_EMAIL is required when SENDGRID_API_KEY is set"))
	}
	if _, err := time.LoadLocation(c.Mail.DisplayTimezone); err != nil {
		errs = append(errs, fmt.Errorf("MAIL_DISPLAY_TIMEZONE is not a valid timezone: %w", err))
	}

	// Production hardening
	if c.IsProduction() && c.API.Key == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// Trigger validation
	if c.Trigger.Workers <= 0 {
		errs = append(errs, errors.New("TRIGGER_WORKERS must be positive"))
	}
	if c.Trigger.MaxAttempts <= 0 {
		errs = append(errs, errors.New("TRIGGER_MAX_ATTEMPTS must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Timezone loads the configured display timezone, UTC on failure.
func (c *Config) Timezone() *time.Location {
	loc, err := time.LoadLocation(c.Mail.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Package config manages application configuration for the NutriLife
// Campus API.
//
// Configuration is parsed from environment variables via struct tags
// (github.com/caarlos0/env), after loading an optional .env file with
// github.com/joho/godotenv:
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: access token validation settings
//   - MailConfig: SendGrid and display timezone settings
//   - APIConfig: public API key gate
//   - TriggerConfig: trigger bus worker pool settings
//
// Defaults suit local development; Validate enforces the stricter
// production requirements (an API key, a valid timezone).
package config

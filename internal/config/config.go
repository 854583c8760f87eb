package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	// Application
	AppEnv  string
	AppURL  string
	Port    string
	GinMode string

	// Database
	DBDriver   string // mysql, postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	// Security
	JWTSecret                string
	JWTExpiry                time.Duration
	TokenPasswordResetExpiry time.Duration
	BcryptCost               int
	AuthRateLimit            int
	AuthRateWindow           time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Optional integrations
	SentryDSN    string
	OpenAIAPIKey string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppEnv:  envString("APP_ENV", "development"),
		AppURL:  envString("APP_URL", "http://localhost:3000"),
		Port:    envString("PORT", "3000"),
		GinMode: envString("GIN_MODE", "debug"),

		DBDriver:   envString("DB_DRIVER", "postgres"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "reframeme"),
		DBPassword: envString("DB_PASSWORD", "reframeme"),
		DBName:     envString("DB_NAME", "reframeme"),
		DBPath:     envString("DB_PATH", "./data/reframeme.db"),

		JWTSecret:                envString("JWT_SECRET", ""),
		JWTExpiry:                envDuration("JWT_EXPIRY", 168*time.Hour),
		TokenPasswordResetExpiry: envDuration("TOKEN_PASSWORD_RESET_EXPIRY", 15*time.Minute),
		BcryptCost:               envInt("BCRYPT_COST", 12),
		AuthRateLimit:            envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:           envDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		EmailFrom:    envString("EMAIL_FROM", "noreply@reframeme.app"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		SentryDSN:    envString("SENTRY_DSN", ""),
		OpenAIAPIKey: envString("OPENAI_API_KEY", ""),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg
}

// validateProduction exits when a production deployment is missing secrets that
// development can live without.
func validateProduction(cfg *Config) {
	if cfg.JWTSecret == "" {
		slog.Error("production deployment requires JWT_SECRET")
		os.Exit(1)
	}
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development to log reset links instead of sending them")
		os.Exit(1)
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

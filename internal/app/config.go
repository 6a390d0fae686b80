package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harborpoint/customerd/pkg/jwtx"
)

type Config struct {
	Issuer     string        // Optional: issuer claim for tokens (default: customerd)
	SigningKey string        // Required: HS256 signing key, at least 32 bytes
	SessionKey string        // Optional: cookie session key (default: signing key)
	TokenTTL   time.Duration // Optional: token lifetime (default: 7 days)

	AdminUsername string // Optional: bootstrap admin created when the user table is empty
	AdminPassword string // Optional: bootstrap admin password

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./customerd.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

var ErrMissingSigningKey = errors.New("CUSTOMERD_SIGNING_KEY must be set")

func LoadConfig() Config {
	cfg := Config{
		Issuer:              getEnvOrDefault("CUSTOMERD_ISSUER", "customerd"),
		SigningKey:          os.Getenv("CUSTOMERD_SIGNING_KEY"),
		SessionKey:          os.Getenv("CUSTOMERD_SESSION_KEY"),
		TokenTTL:            getEnvDurationOrDefault("CUSTOMERD_TOKEN_TTL", jwtx.DefaultTokenTTL),
		AdminUsername:       os.Getenv("CUSTOMERD_ADMIN_USERNAME"),
		AdminPassword:       os.Getenv("CUSTOMERD_ADMIN_PASSWORD"),
		DatabaseFile:        getEnvOrDefault("CUSTOMERD_DATABASE_FILE", "customerd.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// The session key only protects cookie integrity, so falling back to
	// the signing key is acceptable for single-binary deployments.
	if cfg.SessionKey == "" {
		cfg.SessionKey = cfg.SigningKey
	}

	return cfg
}

// Validate fails fast on configuration the service cannot run with.
// A missing or short signing key must stop startup, not surface later as
// broken tokens.
func (c Config) Validate() error {
	if c.SigningKey == "" {
		return ErrMissingSigningKey
	}
	if len(c.SigningKey) < jwtx.MinKeySize {
		return fmt.Errorf("CUSTOMERD_SIGNING_KEY must be at least %d bytes, got %d",
			jwtx.MinKeySize, len(c.SigningKey))
	}
	return nil
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

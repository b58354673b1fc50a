package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// HTTP Server
	Port         string
	CookieSecure bool

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Logging
	LogLevel string

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string

	// Ledger
	SessionTTL      time.Duration
	DefaultCurrency string
	Timezone        string
}

// Load reads a local .env file if there is one, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		DBDriver:    getEnv("DB_DRIVER", DriverSQLite),
		DBPath:      getEnv("DB_PATH", "./data/fintrack.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),

		SessionTTL:      getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "PHP")),
		Timezone:        getEnv("TIMEZONE", "UTC"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errors = append(errors, "DB_PATH cannot be empty when using the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using the postgres driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid db driver '%s': must be one of [%s %s]", c.DBDriver, DriverSQLite, DriverPostgres))
	}

	if _, err := c.SlogLevel(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at least 1 minute", c.SessionTTL))
	}

	if len(c.DefaultCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be a 3-letter code", c.DefaultCurrency))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel)
}

// Location returns the zone calendar reports are cut in. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

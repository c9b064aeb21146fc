package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Store backend selection
	StoreBackend string

	// Firestore
	FirebaseProjectID   string
	FirebaseCredentials string
	AppNamespace        string

	// Identity (optional pre-issued token; absent means anonymous)
	SessionToken string

	// SQLite
	SQLiteDBPath string

	// AMQP (optional change-event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Reporting window
	FiscalWindowStart string
	FiscalWindowEnd   string

	// Banner
	BannerTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		StoreBackend: getEnv("STORE_BACKEND", "memory"),

		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		AppNamespace:        getEnv("APP_NAMESPACE", "default-app"),

		SessionToken: getEnv("SESSION_TOKEN", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/avedash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "avedash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		FiscalWindowStart: getEnv("FISCAL_WINDOW_START", "2025-10-01"),
		FiscalWindowEnd:   getEnv("FISCAL_WINDOW_END", "2026-09-30"),

		BannerTTL: getEnvDuration("BANNER_TTL", 5*time.Second),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "memory", "sqlite", "firestore":
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of [memory sqlite firestore]", c.StoreBackend))
	}

	if c.StoreBackend == "firestore" {
		if c.FirebaseProjectID == "" {
			errors = append(errors, "FIREBASE_PROJECT_ID is required when using the firestore backend")
		}
		if c.AppNamespace == "" {
			errors = append(errors, "APP_NAMESPACE cannot be empty when using the firestore backend")
		}
		if c.FirebaseCredentials != "" {
			if _, err := os.Stat(c.FirebaseCredentials); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Firebase credentials file does not exist: %s", c.FirebaseCredentials))
			}
		}
	}

	if c.StoreBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using the sqlite backend")
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
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	start, startErr := time.Parse("2006-01-02", c.FiscalWindowStart)
	if startErr != nil {
		errors = append(errors, fmt.Sprintf("invalid fiscal window start '%s': must be YYYY-MM-DD", c.FiscalWindowStart))
	}
	end, endErr := time.Parse("2006-01-02", c.FiscalWindowEnd)
	if endErr != nil {
		errors = append(errors, fmt.Sprintf("invalid fiscal window end '%s': must be YYYY-MM-DD", c.FiscalWindowEnd))
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errors = append(errors, fmt.Sprintf("fiscal window end %s precedes start %s", c.FiscalWindowEnd, c.FiscalWindowStart))
	}

	if c.BannerTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid banner TTL %v: must be at least 1 second", c.BannerTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Window returns the parsed fiscal window bounds. Call Validate first.
func (c *Config) Window() (time.Time, time.Time) {
	start, _ := time.Parse("2006-01-02", c.FiscalWindowStart)
	end, _ := time.Parse("2006-01-02", c.FiscalWindowEnd)
	return start.UTC(), end.UTC()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

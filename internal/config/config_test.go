package config

import (
	"strings"
	"testing"
	"time"
)

func valid() *Config {
	return &Config{
		Port:              "8082",
		StoreBackend:      "memory",
		AppNamespace:      "default-app",
		SQLiteDBPath:      "./data/avedash.db",
		AMQPExchange:      "avedash",
		AMQPQueue:         "ledger_events",
		FiscalWindowStart: "2025-10-01",
		FiscalWindowEnd:   "2026-09-30",
		BannerTTL:         5 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }, "invalid store backend"},
		{"firestore needs project", func(c *Config) { c.StoreBackend = "firestore" }, "FIREBASE_PROJECT_ID is required"},
		{"sqlite needs path", func(c *Config) { c.StoreBackend = "sqlite"; c.SQLiteDBPath = "" }, "SQLite database path"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme"},
		{"bad window start", func(c *Config) { c.FiscalWindowStart = "October" }, "invalid fiscal window start"},
		{"inverted window", func(c *Config) { c.FiscalWindowStart = "2026-10-01"; c.FiscalWindowEnd = "2025-09-30" }, "precedes start"},
		{"banner ttl too small", func(c *Config) { c.BannerTTL = 100 * time.Millisecond }, "invalid banner TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Window(t *testing.T) {
	cfg := valid()
	start, end := cfg.Window()
	if start.Year() != 2025 || start.Month() != 10 || start.Day() != 1 {
		t.Errorf("window start = %v", start)
	}
	if end.Year() != 2026 || end.Month() != 9 || end.Day() != 30 {
		t.Errorf("window end = %v", end)
	}
}

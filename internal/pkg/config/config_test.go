package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		AppEnv:              "dev",
		AppPort:             "4000",
		AppBaseURL:          "https://app.example.test",
		DBUser:              "contactdeck",
		DBPassword:          "secret",
		DBHost:              "127.0.0.1",
		DBPort:              "3306",
		DBName:              "contactdeck_db",
		StripeSecretKey:     "sk_test_123",
		StripeWebhookSecret: "whsec_123",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate failed on complete config: %v", err)
	}
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	mutations := map[string]func(*Config){
		"base url":       func(c *Config) { c.AppBaseURL = "" },
		"bad base url":   func(c *Config) { c.AppBaseURL = "not-a-url" },
		"db user":        func(c *Config) { c.DBUser = "" },
		"db name":        func(c *Config) { c.DBName = "" },
		"stripe key":     func(c *Config) { c.StripeSecretKey = "" },
		"webhook secret": func(c *Config) { c.StripeWebhookSecret = "" },
		"bad app env":    func(c *Config) { c.AppEnv = "production" },
	}

	for name, mutate := range mutations {
		cfg := validConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected validation to fail for %s", name)
		}
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_BASE_URL", "https://app.example.test")
	t.Setenv("DB_USER", "cd")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "dbhost")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "cd_db")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBHost != "dbhost" || cfg.DBPort != "3307" {
		t.Fatalf("unexpected db config: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev mode")
	}
}

func TestDSN(t *testing.T) {
	cfg := validConfig()
	dsn := cfg.DSN()

	if !strings.HasPrefix(dsn, "contactdeck:secret@tcp(127.0.0.1:3306)/contactdeck_db?") {
		t.Fatalf("unexpected DSN: %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=True") {
		t.Fatalf("DSN missing parseTime: %q", dsn)
	}
}

func TestMigrateURL(t *testing.T) {
	url := validConfig().MigrateURL()
	if !strings.HasPrefix(url, "mysql://") || !strings.Contains(url, "multiStatements=true") {
		t.Fatalf("unexpected migrate URL: %q", url)
	}
}

func TestCacheAddr(t *testing.T) {
	cfg := validConfig()
	cfg.CacheHost = "cache"
	cfg.CachePort = "6380"
	if got := cfg.CacheAddr(); got != "cache:6380" {
		t.Fatalf("CacheAddr = %q, want cache:6380", got)
	}
}

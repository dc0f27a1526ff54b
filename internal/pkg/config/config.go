package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every externally supplied setting the service needs. It is
// loaded and validated exactly once at process start and handed to the
// components that need it; nothing reads ambient environment state at call
// time.
type Config struct {
	AppEnv  string `validate:"oneof=dev staging prod"`
	AppHost string
	AppPort string `validate:"required"`

	// Public base URL used to build checkout redirect URLs.
	AppBaseURL string `validate:"required,url"`

	DBUser     string `validate:"required"`
	DBPassword string `validate:"required"`
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required"`
	DBName     string `validate:"required"`

	CacheHost string
	CachePort string

	StripeSecretKey     string `validate:"required"`
	StripeWebhookSecret string `validate:"required"`
	// Optional connected-account id; empty means the platform account.
	StripeAccountID string

	// Price-reference overrides for the static plan catalog. Empty values
	// keep the compiled-in defaults.
	PriceRefStandard string
	PriceRefPro      string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string
}

// Load reads an optional .env file, overlays OS environment variables and
// validates the result. Missing required settings fail startup instead of
// surfacing later as half-initialized handlers.
func Load() (*Config, error) {
	// Look for .env relative to the binary and relative to the repo root
	// when run from cmd/<app>.
	envFiles := []string{".env", "../../.env", "../../../.env"}

	var fileVars map[string]string
	for _, envFile := range envFiles {
		if vars, err := godotenv.Read(envFile); err == nil {
			fileVars = vars
			break
		}
	}

	get := func(key, def string) string {
		if val, ok := fileVars[key]; ok && val != "" {
			return val
		}
		if val := os.Getenv(key); val != "" {
			return val
		}
		return def
	}

	cfg := &Config{
		AppEnv:     get("APP_ENV", "prod"),
		AppHost:    get("APP_HOST", "localhost"),
		AppPort:    get("APP_PORT", "4000"),
		AppBaseURL: get("APP_BASE_URL", ""),

		DBUser:     get("DB_USER", ""),
		DBPassword: get("DB_PASSWORD", ""),
		DBHost:     get("DB_HOST", "127.0.0.1"),
		DBPort:     get("DB_PORT", "3306"),
		DBName:     get("DB_NAME", ""),

		CacheHost: get("CACHE_HOST", "localhost"),
		CachePort: get("CACHE_PORT", "6379"),

		StripeSecretKey:     get("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: get("STRIPE_WEBHOOK_SECRET", ""),
		StripeAccountID:     get("STRIPE_ACCOUNT_ID", ""),

		PriceRefStandard: get("PLAN_PRICE_REF_STANDARD", ""),
		PriceRefPro:      get("PLAN_PRICE_REF_PRO", ""),

		SMTPHost:     get("SMTP_HOST", ""),
		SMTPPort:     get("SMTP_PORT", "587"),
		SMTPUsername: get("SMTP_USERNAME", ""),
		SMTPPassword: get("SMTP_PASSWORD", ""),
		SMTPSender:   get("SMTP_SENDER", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// DSN builds the MySQL data source name for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// MigrateURL builds the database URL used by golang-migrate.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// CacheAddr returns the redis address.
func (c *Config) CacheAddr() string {
	return fmt.Sprintf("%s:%s", c.CacheHost, c.CachePort)
}

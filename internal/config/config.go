package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	AppPort          string
	DatabaseDriver   string
	DatabaseDSN      string
	JWTSecret        string
	TokenTTL         time.Duration
	AdminEmail       string
	AdminPassword    string
	UploadDir        string
	CartPolicy       string
	BodyLimitMB      int
	RabbitMQURL      string
	CORSAllowOrigins string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "ecommerce.db")
	v.SetDefault("TOKEN_TTL", "2h")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("CART_POLICY", "replace")
	v.SetDefault("BODY_LIMIT_MB", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		AdminEmail:       v.GetString("ADMIN_EMAIL"),
		AdminPassword:    v.GetString("ADMIN_PASSWORD"),
		UploadDir:        v.GetString("UPLOAD_DIR"),
		CartPolicy:       strings.ToLower(v.GetString("CART_POLICY")),
		BodyLimitMB:      v.GetInt("BODY_LIMIT_MB"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing or malformed settings.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AdminEmail == "" || c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	switch c.CartPolicy {
	case "replace", "accumulate":
	default:
		errs = append(errs, fmt.Errorf("unsupported CART_POLICY %q", c.CartPolicy))
	}
	if c.BodyLimitMB <= 0 {
		errs = append(errs, fmt.Errorf("BODY_LIMIT_MB must be positive, got %d", c.BodyLimitMB))
	}
	return errors.Join(errs...)
}

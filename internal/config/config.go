package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrJWTSecretMissing = errors.New("JWT_SECRET environment variable is required")
	ErrJWTSecretShort   = errors.New("JWT_SECRET must be at least 32 characters long")
)

const minJWTSecretLen = 32

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPAddr string

	OrderAPIURL     string
	OrderAPITimeout time.Duration

	// DatabaseURL, when set, makes PostgreSQL the catalog source; CatalogFile is
	// the fallback.
	DatabaseURL    string
	CatalogFile    string
	CatalogRefresh time.Duration

	KafkaBrokers  []string
	KafkaTopic    string
	NotifierGroup string

	JWTSecret string

	SMTPHost string
	SMTPPort string
	SMTPFrom string
}

func Load() Config {
	return Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		OrderAPIURL:     getEnv("ORDER_API_URL", "http://localhost:5000"),
		OrderAPITimeout: getEnvDuration("ORDER_API_TIMEOUT", 15*time.Second),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CatalogFile:     getEnv("CATALOG_FILE", "catalog.json"),
		CatalogRefresh:  getEnvDuration("CATALOG_REFRESH", time.Minute),
		KafkaBrokers:    getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "checkout-events"),
		NotifierGroup:   getEnv("NOTIFIER_GROUP", "checkout-notifier"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "1025"),
		SMTPFrom:        getEnv("SMTP_FROM", "orders@solar-storefront.local"),
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

// ValidateJWTSecret checks the signing secret needed by any binary that reads tokens.
func (c Config) ValidateJWTSecret() error {
	if c.JWTSecret == "" {
		return ErrJWTSecretMissing
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		return ErrJWTSecretShort
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

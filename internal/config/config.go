package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string
	Env     string
	Storage string

	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	OrderServiceURL     string
	OrderServiceTimeout time.Duration

	RulesFile string
}

// LoadDotEnv loads .env.local then .env. Already-set variables are never
// overwritten, so the process environment always wins.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load reads configuration from environment variables.
func Load() Config {
	timeout, err := time.ParseDuration(getenv("ORDER_SERVICE_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}

	return Config{
		Addr:                getenv("ECO_ADDR", ":8080"),
		Env:                 getenv("ECO_ENV", "development"),
		Storage:             getenv("CART_STORAGE", "memory"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		OrderServiceURL:     getenv("ORDER_SERVICE_URL", "http://localhost:5000"),
		OrderServiceTimeout: timeout,
		RulesFile:           os.Getenv("CHECKOUT_RULES_FILE"),
	}
}

// ErrMissingJWTSecret means JWT_SECRET is empty outside development.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")

func (c Config) Development() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Validate refuses settings the server must not start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" && !c.Development() {
		return ErrMissingJWTSecret
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

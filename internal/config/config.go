package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Port string
	}
	Postgres struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Redis struct {
		Addr     string // optional; empty disables the product cache
		Password string
	}
	Kafka struct {
		Brokers []string // optional; empty falls back to the log sender
		Topic   string
	}
	RateLimit struct {
		MaxRequests int
		Window      time.Duration
	}
}

// Load reads configuration from the environment, optionally seeding it
// from a .env file first.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = envOrDefault("APP_PORT", "8080")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = envOrDefault("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = envOrDefault("DB_SSLMODE", "disable")

	for name, value := range map[string]string{
		"DB_HOST":     cfg.Postgres.Host,
		"DB_USER":     cfg.Postgres.User,
		"DB_PASSWORD": cfg.Postgres.Password,
		"DB_NAME":     cfg.Postgres.DBName,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	ttl, err := durationOrDefault("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Auth.TokenTTL = ttl

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.Topic = envOrDefault("KAFKA_NOTIFICATIONS_TOPIC", "notifications")

	maxReq, err := intOrDefault("RATE_LIMIT_MAX_REQUESTS", 200)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.MaxRequests = maxReq
	window, err := durationOrDefault("RATE_LIMIT_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.Window = window

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intOrDefault(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database. Empty means demo mode: all state lives in memory.
	DatabaseURL string

	// Redis (sessions, OTP codes, cross-instance event fan-out).
	// Empty means single-instance in-memory mode.
	RedisURL string

	// Security
	JWTSecret      string
	SessionTTL     time.Duration
	OtpTTL         time.Duration
	AllowedOrigins []string
	RateLimitRPM   int

	// Social signal ingestion
	KafkaBrokers []string
	SocialTopic  string
	SocialGroup  string

	// Media storage
	CloudinaryURL string

	// Reverse geocoding
	GeocodeBaseURL string

	// Cron expression for the analytics summary refresh
	SummaryRefreshSpec string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		OtpTTL:         getEnvDuration("OTP_TTL", 5*time.Minute),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),

		SocialTopic: getEnv("SOCIAL_TOPIC", "social-signals"),
		SocialGroup: getEnv("SOCIAL_GROUP_ID", "hazard-server"),

		CloudinaryURL:  getEnv("CLOUDINARY_URL", ""),
		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),

		SummaryRefreshSpec: getEnv("SUMMARY_REFRESH_SPEC", "@every 5m"),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required in production")
		}
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DemoMode reports whether the server should run entirely on in-memory
// stores.
func (c *Config) DemoMode() bool {
	return c.DatabaseURL == ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

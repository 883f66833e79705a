package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External providers
	MarketData   ProviderConfig
	Fundamentals ProviderConfig

	// Scoring
	Scoring ScoringConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds settings for one external data provider.
type ProviderConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

// ScoringConfig holds scoring service settings.
type ScoringConfig struct {
	// Tickers refreshed by the scheduler
	Watchlist []string
	// Cron spec for the watchlist refresh job
	RefreshCron string
	// TTL for memoized score payloads
	ScoreTTL time.Duration
	// TTL for cached raw provider snapshots
	SnapshotTTL time.Duration
	// Whether score requests include the opportunity series
	IncludeOpportunity bool
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		MarketData: ProviderConfig{
			BaseURL:       getEnv("MARKETDATA_BASE_URL", "https://marketdata.equitylens.dev"),
			APIKey:        getEnv("MARKETDATA_API_KEY", ""),
			Timeout:       getEnvAsDuration("MARKETDATA_TIMEOUT", "15s"),
			RatePerSecond: getEnvAsFloat("MARKETDATA_RATE_PER_SECOND", 2.0),
			RateBurst:     getEnvAsInt("MARKETDATA_RATE_BURST", 4),
		},

		Fundamentals: ProviderConfig{
			BaseURL:       getEnv("FUNDAMENTALS_BASE_URL", "https://fundamentals.equitylens.dev"),
			APIKey:        getEnv("FUNDAMENTALS_API_KEY", ""),
			Timeout:       getEnvAsDuration("FUNDAMENTALS_TIMEOUT", "20s"),
			RatePerSecond: getEnvAsFloat("FUNDAMENTALS_RATE_PER_SECOND", 1.0),
			RateBurst:     getEnvAsInt("FUNDAMENTALS_RATE_BURST", 2),
		},

		Scoring: ScoringConfig{
			Watchlist:          getEnvAsSlice("SCORING_WATCHLIST", []string{}),
			RefreshCron:        getEnv("SCORING_REFRESH_CRON", "30 6 * * MON-FRI"),
			ScoreTTL:           getEnvAsDuration("SCORING_SCORE_TTL", "1h"),
			SnapshotTTL:        getEnvAsDuration("SCORING_SNAPSHOT_TTL", "6h"),
			IncludeOpportunity: getEnvAsBool("SCORING_INCLUDE_OPPORTUNITY", true),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("MARKETDATA_BASE_URL is required")
	}

	if c.Scoring.ScoreTTL <= 0 {
		return fmt.Errorf("SCORING_SCORE_TTL must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

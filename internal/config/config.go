package config

import (
	"fmt"
	"time"

	"github.com/veritext/veritext/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost          string
	RedisPassword      string
	RedisStreamKey     string
	RedisConsumerGroup string
	RedisDeadLetterKey string

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Engine
	TopN                int
	MinSpanLength       int
	MaxConcurrentChecks int
	CheckTimeout        time.Duration
	TokenizerLanguage   string

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "veritext")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "checks:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "checks:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "checks:dlq")

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "veritext")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Engine
	cfg.TopN = env.GetEnvInt("CHECK_TOP_N", 5)
	cfg.MinSpanLength = env.GetEnvInt("MIN_SPAN_LENGTH", 10)
	cfg.MaxConcurrentChecks = env.GetEnvInt("MAX_CONCURRENT_CHECKS", 5)
	cfg.CheckTimeout = env.GetEnvDuration("CHECK_TIMEOUT", 10*time.Minute)
	cfg.TokenizerLanguage = env.GetEnv("TOKENIZER_LANGUAGE", "english")

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("CHECK_TOP_N must be greater than 0")
	}
	if c.MinSpanLength <= 0 {
		return fmt.Errorf("MIN_SPAN_LENGTH must be greater than 0")
	}
	if c.MaxConcurrentChecks <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be greater than 0")
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("CHECK_TIMEOUT must be greater than 0")
	}
	return nil
}

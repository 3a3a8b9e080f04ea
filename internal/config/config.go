// Package config provides configuration for the lexidrill binaries
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Quiz      QuizConfig
	Redis     RedisConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig

	NativeLanguage  string `validate:"required"`
	AnthropicAPIKey string
	// CLIUser overrides the identity the terminal client talks as.
	CLIUser string
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `validate:"required"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int `validate:"min=1,max=65535"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	File  string
}

// QuizConfig holds lesson pacing settings
type QuizConfig struct {
	CorrectDelay time.Duration `validate:"min=0"`
	WrongDelay   time.Duration `validate:"min=0"`
	OptionCount  int           `validate:"min=2,max=4"`
}

// RedisConfig holds Redis connection settings. An empty Addr keeps
// sessions in memory.
type RedisConfig struct {
	Addr     string `validate:"omitempty,hostname_port"`
	Password string
	DB       int `validate:"min=0,max=15"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `validate:"min=1"`
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	RequestsPerMinute int `validate:"min=1"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{Path: getEnv("DATABASE_PATH", "lexidrill.db")},
		Logging: LoggingConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:  os.Getenv("LOG_FILE"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		NativeLanguage:  getEnv("NATIVE_LANGUAGE", "Russian"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		CLIUser:         os.Getenv("LEXIDRILL_USER"),
	}

	var err error
	if cfg.Server.Port, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Quiz.OptionCount, err = getInt("QUIZ_OPTION_COUNT", 4); err != nil {
		return nil, err
	}
	if cfg.Quiz.CorrectDelay, err = getDuration("QUIZ_CORRECT_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.Quiz.WrongDelay, err = getDuration("QUIZ_WRONG_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RequestsPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}

	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	} else {
		for _, origin := range strings.Split(corsOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ImportEnabled reports whether document import can reach the AI API.
func (c *Config) ImportEnabled() bool {
	return strings.TrimSpace(c.AnthropicAPIKey) != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DATABASE_PATH", "PORT", "LOG_LEVEL", "LOG_FILE", "QUIZ_CORRECT_DELAY", "QUIZ_WRONG_DELAY",
	"QUIZ_OPTION_COUNT", "NATIVE_LANGUAGE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"ANTHROPIC_API_KEY", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "LEXIDRILL_USER",
}

// clearEnv blanks every variable Load reads; an empty value means "use the default".
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lexidrill.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.Second, cfg.Quiz.CorrectDelay)
	assert.Equal(t, 2*time.Second, cfg.Quiz.WrongDelay)
	assert.Equal(t, 4, cfg.Quiz.OptionCount)
	assert.Equal(t, "Russian", cfg.NativeLanguage)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerMinute)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.ImportEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_PATH", "/tmp/words.db")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("QUIZ_CORRECT_DELAY", "0s")
	t.Setenv("QUIZ_WRONG_DELAY", "500ms")
	t.Setenv("QUIZ_OPTION_COUNT", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/words.db", cfg.Database.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Zero(t, cfg.Quiz.CorrectDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Quiz.WrongDelay)
	assert.Equal(t, 3, cfg.Quiz.OptionCount)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.ImportEnabled())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"bad delay", "QUIZ_WRONG_DELAY", "soon"},
		{"negative delay", "QUIZ_CORRECT_DELAY", "-1s"},
		{"too few options", "QUIZ_OPTION_COUNT", "1"},
		{"too many options", "QUIZ_OPTION_COUNT", "5"},
		{"redis address without port", "REDIS_ADDR", "localhost"},
		{"zero rate limit", "RATE_LIMIT_PER_MINUTE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

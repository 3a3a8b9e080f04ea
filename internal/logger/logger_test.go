package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New("warn", path)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("visible", zap.String("user", "42"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.Contains(t, string(data), `"user":"42"`)
}

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		log, err := New(level, filepath.Join(t.TempDir(), level+".log"))
		require.NoError(t, err, level)
		assert.True(t, log.Core().Enabled(zap.ErrorLevel))
	}

	_, err := New("loud", "")
	assert.Error(t, err)
}

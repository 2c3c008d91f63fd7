package infrastructure

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourtrade2023/inventory-aging-app/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestInitializeLogger_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "app.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("startup complete")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "startup complete")
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestInitializeLogger_Stdout(t *testing.T) {
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

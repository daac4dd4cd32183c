package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/avilachehab/christmas-gifts/internal/config"
)

func TestLoggerConfig_Defaults(t *testing.T) {
	cfg, err := loggerConfig(config.LoggerConfig{Level: "INFO"}, config.AppConfig{Name: "christmas-gifts", Env: "production", Version: "1.2.0"})
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.False(t, cfg.Development)
	assert.Equal(t, map[string]interface{}{"service": "christmas-gifts", "env": "production", "version": "1.2.0"}, cfg.InitialFields)
}

func TestLoggerConfig_Console(t *testing.T) {
	cfg, err := loggerConfig(config.LoggerConfig{Level: "debug", Format: "console"}, config.AppConfig{Env: "development"})
	require.NoError(t, err)

	assert.Equal(t, "console", cfg.Encoding)
	assert.True(t, cfg.Development)
	assert.False(t, cfg.DisableStacktrace)
}

func TestLoggerConfig_RejectsUnknownValues(t *testing.T) {
	_, err := loggerConfig(config.LoggerConfig{Level: "loud"}, config.AppConfig{})
	assert.Error(t, err)

	_, err = loggerConfig(config.LoggerConfig{Level: "info", Format: "xml"}, config.AppConfig{})
	assert.Error(t, err)
}

func TestNewLogger_Builds(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "warn"}, config.AppConfig{Name: "christmas-gifts"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

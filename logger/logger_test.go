package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/keroloshany47/retail-etl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFromConfig(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerFromConfig(&buf, config.LogConfig{Level: "info", Format: "json"}, "quality", "run-1")

	log.Debug("hidden")
	log.Info("visible", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "quality", entry["stage"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewLoggerFromConfig_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerFromConfig(&buf, config.LogConfig{Level: "debug", Format: "text"}, "", "")

	log.Debug("details")
	assert.Contains(t, buf.String(), "msg=details")
	assert.NotContains(t, buf.String(), "run_id")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

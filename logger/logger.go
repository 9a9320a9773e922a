package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/keroloshany47/retail-etl/config"
)

func NewLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(handler)
	return logger
}

// NewLoggerFromConfig builds the stage logger: JSON on w unless the config
// asks for text, tagged with the stage name and the driver's run id.
func NewLoggerFromConfig(w io.Writer, cfg config.LogConfig, stage, runID string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if stage != "" {
		logger = logger.With("stage", stage)
	}
	if runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

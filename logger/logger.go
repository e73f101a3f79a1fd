// ABOUTME: This file provides slog initialization for the status-report pipeline
// ABOUTME: Log level and output format are configured via environment variables
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "status-report"

// Init creates the process-wide logger. LOG_LEVEL selects the minimum level
// (debug, info, warn, error) and LOG_FORMAT selects the handler (json, text).
func Init() *slog.Logger {
	return newLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func newLogger(output io.Writer, level, format string) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}

	return slog.New(handler).With("service", serviceName)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

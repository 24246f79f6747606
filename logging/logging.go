package logging

import (
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

func init() {
	// Default to INFO level
	InitLogger("info")
}

// InitLogger initializes the global logger with the specified level and a
// text handler on stderr.
func InitLogger(level string) {
	setLogger(slog.NewTextHandler(os.Stderr, handlerOptions(level)))
}

// InitJSONLogger is InitLogger with a JSON handler, for deployments that
// ship logs to a collector.
func InitJSONLogger(level string) {
	setLogger(slog.NewJSONHandler(os.Stderr, handlerOptions(level)))
}

func handlerOptions(level string) *slog.HandlerOptions {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return &slog.HandlerOptions{
		Level: logLevel,
	}
}

func setLogger(handler slog.Handler) {
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}

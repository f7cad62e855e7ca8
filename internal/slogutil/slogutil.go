// Package slogutil configures the process-wide slog logger with optional
// file rotation and context-carried attributes.
package slogutil

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/agentmart/agentmart/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup configures slog from the logging config.
// If logConfig.File is empty, it logs to console only; otherwise it logs
// to both console and a rotated file.
func Setup(logConfig config.LogConfig) *slog.Logger {
	var writer io.Writer = os.Stdout

	if logConfig.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   logConfig.File,
			MaxSize:    logConfig.MaxSize,
			MaxBackups: logConfig.MaxBackups,
			MaxAge:     logConfig.MaxAge,
			Compress:   logConfig.Compress,
		}
		writer = io.MultiWriter(os.Stdout, fileWriter)
	}

	level := logConfig.Level
	if level == "" {
		level = "info"
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLevel(level),
	})

	return slog.New(WrapHandler(handler))
}

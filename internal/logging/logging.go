// Package logging builds the application's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"inkflow/internal/config"
)

// Result holds the configured logger and the file writer behind it, if any
type Result struct {
	Logger  *slog.Logger
	LogFile io.WriteCloser
}

// Close closes the log file if one was opened
func (r *Result) Close() error {
	if r.LogFile != nil {
		return r.LogFile.Close()
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Setup returns a JSON logger writing to a rotating file when cfg.LogFile is set,
// otherwise a text logger on stderr
func Setup(cfg *config.Config) (*Result, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFile == "" {
		return &Result{Logger: slog.New(slog.NewTextHandler(os.Stderr, opts))}, nil
	}

	w := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}
	return &Result{
		Logger:  slog.New(slog.NewJSONHandler(w, opts)),
		LogFile: w,
	}, nil
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns logger, or a discarding logger when it is nil
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level          string // debug, info, warn, error
	Format         string // json, pretty
	FileEnabled    bool
	FilePath       string // logs directory path
	RotationSize   int    // MB
	RetentionDays  int
	ServiceName    string
	ServiceVersion string
	// Out is the console writer; nil means os.Stderr.
	Out io.Writer
}

// Init initializes the global logger
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var writers []io.Writer
	if cfg.Format == "pretty" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		})
	} else {
		writers = append(writers, out)
	}

	if cfg.FileEnabled {
		if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, rotating(cfg.FilePath, "app.log", cfg.RotationSize, cfg.RetentionDays, 10))
		// ERROR and above only
		writers = append(writers, &errorWriter{w: rotating(cfg.FilePath, "error.log", cfg.RotationSize, cfg.RetentionDays, 10)})
	}

	multi := zerolog.MultiLevelWriter(writers...)
	log.Logger = zerolog.New(multi).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Logger()

	log.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("logger initialized")
	return nil
}

// NewAccessLogger creates a logger for HTTP access logs. An empty logPath
// returns the global logger.
func NewAccessLogger(logPath string, rotationSize, retentionDays int) zerolog.Logger {
	if logPath == "" {
		return log.Logger
	}
	if err := os.MkdirAll(logPath, 0o755); err != nil {
		log.Warn().Err(err).Msg("failed to create access log directory, using default logger")
		return log.Logger
	}
	return zerolog.New(rotating(logPath, "access.log", rotationSize, retentionDays, 10)).With().
		Timestamp().
		Str("type", "access").
		Logger()
}

func rotating(dir, name string, size, days, backups int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    size, // MB
		MaxAge:     days,
		MaxBackups: backups,
		Compress:   true,
	}
}

// errorWriter drops events below error level.
type errorWriter struct {
	w io.Writer
}

func (e *errorWriter) Write(p []byte) (int, error) { return len(p), nil }

func (e *errorWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.ErrorLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}

// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a RunLogger with contextual helpers
// (persona, use case) for concurrent pipeline workers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel represents different logging levels.
// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger defines the minimal logging interface for RecallBench.
// Args are structured key/value pairs as accepted by slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Config configures construction of a structured logger.
type Config struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns a baseline text info level configuration on stderr.
func DefaultConfig() *Config {
	return &Config{Level: LogLevelInfo, Format: "text", Output: os.Stderr}
}

// New builds a Logger from a config (or defaults if nil).
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// RunLogger decorates a Logger with persona / use case context so concurrent
// pipeline workers emit attributable entries. Cheap to copy via With* methods.
type RunLogger struct {
	inner     Logger
	personaID string
	useCaseID string
}

// NewRunLogger wraps a Logger (NoOpLogger when nil).
func NewRunLogger(inner Logger) *RunLogger {
	if inner == nil {
		inner = NoOpLogger{}
	}
	return &RunLogger{inner: inner}
}

// WithPersona attaches a persona identifier to every entry.
func (l *RunLogger) WithPersona(id string) *RunLogger {
	nl := *l
	nl.personaID = id
	return &nl
}

// WithUseCase attaches a use case identifier to every entry.
func (l *RunLogger) WithUseCase(id string) *RunLogger {
	nl := *l
	nl.useCaseID = id
	return &nl
}

func (l *RunLogger) args(args []any) []any {
	if l.personaID != "" {
		args = append(args, "persona_id", l.personaID)
	}
	if l.useCaseID != "" {
		args = append(args, "use_case_id", l.useCaseID)
	}
	return args
}

// Debug logs at debug level with contextual attributes.
func (l *RunLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, l.args(args)...) }

// Info logs at info level with contextual attributes.
func (l *RunLogger) Info(msg string, args ...any) { l.inner.Info(msg, l.args(args)...) }

// Warn logs at warn level with contextual attributes.
func (l *RunLogger) Warn(msg string, args ...any) { l.inner.Warn(msg, l.args(args)...) }

// Error logs at error level with contextual attributes.
func (l *RunLogger) Error(msg string, args ...any) { l.inner.Error(msg, l.args(args)...) }

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug implements Logger.
func (NoOpLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NoOpLogger) Info(string, ...any) {}

// Warn implements Logger.
func (NoOpLogger) Warn(string, ...any) {}

// Error implements Logger.
func (NoOpLogger) Error(string, ...any) {}

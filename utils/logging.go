package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger is the logging surface every package in this module writes to.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	SetLevel(level LogLevel)
}

type DefaultLogger struct {
	logger *slog.Logger
	level  atomic.Int32
}

// NewLogger returns a text logger on stderr.
func NewLogger(level LogLevel) *DefaultLogger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo returns a text logger writing to w.
func NewLoggerTo(w io.Writer, level LogLevel) *DefaultLogger {
	opts := &slog.HandlerOptions{
		// The level gate lives in DefaultLogger so SetLevel can lower it later.
		Level: slog.LevelDebug,
	}
	l := &DefaultLogger{logger: slog.New(slog.NewTextHandler(w, opts))}
	l.level.Store(int32(level))
	return l
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *DefaultLogger {
	return NewLoggerTo(io.Discard, LogLevelOff)
}

// SetLevel is safe to call while other goroutines are logging.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

func (l *DefaultLogger) enabled(level LogLevel) bool {
	return LogLevel(l.level.Load()) >= level
}

// With returns a logger that adds the given attributes to every record.
func (l *DefaultLogger) With(keysAndValues ...any) *DefaultLogger {
	child := &DefaultLogger{logger: l.logger.With(keysAndValues...)}
	child.level.Store(l.level.Load())
	return child
}

func (l *DefaultLogger) Debug(msg string, keysAndValues ...any) {
	if l.enabled(LogLevelDebug) {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l *DefaultLogger) Info(msg string, keysAndValues ...any) {
	if l.enabled(LogLevelInfo) {
		l.logger.Info(msg, keysAndValues...)
	}
}

func (l *DefaultLogger) Warn(msg string, keysAndValues ...any) {
	if l.enabled(LogLevelWarn) {
		l.logger.Warn(msg, keysAndValues...)
	}
}

func (l *DefaultLogger) Error(msg string, keysAndValues ...any) {
	if l.enabled(LogLevelError) {
		l.logger.Error(msg, keysAndValues...)
	}
}

func (l LogLevel) String() string {
	names := [...]string{"OFF", "ERROR", "WARN", "INFO", "DEBUG"}
	if l < 0 || int(l) >= len(names) {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return names[l]
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "OFF":
		*l = LogLevelOff
	case "ERROR":
		*l = LogLevelError
	case "WARN", "WARNING":
		*l = LogLevelWarn
	case "INFO":
		*l = LogLevelInfo
	case "DEBUG":
		*l = LogLevelDebug
	default:
		return fmt.Errorf("invalid log level: %s", string(text))
	}
	return nil
}

// Package logging provides the logging interface for the reviewkit engine.
// Implement Logger to plug in a custom backend (e.g. logrus, zap); the
// engine only ever talks to the interface.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is the interface the engine and CLI log through.
type Logger interface {
	// Debug logs a debug message
	Debug(format string, args ...any)

	// Info logs an info message
	Info(format string, args ...any)

	// Warn logs a warning message
	Warn(format string, args ...any)

	// Error logs an error message
	Error(format string, args ...any)
}

// Level represents the logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// StderrLogger is the default implementation, writing leveled lines to
// stderr via the standard library. Findings never go through the logger;
// report output is written to stdout by the caller.
type StderrLogger struct {
	level  Level
	prefix string
	logger *log.Logger
}

// NewStderrLogger creates a leveled stderr logger.
func NewStderrLogger(prefix string, level Level) *StderrLogger {
	return &StderrLogger{
		level:  level,
		prefix: prefix,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// SetOutput redirects log output, mainly for tests.
func (l *StderrLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// Debug logs a debug message.
func (l *StderrLogger) Debug(format string, args ...any) {
	if l.level <= LevelDebug {
		l.log("DEBUG", format, args...)
	}
}

// Info logs an info message.
func (l *StderrLogger) Info(format string, args ...any) {
	if l.level <= LevelInfo {
		l.log("INFO", format, args...)
	}
}

// Warn logs a warning message.
func (l *StderrLogger) Warn(format string, args ...any) {
	if l.level <= LevelWarn {
		l.log("WARN", format, args...)
	}
}

// Error logs an error message.
func (l *StderrLogger) Error(format string, args ...any) {
	if l.level <= LevelError {
		l.log("ERROR", format, args...)
	}
}

func (l *StderrLogger) log(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		l.logger.Printf("[%s] [%s] %s", l.prefix, level, msg)
	} else {
		l.logger.Printf("[%s] %s", level, msg)
	}
}

// NopLogger discards all messages.
type NopLogger struct{}

func (NopLogger) Debug(format string, args ...any) {}
func (NopLogger) Info(format string, args ...any)  {}
func (NopLogger) Warn(format string, args ...any)  {}
func (NopLogger) Error(format string, args ...any) {}

// FromVerbose returns a debug-level stderr logger when verbose is set,
// otherwise a warn-level one.
func FromVerbose(prefix string, verbose bool) Logger {
	if verbose {
		return NewStderrLogger(prefix, LevelDebug)
	}
	return NewStderrLogger(prefix, LevelWarn)
}

// Ensure implementations satisfy the interface
var (
	_ Logger = (*StderrLogger)(nil)
	_ Logger = NopLogger{}
)

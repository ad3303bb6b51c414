// Package logging provides the leveled, structured logger shared by every
// storytrack component.
//
// Output always goes to stderr (or an injected writer): stdout belongs to the
// MCP stdio transport and must carry nothing but JSON-RPC frames.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "storytrack"

// Levels lists the accepted level names, lowest first.
var Levels = []string{"debug", "info", "warn", "error"}

// AppLogger wraps a charmbracelet logger with the handful of helpers the
// server needs.
type AppLogger struct {
	logger *log.Logger
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns a process-wide warn-level stderr logger. Components
// constructed without a logger fall back to it.
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger, _ = New(os.Stderr, "warn")
	})
	return defaultLogger
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level string) (*AppLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          Prefix,
	})
	logger.SetLevel(lvl)
	if lvl == log.DebugLevel {
		logger.SetReportCaller(true)
	}

	return &AppLogger{logger: logger}, nil
}

// NewAppLogger creates the production logger on stderr.
func NewAppLogger(level string) (*AppLogger, error) {
	return New(os.Stderr, level)
}

// ParseLevel maps a level name onto a charmbracelet level. An empty name
// means warn.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "", "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of: %s", level, strings.Join(Levels, ", "))
	}
}

func (al *AppLogger) Info(msg string, keyvals ...any) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...any) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...any) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...any) {
	al.logger.Debug(msg, keyvals...)
}

// With returns a child logger that adds keyvals to every line.
func (al *AppLogger) With(keyvals ...any) *AppLogger {
	return &AppLogger{logger: al.logger.With(keyvals...)}
}

// LogPerformance records how long an operation took, at debug level.
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	al.logger.Debug("Performance",
		"operation", operation,
		"duration", time.Since(start),
	)
}

// NewTestLogger creates a debug-level logger that writes to a buffer.
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{logger: logger}, &buf
}

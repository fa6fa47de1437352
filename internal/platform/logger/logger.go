// Package logger provides structured logging for the mine server.
// Every action taken by the simulation should be traceable through this.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus instance with the small surface the rest of
// the server uses. Handlers and systems never touch logrus directly.
type Logger struct {
	l *logrus.Logger
}

// NewLogger creates a logger configured from the environment.
// LOG_LEVEL selects the minimum level (debug, info, warn, error) and
// LOG_FORMAT=json switches to JSON output for log shippers.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &Logger{l: l}
}

// Debug logs verbose diagnostic messages.
func (l *Logger) Debug(msg string) {
	l.l.Debug(msg)
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.l.Info(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.l.Warn(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.l.Error(msg)
}

// Event logs a game event with structured fields so economy activity
// can be filtered out of the general server noise.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.l.WithFields(logrus.Fields{
		"event": eventType,
		"actor": actorID,
	}).Info(details)
}

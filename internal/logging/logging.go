// Package logging provides the application logger.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quillhub/journal/internal/config"
)

// Logger wraps logrus with application helpers.
type Logger struct {
	*logrus.Logger
}

// New builds a logger from configuration. Unknown levels fall back to info.
func New(cfg config.LoggingConfig) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{Logger: l}
}

// WithComponent tags log lines with the originating component.
func (l *Logger) WithComponent(name string) *logrus.Entry {
	return l.WithField("component", name)
}

// LogRequest emits the per-request access log line.
func (l *Logger) LogRequest(requestID, method, path string, status int, duration time.Duration) {
	l.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     status,
		"duration":   duration.String(),
	}).Info("request completed")
}

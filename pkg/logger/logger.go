// Package logger provides the application's structured logging facade on top
// of logrus. Services obtain a named component logger and chain contextual
// fields onto individual records.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingConfig controls the behaviour of a root logger.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
	Output string // "stdout", "stderr" or a file path
}

// Logger wraps a logrus entry so contextual fields can be chained without
// callers touching logrus directly.
type Logger struct {
	entry *logrus.Entry
}

// New creates a root logger from the provided configuration.
func New(cfg LoggingConfig) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	l.SetOutput(resolveOutput(cfg.Output))

	return &Logger{entry: logrus.NewEntry(l)}
}

// NewDefault creates a logger for the named component with default settings.
func NewDefault(component string) *Logger {
	log := New(LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	if component == "" {
		return log
	}
	return log.WithField("component", component)
}

func resolveOutput(output string) io.Writer {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stderr
		}
		return f
	}
}

// WithField returns a logger with the field attached to every record.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger with all fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError attaches an error to the record.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Logger) Fatal(args ...interface{})                 { l.entry.Fatal(args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

// SetOutput redirects the underlying logger, primarily for tests.
func (l *Logger) SetOutput(w io.Writer) { l.entry.Logger.SetOutput(w) }

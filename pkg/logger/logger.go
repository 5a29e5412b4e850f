// Package logger provides logging functionality for the Kafka server.
package logger

import (
	"os"

	logging "github.com/op/go-logging"
)

// Level defines the severity level of the log, mapped onto go-logging's
// own Level type at construction time so call sites never import
// go-logging directly.
type Level int

const (
	// DEBUG level logs detailed information for debugging
	DEBUG Level = iota
	// INFO level logs informational messages
	INFO
	// ERROR level logs error messages
	ERROR
)

var toGoLogging = map[Level]logging.Level{
	DEBUG: logging.DEBUG,
	INFO:  logging.INFO,
	ERROR: logging.ERROR,
}

var format = logging.MustStringFormatter(
	`%{time:2006-01-02 15:04:05} %{level:.5s} %{message}`,
)

// Logger is the interface for logging messages, backed by a go-logging
// module-level logger (see kryptco-kr/logging.go for the pattern this is
// grounded on: a shared backend with a per-module level filter).
type Logger struct {
	backend *logging.Logger
}

// New creates a new logger that discards anything below the given level.
func New(level Level) *Logger {
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(
		logging.NewLogBackend(os.Stdout, "", 0), format,
	))
	leveled.SetLevel(toGoLogging[level], "kafkabroker")
	logging.SetBackend(leveled)
	return &Logger{backend: logging.MustGetLogger("kafkabroker")}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.backend.Debugf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.backend.Infof(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.backend.Errorf(format, args...)
}

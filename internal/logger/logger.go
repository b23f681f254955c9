// Package logger provides the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	log  *logrus.Logger
)

// GetLogger returns a singleton logger. Level and format can be changed
// once config is loaded.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()

		// stdout carries results; logs go to stderr
		log.Out = os.Stderr
		log.SetLevel(logrus.WarnLevel)

		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: false,
			FullTimestamp: true,
			PadLevelText:  true,
		})
	})

	return log
}

// SetLevel parses and applies a level name such as "debug" or "warn"
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	GetLogger().SetLevel(lvl)
	return nil
}

// SetFormat switches between "text" and "json" output
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		GetLogger().SetFormatter(&logrus.TextFormatter{FullTimestamp: true, PadLevelText: true})
	case "json":
		GetLogger().SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
	return nil
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}

// LeveledLogger is the key/value logging interface retryablehttp expects
type LeveledLogger interface {
	Error(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var _ LeveledLogger = &LeveledLogrus{}

// NewLeveledLogrus wraps a logrus logger as a LeveledLogger
func NewLeveledLogrus(logger *logrus.Logger) *LeveledLogrus {
	return &LeveledLogrus{
		Logger: logger,
	}
}

// LeveledLogrus adapts logrus to LeveledLogger
type LeveledLogrus struct {
	*logrus.Logger
}

func (l *LeveledLogrus) fields(keysAndValues ...interface{}) logrus.Fields {
	fields := make(logrus.Fields)

	for i := 0; i < len(keysAndValues)-1; i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}

	return fields
}

func (l *LeveledLogrus) Error(msg string, keysAndValues ...interface{}) {
	l.WithFields(l.fields(keysAndValues...)).Error(msg)
}

func (l *LeveledLogrus) Info(msg string, keysAndValues ...interface{}) {
	l.WithFields(l.fields(keysAndValues...)).Info(msg)
}

func (l *LeveledLogrus) Warn(msg string, keysAndValues ...interface{}) {
	l.WithFields(l.fields(keysAndValues...)).Warn(msg)
}

// Debug is logged at trace level; retryablehttp is chatty at debug
func (l *LeveledLogrus) Debug(msg string, keysAndValues ...interface{}) {
	l.WithFields(l.fields(keysAndValues...)).Trace(msg)
}

// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init configures the shared logger. Logs go to stderr (or whatever out is);
// stdout stays reserved for query results.
func Init(out io.Writer, level, format string) {
	log.SetOutput(out)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}

// WithField returns a field-scoped entry on the shared logger.
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields returns a multi-field entry on the shared logger.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// Package logging builds the process logger shared by the CLI and the
// password manager.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured
const DefaultLevel = logrus.InfoLevel

// New creates a text logger on stderr at the given level name.
// Unknown or empty names fall back to DefaultLevel.
func New(level string) *logrus.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit output
func NewWithWriter(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps a level name to a logrus level
func ParseLevel(level string) logrus.Level {
	if level == "" {
		return DefaultLevel
	}
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return DefaultLevel
	}
	return parsed
}

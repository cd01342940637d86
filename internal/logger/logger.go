// Package logger builds the process-wide logrus instance used by the
// api-server and everything it wires.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to stdout. The level comes from
// LOG_LEVEL and defaults to info when unset or unparseable.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	return l
}

// ParseLevel maps a LOG_LEVEL value onto a logrus level, falling back
// to info for anything it does not recognize.
func ParseLevel(raw string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

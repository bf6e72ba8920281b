package utils

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w (stderr when nil) at the named
// level. An unknown level falls back to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(l *log.Logger, name string) *log.Logger {
	return l.With("component", name)
}

// DiscardLogger is a logger for tests.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}

// GenerateID returns a new v4 UUID string.
func GenerateID() string {
	return uuid.New().String()
}

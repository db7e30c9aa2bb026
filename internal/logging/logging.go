package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a text logger writing to out at the given level. Unknown levels
// fall back to info.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	SetLevel(logger, level)
	return logger
}

// SetLevel applies a textual level to logger, returning false when the level
// could not be parsed.
func SetLevel(logger *logrus.Logger, level string) bool {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		return false
	}
	logger.SetLevel(lvl)
	return true
}

// Discard returns a logger that drops everything. Used in tests and for
// components that must stay quiet while the TUI owns the terminal.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Component returns an entry tagged with the component name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	if logger == nil {
		logger = Discard()
	}
	return logger.WithField("component", name)
}

// OpenFile opens (or creates) an append-only log file under dir.
func OpenFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

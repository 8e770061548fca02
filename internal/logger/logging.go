// Package logger provides charmbracelet/log loggers shared by the suggestd packages.
//
// Every logger writes to stderr: stdout belongs to the populate summary line
// and to the msgpack IPC stream.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger that follows the global log level.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, true, log.TextFormatter)
}

// NewWithConfig creates a charm logger with custom options.
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return NewWithConfig(io.Discard, "", log.FatalLevel, false, false, log.TextFormatter)
}

// SetLevel sets the global level from its name ("debug", "info", "warn", "error").
// Unknown names fall back to info.
func SetLevel(name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", name)
		level = log.InfoLevel
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
}

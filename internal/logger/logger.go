// Package logger implements the domain Logger on charmbracelet/log.
package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ochairo/wheelsize/internal/domain/interfaces"
)

// Options configures a Logger
type Options struct {
	Level      string // debug, info, warn or error
	Timestamps bool
	Prefix     string
}

// Logger writes structured, leveled diagnostics
type Logger struct {
	l *log.Logger
}

// New creates a Logger writing to w (normally stderr)
func New(w io.Writer, opts Options) (*Logger, error) {
	level := log.WarnLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	return &Logger{
		l: log.NewWithOptions(w, log.Options{
			Level:           level,
			Prefix:          opts.Prefix,
			ReportTimestamp: opts.Timestamps,
			TimeFormat:      time.TimeOnly,
		}),
	}, nil
}

// Debug logs debug-level messages
func (g *Logger) Debug(msg string, fields ...interfaces.Field) {
	g.l.Debug(msg, interfaces.KeyVals(fields)...)
}

// Info logs informational messages
func (g *Logger) Info(msg string, fields ...interfaces.Field) {
	g.l.Info(msg, interfaces.KeyVals(fields)...)
}

// Warn logs warning messages
func (g *Logger) Warn(msg string, fields ...interfaces.Field) {
	g.l.Warn(msg, interfaces.KeyVals(fields)...)
}

// Error logs error messages
func (g *Logger) Error(msg string, fields ...interfaces.Field) {
	g.l.Error(msg, interfaces.KeyVals(fields)...)
}

var _ interfaces.Logger = (*Logger)(nil)

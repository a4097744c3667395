package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, structured, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Options controls how a ConsoleLogger renders.
type Options struct {
	Level  string // debug, info, error
	Format string // console or json
	Output io.Writer
}

// ConsoleLogger writes logs through zerolog, human-readable by default.
// Errors always go to stderr when no explicit output is set.
type ConsoleLogger struct {
	out zerolog.Logger
	err zerolog.Logger
}

// New builds a ConsoleLogger from opts.
func New(opts Options) *ConsoleLogger {
	level := ParseLevel(opts.Level)

	stdout, stderr := opts.Output, opts.Output
	if stdout == nil {
		stdout, stderr = os.Stdout, os.Stderr
	}

	return &ConsoleLogger{
		out: newZerolog(stdout, opts.Format, level),
		err: newZerolog(stderr, opts.Format, level),
	}
}

func newZerolog(w io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a level name to zerolog; unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	c.out.Info().Msgf(msg, args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	c.err.Error().Msgf(msg, args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	c.out.Debug().Msgf(msg, args...)
}

// SilentLogger discards all log messages.
// Used when running in TUI mode to prevent log output from interfering with the display.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

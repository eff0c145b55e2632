// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Color enables ANSI colors in pretty output.
	Color bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Color:  true,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output, NoColor: !cfg.Color}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// ValidLevel reports whether level names a supported log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - RequestMore no-ops (in flight, exhausted)
//   - Dispatched tasks and loop internals
//   - Request flow (endpoint, method)
//
// Info: Normal operation events
//   - Completed pages
//   - Successful logins
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Failed page fetches
//   - Rate limit throttling
//   - Outcomes dropped after the loop closed
//   - Non-2xx responses
//
// Error: Error conditions requiring attention
//   - Critical rate limit blocks
//   - Recovered panics in dispatched work
//   - Configuration errors
//
// Context Fields:
//   - component: Emitting component
//   - subject: Alias whose list is paged
//   - page_size: Requested page size
//   - cursor: Alias of the last item received
//   - items: Number of items in a page
//   - more_pages: Whether the server reported more pages
//   - task: Dispatched task name
//   - duration: Task or request duration
//   - endpoint: Remote endpoint path
//   - status: HTTP status code
//   - error_class: Error classification (client, server, rate_limit, network, protocol, remote)
//   - errors_remaining: Current error budget

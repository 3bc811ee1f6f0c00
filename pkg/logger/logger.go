package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a new zerolog logger with structured output
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := parseLevel(os.Getenv("LOG_LEVEL"))

	// Use pretty console output in development or when LOG_FORMAT=pretty
	if os.Getenv("ENV") == "development" || os.Getenv("LOG_FORMAT") == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Caller().
			Str("service", "story-catalog-api").
			Logger()
	}

	// JSON output for production
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "story-catalog-api").
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
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

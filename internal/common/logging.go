package common

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Str("app", "dltgate").Logger()

// SetLogOutput redirects all logging to w without console formatting.
// The daemon uses this to write through its rotating file writer.
func SetLogOutput(w io.Writer) {
	logger = zerolog.New(w).With().Timestamp().Str("app", "dltgate").Logger()
}

// Logger returns the shared logger for callers that need structured
// fields.
func Logger() *zerolog.Logger {
	return &logger
}

func Logf(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatal().Msgf(format, args...)
}

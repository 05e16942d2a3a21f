package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development environments get pretty
// console output, everything else gets JSON lines.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	w := out
	if env == "development" || env == "dev" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).With().
		Timestamp().
		Str("service", "eco-marketplace").
		Logger()
}

// WithBuyer returns a child logger tagged with the buyer id.
func WithBuyer(l zerolog.Logger, buyerID string) zerolog.Logger {
	return l.With().Str("buyer_id", buyerID).Logger()
}

// Package logger provides a thin wrapper around zerolog.Logger with the
// constructors and context helpers used throughout the apiserver.
package logger

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger. Embedding exposes the full zerolog API
// while leaving room for application helpers.
type Logger struct {
	zerolog.Logger
}

// New constructs a JSON logger writing to stdout, tagged with the given
// role label ("server", "migrate", ...).
func New(role string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext attaches the logger to ctx so downstream code can recover
// it with FromContext.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or zerolog's global
// logger when none was attached. Never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest returns the logger stored in the request's context.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

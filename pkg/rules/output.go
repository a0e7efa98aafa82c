package rules

import (
	"context"

	"github.com/rs/zerolog"
)

func log(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithLogger attaches the given logger to the context. Engine functions log
// through it; without one they stay silent.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

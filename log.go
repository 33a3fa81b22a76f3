package viewpath

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// LoggingContext returns a copy of ctx carrying logger. Resolution and
// rendering log through whatever logger is on the context, and stay silent
// when there isn't one.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// requestLogger scopes the context logger to a single lookup.
func requestLogger(ctx context.Context, req Request) *slog.Logger {
	return logger(ctx).With(
		slog.String("controller", req.controllerPath(ctx)),
		slog.String("action", req.Action),
		slog.String("template", req.TemplatePath),
	)
}

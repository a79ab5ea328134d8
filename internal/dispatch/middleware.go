package dispatch

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a handler with cross-cutting behavior. The tool name is
// bound at wrap time so the middleware needs no registry access.
type Middleware func(tool string, next Handler) Handler

// WithLogging returns a middleware that logs start, end, duration, and
// errors for every handler execution.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(tool string, next Handler) Handler {
		return func(ctx context.Context, args map[string]any) (any, error) {
			logger.Info("tool start", "tool", tool)
			start := time.Now()
			res, err := next(ctx, args)
			dur := time.Since(start)
			if err != nil {
				logger.Error("tool error", "tool", tool, "duration", dur, "error", err)
				return nil, err
			}
			logger.Info("tool end", "tool", tool, "duration", dur)
			return res, nil
		}
	}
}

// Use stores the middlewares and reapplies them from scratch to every
// registered handler (onion order: the first middleware is outermost).
// Handlers registered after Use are wrapped on registration. Calling Use
// again replaces the chain and rewraps from the raw handlers, so nothing
// is ever double-wrapped.
func (d *Dispatcher) Use(middlewares ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = middlewares
	for name, reg := range d.regs {
		reg.wrapped = wrap(name, reg.raw, middlewares)
	}
}

func wrap(tool string, h Handler, middlewares []Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](tool, h)
	}
	return h
}

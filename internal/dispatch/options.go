package dispatch

import (
	"context"
	"log/slog"
	"time"
)

type options struct {
	timeout        time.Duration
	maxConcurrency int
	recoverPanics  bool
	logger         *slog.Logger
	onBefore       func(ctx context.Context, tool string, args map[string]any)
	onAfter        func(ctx context.Context, tool string, env Envelope, dur time.Duration)
}

// Option configures a Dispatcher.
type Option func(*options)

// WithDefaultTimeout sets a per-invocation handler timeout. The default
// is zero: no deadline beyond what the caller's context imposes.
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxConcurrency bounds concurrent handler executions with a
// semaphore. Pass 0 or negative to disable the bound (the default);
// upstream contention is then limited by the HTTP connection pools alone.
func WithMaxConcurrency(n int) Option {
	return func(o *options) { o.maxConcurrency = n }
}

// WithRecoverPanics toggles panic recovery in Invoke (enabled by default;
// a recovered panic surfaces as an internal error).
func WithRecoverPanics(enable bool) Option {
	return func(o *options) { o.recoverPanics = enable }
}

// WithLogger sets the logger used for internal-inconsistency diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOnBeforeInvoke sets a hook called before each handler execution,
// after input validation passed.
func WithOnBeforeInvoke(fn func(ctx context.Context, tool string, args map[string]any)) Option {
	return func(o *options) { o.onBefore = fn }
}

// WithOnAfterInvoke sets a hook called after each invocation with the
// final envelope.
func WithOnAfterInvoke(fn func(ctx context.Context, tool string, env Envelope, dur time.Duration)) Option {
	return func(o *options) { o.onAfter = fn }
}

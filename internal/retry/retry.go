// Package retry wraps upstream calls with a bounded retry and exponential
// backoff. Only transient failures are retried; permanent failures and
// context cancellation surface immediately.
package retry

import (
	"context"
	"time"

	"ytmcp/internal/model"
)

// Policy bounds the retry loop. Zero values fall back to the defaults.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the wait before the first retry; it doubles per attempt.
	BaseDelay time.Duration
}

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 250 * time.Millisecond
)

func (p Policy) withDefaults() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	return p
}

// Do runs fn, retrying while it returns a retryable upstream error
// (model.Transient). The last error is returned when retries exhaust.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	p = p.withDefaults()
	delay := p.BaseDelay
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !model.Transient(err) || attempt >= p.MaxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

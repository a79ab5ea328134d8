package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ytmcp/internal/schema"
)

// Handler executes one tool call. It receives arguments that already
// passed input validation (with defaults substituted) and returns a
// JSON-marshalable result or a domain error.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Dispatcher maps tool names to schema-validated handlers. Registrations
// happen at startup; after that the dispatcher is effectively immutable
// and Invoke may be called concurrently.
type Dispatcher struct {
	store *schema.Store
	opts  options
	sem   chan struct{}

	mu          sync.Mutex
	regs        map[string]*registration
	middlewares []Middleware
}

type registration struct {
	tool    schema.Tool
	raw     Handler
	wrapped Handler
}

// New creates a Dispatcher over the given schema store.
func New(store *schema.Store, opts ...Option) *Dispatcher {
	o := options{
		recoverPanics: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Dispatcher{
		store: store,
		opts:  o,
		sem:   sem,
		regs:  make(map[string]*registration),
	}
}

// Register binds a handler to a tool name from the schema store. An
// unknown name or a duplicate registration is a configuration error and
// should be fatal at startup.
func (d *Dispatcher) Register(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("tool %q: nil handler", name)
	}
	tool, ok := d.store.Get(name)
	if !ok {
		return fmt.Errorf("tool %q: no schema in the definition set", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.regs[name]; dup {
		return fmt.Errorf("tool %q: already registered", name)
	}
	d.regs[name] = &registration{
		tool:    tool,
		raw:     h,
		wrapped: wrap(name, h, d.middlewares),
	}
	return nil
}

// Tools returns the registered tool entries in sorted name order.
func (d *Dispatcher) Tools() []schema.Tool {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]schema.Tool, 0, len(d.regs))
	for _, name := range d.store.Names() {
		if reg, ok := d.regs[name]; ok {
			out = append(out, reg.tool)
		}
	}
	return out
}

// Invoke runs one tool call through the full pipeline: lookup, defaults,
// input validation, handler, output validation. It never panics past its
// own boundary and always returns a well-formed envelope.
func (d *Dispatcher) Invoke(ctx context.Context, name string, rawArgs json.RawMessage) (env Envelope) {
	d.mu.Lock()
	reg, ok := d.regs[name]
	d.mu.Unlock()
	if !ok {
		return failure(KindToolNotFound, fmt.Sprintf("unknown tool %q", name), nil)
	}

	args := map[string]any{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return invalidInput([]schema.Violation{{Path: "/", Message: "arguments must be a JSON object"}})
		}
	}
	args = schema.ApplyDefaults(args, reg.tool.Defaults)
	if violations := schema.Validate(reg.tool.Input, any(args)); len(violations) > 0 {
		return invalidInput(violations)
	}

	if err := d.acquire(ctx); err != nil {
		return failure(KindUpstreamTransient, "invocation cancelled before execution", nil)
	}
	defer d.release()

	if d.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.timeout)
		defer cancel()
	}

	start := time.Now()
	if d.opts.onAfter != nil {
		defer func() {
			d.opts.onAfter(ctx, name, env, time.Since(start))
		}()
	}
	if d.opts.onBefore != nil {
		d.opts.onBefore(ctx, name, args)
	}

	result, err := d.run(ctx, reg, args)
	if err != nil {
		if pe, isPanic := err.(*panicError); isPanic {
			d.opts.logger.Error("tool handler panicked", "tool", name, "error", pe)
			return Envelope{Err: &Error{Kind: KindInternal, Message: "internal error during tool execution"}}
		}
		return Envelope{Err: translate(err)}
	}

	out, err := json.Marshal(result)
	if err != nil {
		d.opts.logger.Error("tool result not marshalable", "tool", name, "error", err)
		return failure(KindInternal, "tool produced an invalid result", nil)
	}
	var decoded any
	if err := json.Unmarshal(out, &decoded); err != nil {
		d.opts.logger.Error("tool result not decodable", "tool", name, "error", err)
		return failure(KindInternal, "tool produced an invalid result", nil)
	}
	if violations := schema.Validate(reg.tool.Output, decoded); len(violations) > 0 {
		// A defect in the handler, logged with detail; the caller only
		// learns that the tool misbehaved.
		d.opts.logger.Error("tool result violates output schema",
			"tool", name, "violations", violations)
		return failure(KindInternal, "tool produced an invalid result", nil)
	}
	return Envelope{Result: out}
}

// run executes the wrapped handler, converting a panic into an error when
// recovery is enabled.
func (d *Dispatcher) run(ctx context.Context, reg *registration, args map[string]any) (result any, err error) {
	if d.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				result = nil
				err = &panicError{p: p}
			}
		}()
	}
	return reg.wrapped(ctx, args)
}

func (d *Dispatcher) acquire(ctx context.Context) error {
	if d.sem == nil {
		return nil
	}
	select {
	case d.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) release() {
	if d.sem != nil {
		<-d.sem
	}
}

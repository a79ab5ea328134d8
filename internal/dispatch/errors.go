package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ytmcp/internal/model"
	"ytmcp/internal/schema"
)

// ErrorKind classifies every failure an invocation can surface.
type ErrorKind string

const (
	// KindInvalidInput marks caller arguments that failed schema
	// validation; Details carries the full violation set.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindToolNotFound marks a dispatch to an unregistered tool name.
	KindToolNotFound ErrorKind = "tool_not_found"
	// KindUpstreamPermanent marks non-retryable upstream failures:
	// bad credential, quota exhausted, resource not found.
	KindUpstreamPermanent ErrorKind = "upstream_permanent"
	// KindUpstreamTransient marks connectivity failures that survived the
	// adapters' internal retries.
	KindUpstreamTransient ErrorKind = "upstream_transient"
	// KindInternal marks a defect: a handler produced output violating
	// its declared schema, panicked, or failed in an unclassified way.
	KindInternal ErrorKind = "internal_inconsistency"
	// KindTranscriptUnavailable marks the expected no-transcript outcome,
	// kept distinct from generic upstream failures.
	KindTranscriptUnavailable ErrorKind = "transcript_unavailable"
)

// Error is the failure half of an invocation envelope. Message is always
// safe to show the caller; internal causes and stacks never appear here.
type Error struct {
	Kind    ErrorKind `json:"errorKind"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Envelope is the normalized result of one invocation: exactly one of
// Result and Err is set.
type Envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Err    *Error          `json:"error,omitempty"`
}

// OK reports whether the invocation succeeded.
func (e Envelope) OK() bool { return e.Err == nil }

func failure(kind ErrorKind, message string, details any) Envelope {
	return Envelope{Err: &Error{Kind: kind, Message: message, Details: details}}
}

func invalidInput(violations []schema.Violation) Envelope {
	return failure(KindInvalidInput, "arguments do not match the tool's input schema", violations)
}

// translate maps a handler's domain error onto the envelope taxonomy.
func translate(err error) *Error {
	if errors.Is(err, model.ErrTranscriptUnavailable) {
		return &Error{Kind: KindTranscriptUnavailable, Message: model.ErrTranscriptUnavailable.Error()}
	}
	var ue *model.UpstreamError
	if errors.As(err, &ue) {
		kind := KindUpstreamPermanent
		if ue.Retryable {
			kind = KindUpstreamTransient
		}
		return &Error{Kind: kind, Message: ue.Message, Details: map[string]string{"code": ue.Code}}
	}
	// Cancellation and deadline expiry get the same kind whether they hit
	// before or during execution.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindUpstreamTransient, Message: "invocation cancelled during execution"}
	}
	return &Error{Kind: KindInternal, Message: "internal error during tool execution"}
}

// panicError wraps a recovered panic value so it can travel the error path.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}

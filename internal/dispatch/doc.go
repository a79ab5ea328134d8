// Package dispatch routes named tool invocations to registered handlers
// with schema validation on both sides of the call.
//
// # Overview
//
// Callers produce tool calls as raw JSON. This package turns that JSON
// into handler calls: look up the tool's schemas → apply declared defaults
// → validate arguments (every violation reported, with its path) → run the
// handler → validate the handler's result against the output schema →
// return a normalized envelope. A handler result that violates its own
// declared schema is a programming defect and is surfaced as an internal
// error, never as a caller error and never as a success.
//
// # Key concepts
//
//   - Schemas are data: the registry binds handlers to entries of an
//     immutable schema.Store loaded once at startup; nothing is derived
//     from Go types at call time.
//   - Invocations are independent: the dispatcher holds no mutable state
//     after startup, so concurrent Invoke calls need no coordination
//     beyond the optional concurrency semaphore.
//   - Errors carry a kind, not a stack: handler failures are translated
//     into a small taxonomy (invalid input, tool not found, upstream
//     transient/permanent, transcript unavailable, internal) and nothing
//     else crosses the boundary.
package dispatch

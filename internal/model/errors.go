package model

import "errors"

// ErrTranscriptUnavailable means the video exists but offers no transcript
// at all (captions disabled, or no track survived selection). It is an
// expected outcome, reported with its own error kind rather than as a
// generic upstream failure.
var ErrTranscriptUnavailable = errors.New("no transcript available for this video")

// UpstreamError is a classified failure from one of the two upstream
// services. Retryable marks transient connectivity-style failures that a
// bounded retry may recover from; everything else (bad credential, quota,
// not found) must surface immediately.
type UpstreamError struct {
	Code       string // short machine-readable cause, e.g. "QUOTA_EXCEEDED"
	Message    string // human-readable cause, safe to show the caller
	Retryable  bool
	StatusCode int
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Transient reports whether err is (or wraps) a retryable UpstreamError.
func Transient(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Retryable
}

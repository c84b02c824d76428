// Package errs defines the domain error kinds shared across gitscout.
// HTTP status mapping happens only at the server boundary.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common conditions.
var (
	// ErrValidation is returned for malformed persisted files or request bodies.
	ErrValidation = errors.New("validation failed")

	// ErrRevisionNotFound is returned when a named revision cannot be resolved.
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrVcs is returned for transport/IO failures against the version control system.
	ErrVcs = errors.New("vcs failure")

	// ErrEmbed is returned when embedding generation fails.
	ErrEmbed = errors.New("embedding failed")

	// ErrParse is returned when LLM output cannot be parsed.
	ErrParse = errors.New("parse failed")

	// ErrInternal is returned for unexpected failures.
	ErrInternal = errors.New("internal failure")
)

// LockedError reports that a project's lock is held by another run.
type LockedError struct {
	Elapsed time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("project locked for %s", e.Elapsed.Round(time.Second))
}

// IsLocked reports whether err is (or wraps) a LockedError.
func IsLocked(err error) bool {
	var le *LockedError
	return errors.As(err, &le)
}

// ChatErrorKind classifies chat backend failures.
type ChatErrorKind string

const (
	ChatTransport       ChatErrorKind = "transport"
	ChatRateLimit       ChatErrorKind = "rate_limit"
	ChatInvalidResponse ChatErrorKind = "invalid_response"
	ChatCanceled        ChatErrorKind = "canceled"
)

// ChatError reports a chat backend failure with its kind.
type ChatError struct {
	Kind ChatErrorKind
	Err  error
}

func (e *ChatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("chat failure (%s)", e.Kind)
	}
	return fmt.Sprintf("chat failure (%s): %v", e.Kind, e.Err)
}

func (e *ChatError) Unwrap() error { return e.Err }

// Retryable reports whether the chat failure is safe to retry.
func (e *ChatError) Retryable() bool {
	return e.Kind == ChatTransport || e.Kind == ChatRateLimit
}

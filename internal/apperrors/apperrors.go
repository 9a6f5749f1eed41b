package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrInvalidMetric  = errors.New("unknown chart metric")

	ErrNegativeScore      = errors.New("score total must be non-negative")
	ErrMalformedSession   = errors.New("session payload is malformed")
	ErrUnknownSessionKind = errors.New("unknown session kind")
	ErrScopeLocked        = errors.New("backfill already running for this scope")
)

// SkippedSessionError marks a session that was excluded from a backfill run.
// It classifies as ErrMalformedSession so callers can count skips without
// inspecting the reason string.
type SkippedSessionError struct {
	SessionID string
	Reason    string
}

func (e *SkippedSessionError) Error() string {
	return fmt.Sprintf("session '%s' skipped: %s", e.SessionID, e.Reason)
}
func (e *SkippedSessionError) Is(target error) bool { return target == ErrMalformedSession }

// ScopeLockedError reports a backfill scope (one player or one group) whose
// derived documents are being rewritten by a concurrent run.
type ScopeLockedError struct{ Scope string }

func (e *ScopeLockedError) Error() string {
	return fmt.Sprintf("scope '%s' is locked by another backfill run", e.Scope)
}
func (e *ScopeLockedError) Is(target error) bool { return target == ErrScopeLocked }

package entities

import (
	"errors"
	"fmt"
)

// ErrorKind groups domain errors by how callers should react to them
type ErrorKind string

const (
	ErrorKindValidation          ErrorKind = "validation"
	ErrorKindStateConflict       ErrorKind = "state_conflict"
	ErrorKindInsufficientBalance ErrorKind = "insufficient_balance"
	ErrorKindTransient           ErrorKind = "transient"
	ErrorKindNotFound            ErrorKind = "not_found"
	ErrorKindInternal            ErrorKind = "internal"
)

// Validation errors are raised before any state is touched
var (
	ErrInvalidBet    = errors.New("invalid bet amount")
	ErrInvalidChoice = errors.New("invalid roulette choice")
)

// State conflict errors. Acting without a session is a special case of acting
// in the wrong state, so ErrNoActiveSession also matches ErrInvalidSessionState.
var (
	ErrInvalidSessionState  = errors.New("action not allowed in current session state")
	ErrNoActiveSession      = fmt.Errorf("no active blackjack session: %w", ErrInvalidSessionState)
	ErrSessionAlreadyActive = errors.New("blackjack session already active")
	ErrUserAlreadyExists    = errors.New("user already exists")
)

var ErrInsufficientBalance = errors.New("insufficient balance")

var ErrUserNotFound = errors.New("user not found")

// Persistence errors. ErrVersionConflict is returned by stores when a conditional
// save loses a race; the ledger retries it and only surfaces
// ErrConcurrentModification once retries are exhausted.
var (
	ErrVersionConflict        = errors.New("version conflict")
	ErrConcurrentModification = errors.New("concurrent modification, retry later")
	ErrPersistenceTimeout     = errors.New("persistence round trip timed out")
)

// KindOf classifies err, following wrapped errors
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidBet), errors.Is(err, ErrInvalidChoice):
		return ErrorKindValidation
	case errors.Is(err, ErrNoActiveSession),
		errors.Is(err, ErrSessionAlreadyActive),
		errors.Is(err, ErrInvalidSessionState),
		errors.Is(err, ErrUserAlreadyExists):
		return ErrorKindStateConflict
	case errors.Is(err, ErrInsufficientBalance):
		return ErrorKindInsufficientBalance
	case errors.Is(err, ErrUserNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrPersistenceTimeout):
		return ErrorKindTransient
	default:
		return ErrorKindInternal
	}
}

// IsRetryable reports whether the caller may safely resubmit the request
func IsRetryable(err error) bool {
	return KindOf(err) == ErrorKindTransient
}

package votemax

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("votemax: not found")
	ErrUnauthorized = errors.New("votemax: unauthorized")
	ErrOutOfRange   = errors.New("votemax: value out of range")
	ErrZeroAmount   = errors.New("votemax: amount must be greater than zero")
	ErrOverflow     = errors.New("votemax: arithmetic overflow")
	ErrInvalidState = errors.New("votemax: invalid state")

	// Ledger errors
	ErrInvalidAccount        = errors.New("votemax: invalid account")
	ErrAccountNotFound       = errors.New("votemax: account not found")
	ErrInsufficientBalance   = errors.New("votemax: insufficient balance")
	ErrInsufficientAllowance = errors.New("votemax: insufficient allowance")
	ErrAccountLocked         = errors.New("votemax: account is locked in a vote")

	// Exchange errors
	ErrInsufficientReserve = errors.New("votemax: insufficient reserve")

	// Governance errors
	ErrRoundNotFound        = errors.New("votemax: round not found")
	ErrAlreadyParticipating = errors.New("votemax: already participating in this round")
	ErrNotEligible          = errors.New("votemax: balance below voting threshold")
	ErrNoSuchOption         = errors.New("votemax: no such option")
	ErrOptionExists         = errors.New("votemax: option already exists")
	ErrVotingNotEnded       = errors.New("votemax: voting has not ended")

	// Store errors
	ErrStoreNotReady     = errors.New("votemax: store not ready")
	ErrStoreClosed       = errors.New("votemax: store is closed")
	ErrTransactionFailed = errors.New("votemax: transaction failed")
	ErrMigrationFailed   = errors.New("votemax: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("votemax: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrRoundNotFound)
}

// IsValidation returns true if the request itself was malformed.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrZeroAmount) ||
		errors.Is(err, ErrInvalidAccount) ||
		errors.Is(err, ErrOverflow)
}

// IsConflict returns true if the request was well formed but the current
// ledger or round state does not allow it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrInsufficientReserve) ||
		errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrAlreadyParticipating) ||
		errors.Is(err, ErrNotEligible) ||
		errors.Is(err, ErrOptionExists) ||
		errors.Is(err, ErrVotingNotEnded) ||
		errors.Is(err, ErrInvalidState)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed) ||
		errors.Is(err, ErrVotingNotEnded)
}

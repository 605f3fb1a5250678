// Package common defines shared constants and sentinel errors used across
// the service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Authorization errors (caller lacks the required role).
	ErrNotOwner    = errors.New("caller is not the owner")
	ErrNotProvider = errors.New("caller is not a provider")

	// Availability errors (system-wide gate).
	ErrPaused = errors.New("system is paused")

	// Rate errors (per-actor throttle).
	ErrCooldownActive = errors.New("cooldown active")

	// Lifecycle errors (operation invalid for current batch/request state).
	ErrInvalidBatch     = errors.New("invalid batch")
	ErrAlreadyProcessed = errors.New("batch already processed")

	// Integrity errors (oracle-verification guards).
	ErrReplayAttempt = errors.New("replay attempt")
	ErrStateMismatch = errors.New("state mismatch")
	ErrInvalidProof  = errors.New("invalid proof")

	// Validation errors (malformed configuration or payload input).
	ErrInvalidParameter = errors.New("invalid parameter")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Infrastructure wraps these with %w so callers can use errors.Is.

var (
	// ErrNotFound — missing account, post, or correction.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds — balance is lower than the unlock price.
	ErrInsufficientFunds = errors.New("insufficient token balance")

	// ErrConflict — the purchase already exists (duplicate unlock).
	ErrConflict = errors.New("already purchased")

	// ErrInvalidState — illegal state machine transition source.
	ErrInvalidState = errors.New("invalid state for transition")

	// ErrAlreadySelected — the post already has a selected correction.
	ErrAlreadySelected = errors.New("post already has a selected correction")

	// ErrForbidden — the actor lacks the required role or ownership.
	ErrForbidden = errors.New("actor not allowed")

	// ErrUnavailable — the store failed; the operation rolled back fully
	// and is safe to retry.
	ErrUnavailable = errors.New("store unavailable")
)

package engine

import "errors"

// Validation failures. They are returned wrapped with context; test with
// errors.Is. None of them is retried by the engine.
var (
	ErrUnknownGroup     = errors.New("unknown group")
	ErrUnknownMember    = errors.New("unknown member")
	ErrInvalidCycle     = errors.New("invalid cycle")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrNotReady         = errors.New("group not ready for payout")
	ErrAlreadyCompleted = errors.New("group already completed")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidGroup     = errors.New("invalid group")
)

package options

import "errors"

// Validation failures are local and non-retryable: a rejected call leaves all
// balances and flags unchanged. The sentinels below form the engine's public
// error taxonomy; callers match with errors.Is.
var (
	ErrNotFound            = errors.New("options: option not found")
	ErrUnauthorized        = errors.New("options: unauthorized caller")
	ErrAlreadyFunded       = errors.New("options: collateral already funded")
	ErrNotFunded           = errors.New("options: collateral not funded")
	ErrAlreadyParticipated = errors.New("options: participant already set")
	ErrNoParticipant       = errors.New("options: no participant")
	ErrDeadlinePassed      = errors.New("options: deadline passed")
	ErrDeadlineNotReached  = errors.New("options: deadline not yet reached")
	ErrAlreadySettled      = errors.New("options: already settled")
	ErrNotExercised        = errors.New("options: option not exercised")
	ErrNotListed           = errors.New("options: option not listed")
	ErrAlreadyListed       = errors.New("options: option already listed")
	ErrInsufficientDeposit = errors.New("options: deposit does not satisfy required amount")
	ErrCreditMismatch      = errors.New("options: withdrawal amount does not match credited balance")
	ErrSelfDealing         = errors.New("options: writer cannot take own offer")
	ErrInvalidInstruction  = errors.New("options: invalid deposit instruction")
	ErrInvalidAsset        = errors.New("options: asset kind not valid for this path")
	ErrInvalidDeadline     = errors.New("options: invalid deadline ordering")
	ErrInvalidAmount       = errors.New("options: amount must be positive")
)

var (
	errNilState = errors.New("options engine: state not configured")
	errNilBank  = errors.New("options engine: custody bank not configured")
)

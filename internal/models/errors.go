package models

import "errors"

// Error taxonomy for the conversation/progress core. Handlers map these to
// plain-text replies; raw errors never reach the learner.
var (
	// ErrNotRegistered - no active course progress for the phone number
	ErrNotRegistered = errors.New("no active course progress for this number")

	// ErrInvalidPhoneNumber - fewer than 10 digits after stripping separators
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// ErrContentGenerationFailed - the course generator call failed
	ErrContentGenerationFailed = errors.New("course content generation failed")

	// ErrContentParseFailed - the generator replied but not with usable JSON
	ErrContentParseFailed = errors.New("course content could not be parsed")

	// ErrAlreadyTerminal - action attempted on a completed/suspended record
	ErrAlreadyTerminal = errors.New("course already completed or suspended")

	// ErrNoIncompleteModule - acknowledgment with nothing left to acknowledge
	ErrNoIncompleteModule = errors.New("all modules for the current day are complete")

	// ErrStoreUnavailable - transient persistence failure, the turn may be retried
	ErrStoreUnavailable = errors.New("storage temporarily unavailable")
)

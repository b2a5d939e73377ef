package generation

import "errors"

// Generation errors returned by Generator implementations. Transport-level
// detail stays wrapped underneath; callers branch on these sentinels.
var (
	// ErrInvalidConfig indicates the generator was constructed with missing
	// or malformed configuration (API key, model name).
	ErrInvalidConfig = errors.New("invalid generation configuration")

	// ErrInvalidRequest indicates the draft request itself is unusable
	// (nil domain, non-positive count).
	ErrInvalidRequest = errors.New("invalid draft request")

	// ErrContentBlocked indicates the provider refused the prompt, for
	// example via safety filters. Not retryable.
	ErrContentBlocked = errors.New("content blocked by provider")

	// ErrInvalidResponse indicates the provider answered but the response
	// could not be parsed into usable cards. Not retryable.
	ErrInvalidResponse = errors.New("invalid generation response")

	// ErrTransientFailure indicates a retryable provider failure that
	// persisted through all retry attempts.
	ErrTransientFailure = errors.New("transient generation failure")
)

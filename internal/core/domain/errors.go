package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrSourceUnavailable indicates the document source could not be
	// reached during a refresh. The manager serves the fallback payload.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrCacheUnavailable indicates the key-value cache could not be
	// reached. Reads report NEEDS_REFRESH; writes log and proceed.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrDecodeCorruption indicates a stored cache entry could not be
	// decoded. Treated the same as ErrCacheUnavailable on the read path.
	ErrDecodeCorruption = errors.New("cached entry corrupt")

	// ErrNoMessage indicates a chat request arrived without a message.
	// The text is user-facing and part of the API contract.
	ErrNoMessage = errors.New("No message provided")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamCompletion indicates every configured completion API
	// failed to produce a response.
	ErrUpstreamCompletion = errors.New("completion API error")

	// ErrLLMUnavailable indicates no completion service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

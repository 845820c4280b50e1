package types

import "errors"

// Validation errors.
var (
	ErrEmptyID                 = errors.New("entity id cannot be empty")
	ErrEmptyName               = errors.New("entity name cannot be empty")
	ErrUnknownCategory         = errors.New("unknown entity category")
	ErrAttestationBookMismatch = errors.New("attestation references a book the entity is not registered under")
)

// Request errors, surfaced as 4xx by the HTTP layer.
var (
	ErrQueryTooShort   = errors.New("query must be at least 2 characters")
	ErrQuestionEmpty   = errors.New("question cannot be empty")
	ErrQuestionTooLong = errors.New("question exceeds 500 characters")
	ErrUnknownBook     = errors.New("unknown book id")
	ErrUnknownEntity   = errors.New("unknown entity id")
)

// Provider errors, surfaced as 5xx by the HTTP layer.
var (
	ErrMissingCredentials  = errors.New("provider credentials not configured")
	ErrProviderUnavailable = errors.New("generative model provider unavailable")
)

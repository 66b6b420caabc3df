package domain

import "errors"

// Sentinel errors shared across the scoring engine, repositories and API.
var (
	// ErrValidation marks a request missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidURL marks a source URL with no extractable hostname.
	ErrInvalidURL = errors.New("invalid source URL")
	// ErrInvalidVote marks a vote other than "up" or "down".
	ErrInvalidVote = errors.New("invalid vote")
	// ErrReputationNotFound is returned by repositories for unknown domains.
	ErrReputationNotFound = errors.New("source reputation not found")
	// ErrPersistence wraps repository failures surfaced to callers.
	ErrPersistence = errors.New("reputation store unavailable")
	// ErrSentimentUnavailable wraps sentiment oracle failures.
	ErrSentimentUnavailable = errors.New("sentiment oracle unavailable")
)

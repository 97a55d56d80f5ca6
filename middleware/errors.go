package middleware

import "errors"

var (
	// ErrRateLimitExceeded indicates rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidQuestion indicates question validation failed
	ErrInvalidQuestion = errors.New("invalid question")
)

package adapter

import "errors"

var (
	// ErrEmptyToken is returned without a network call when the form carried
	// no widget token.
	ErrEmptyToken = errors.New("empty captcha token")

	// ErrRejectedRequest means siteverify refused the call itself, usually a
	// wrong or missing secret key.
	ErrRejectedRequest = errors.New("verification request rejected")

	ErrTooManyRequests  = errors.New("verification rate limit exceeded")
	ErrUnavailable      = errors.New("verification service unavailable")
	ErrDecodingResponse = errors.New("error decoding verification response")
)

package crypto

import "errors"

var (
	// ErrGeneratingSalt is returned when the system random source fails.
	ErrGeneratingSalt = errors.New("error generating salt")

	// ErrMalformedHash is returned when an encoded digest cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
)

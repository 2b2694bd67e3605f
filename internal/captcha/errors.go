package captcha

import "errors"

var (
	// ErrChallengeUnavailable is returned when the active strategy does not
	// issue server-side challenges.
	ErrChallengeUnavailable = errors.New("captcha challenge is not available in this mode")

	// ErrUnknownScope is returned for a scope other than login or register.
	ErrUnknownScope = errors.New("unknown captcha scope")

	// ErrMissingSession is returned when no session id accompanies the
	// request.
	ErrMissingSession = errors.New("missing captcha session")

	// ErrGeneratingChallenge is returned when the random source fails.
	ErrGeneratingChallenge = errors.New("error generating captcha challenge")
)

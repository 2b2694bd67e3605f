package captcha

import (
	"context"

	"github.com/MKhiriev/go-login-portal/internal/adapter"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/models"
)

type turnstileVerifier struct {
	siteKey string
	adapter adapter.CaptchaAdapter
	logger  *logger.Logger
}

// NewTurnstileVerifier returns the external token strategy.
func NewTurnstileVerifier(siteKey string, captchaAdapter adapter.CaptchaAdapter, logger *logger.Logger) Verifier {
	return &turnstileVerifier{siteKey: siteKey, adapter: captchaAdapter, logger: logger}
}

func (t *turnstileVerifier) Mode() Mode { return ModeTurnstile }

func (t *turnstileVerifier) SiteKey() string { return t.siteKey }

func (t *turnstileVerifier) Issue(context.Context, string, string) (string, error) {
	return "", ErrChallengeUnavailable
}

func (t *turnstileVerifier) Current(context.Context, string, string) (string, error) {
	return "", nil
}

// Verify fails closed: any adapter error counts as a failed check.
func (t *turnstileVerifier) Verify(ctx context.Context, proof models.CaptchaProof) bool {
	if proof.Token == "" {
		return false
	}

	ok, err := t.adapter.VerifyToken(ctx, proof.Token, proof.RemoteIP)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "*turnstileVerifier.Verify").
			Str("scope", proof.Scope).
			Msg("captcha verification unavailable")
		return false
	}
	return ok
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package captcha gates the login and registration forms behind a human
// verification step.
//
// Two strategies implement [Verifier]: a built-in arithmetic challenge kept
// server-side per session and scope, and an external token verifier
// (Cloudflare Turnstile). [NewVerifier] picks one from configuration.
package captcha

import (
	"context"

	"github.com/MKhiriev/go-login-portal/internal/adapter"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/models"
)

//go:generate mockgen -source=verifier.go -destination=../mock/captcha_verifier_mock.go -package=mock

// Mode names the active strategy.
type Mode string

const (
	ModeMath      Mode = "math"
	ModeTurnstile Mode = "turnstile"
)

// Challenge scopes. Each form keeps its own pending challenge.
const (
	ScopeLogin    = "login"
	ScopeRegister = "register"
)

// ValidScope reports whether scope names a known form.
func ValidScope(scope string) bool {
	return scope == ScopeLogin || scope == ScopeRegister
}

// Verifier is the human-verification capability used by the auth flow.
type Verifier interface {
	// Mode reports the strategy in use.
	Mode() Mode

	// SiteKey is the public key the page embeds for the external widget.
	// Empty for the math strategy.
	SiteKey() string

	// Issue replaces any pending challenge for (sessionID, scope) with a
	// fresh one and returns its question.
	// The external strategy returns ErrChallengeUnavailable.
	Issue(ctx context.Context, sessionID, scope string) (string, error)

	// Current returns the pending question for (sessionID, scope), issuing
	// one when none is pending. The external strategy returns an empty
	// question and no error.
	Current(ctx context.Context, sessionID, scope string) (string, error)

	// Verify checks the submitted proof. Any pending math challenge is
	// consumed whatever the outcome.
	Verify(ctx context.Context, proof models.CaptchaProof) bool
}

// NewVerifier selects the external strategy when cfg enables it with both
// keys present, and the math strategy otherwise.
func NewVerifier(cfg config.Captcha, store *ChallengeStore, captchaAdapter adapter.CaptchaAdapter, logger *logger.Logger) Verifier {
	if cfg.TurnstileActive() && captchaAdapter != nil {
		return NewTurnstileVerifier(cfg.TurnstileSiteKey, captchaAdapter, logger)
	}
	return NewMathVerifier(store, logger)
}

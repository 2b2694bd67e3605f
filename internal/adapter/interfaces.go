// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides clients for the external services the portal
// calls out to.
//
// The only one today is the human-verification service: [CaptchaAdapter]
// with a Cloudflare Turnstile compatible implementation
// ([NewTurnstileAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is].
package adapter

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/captcha_adapter_mock.go -package=mock

// CaptchaAdapter verifies a client-side CAPTCHA token with the issuing
// service.
type CaptchaAdapter interface {
	// VerifyToken submits token (and the caller address, if known) to the
	// verification endpoint and reports the service's verdict.
	//
	// A non-nil error means no verdict could be obtained: transport failure,
	// timeout, non-2xx status or an undecodable body. Callers must treat it
	// as a failed verification.
	VerifyToken(ctx context.Context, token, remoteIP string) (bool, error)
}

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/utils"
)

type turnstileAdapter struct {
	client    *utils.HTTPClient
	verifyURL string
	secret    string

	logger *logger.Logger
}

// verifyResponse is the siteverify reply body.
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// NewTurnstileAdapter constructs a [CaptchaAdapter] that posts tokens to
// cfg.TurnstileVerifyURL. Every call is bounded by cfg.Timeout.
//
// Returns an error if the verify URL is not an absolute http(s) URL.
func NewTurnstileAdapter(cfg config.Captcha, logger *logger.Logger) (CaptchaAdapter, error) {
	verifyURL, err := normalizeVerifyURL(cfg.TurnstileVerifyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid turnstile verify url: %w", err)
	}

	return &turnstileAdapter{
		client:    utils.NewHTTPClient(cfg.Timeout),
		verifyURL: verifyURL,
		secret:    cfg.TurnstileSecretKey,
		logger:    logger,
	}, nil
}

func normalizeVerifyURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("address must include host and http(s) scheme")
	}

	return u.String(), nil
}

// VerifyToken implements [CaptchaAdapter]. It POSTs the form fields secret,
// response and (when known) remoteip.
func (t *turnstileAdapter) VerifyToken(ctx context.Context, token, remoteIP string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, ErrEmptyToken
	}

	form := map[string]string{
		"secret":   t.secret,
		"response": token,
	}
	if remoteIP = strings.TrimSpace(remoteIP); remoteIP != "" {
		form["remoteip"] = remoteIP
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(t.verifyURL)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return false, err
	}

	var result verifyResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return false, fmt.Errorf("%w: %w", ErrDecodingResponse, err)
	}

	if !result.Success {
		t.logger.Debug().
			Strs("error_codes", result.ErrorCodes).
			Str("func", "*turnstileAdapter.VerifyToken").
			Msg("captcha token rejected")
	}

	return result.Success, nil
}

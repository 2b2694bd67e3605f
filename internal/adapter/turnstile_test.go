// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAdapter creates a turnstileAdapter pointed at the test server.
func newTestAdapter(t *testing.T, serverURL string, timeout time.Duration) CaptchaAdapter {
	t.Helper()
	cfg := config.Captcha{
		TurnstileSecretKey: "test-secret",
		TurnstileVerifyURL: serverURL + "/turnstile/v0/siteverify",
		Timeout:            timeout,
	}

	a, err := NewTurnstileAdapter(cfg, logger.Nop())
	require.NoError(t, err)
	return a
}

// ── NewTurnstileAdapter ─────────────────────────────────────────────────────

func TestNewTurnstileAdapter_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "challenges.cloudflare.com/siteverify", "ftp://example.com/verify", "https://"} {
		_, err := NewTurnstileAdapter(config.Captcha{TurnstileVerifyURL: raw}, logger.Nop())
		assert.Error(t, err, raw)
	}
}

// ── VerifyToken ─────────────────────────────────────────────────────────────

func TestVerifyToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/turnstile/v0/siteverify", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-secret", r.PostForm.Get("secret"))
		assert.Equal(t, "client-token", r.PostForm.Get("response"))
		assert.Equal(t, "203.0.113.7", r.PostForm.Get("remoteip"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"hostname":"portal.example"}`))
	}))
	defer srv.Close()

	ok, err := newTestAdapter(t, srv.URL, time.Second).VerifyToken(context.Background(), " client-token ", "203.0.113.7")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyToken_OmitsEmptyRemoteIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_, present := r.PostForm["remoteip"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	ok, err := newTestAdapter(t, srv.URL, time.Second).VerifyToken(context.Background(), "client-token", "")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	ok, err := newTestAdapter(t, srv.URL, time.Second).VerifyToken(context.Background(), "client-token", "")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyToken_EmptyTokenMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	ok, err := newTestAdapter(t, srv.URL, time.Second).VerifyToken(context.Background(), "  ", "")

	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestVerifyToken_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"bad request", http.StatusBadRequest, ErrRejectedRequest},
		{"unauthorized", http.StatusUnauthorized, ErrRejectedRequest},
		{"forbidden", http.StatusForbidden, ErrRejectedRequest},
		{"too many requests", http.StatusTooManyRequests, ErrTooManyRequests},
		{"internal", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
		{"unavailable", http.StatusServiceUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"success":true}`))
			}))
			defer srv.Close()

			ok, err := newTestAdapter(t, srv.URL, time.Second).VerifyToken(context.Background(), "client-token", "")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, ok)
		})
	}
}

func TestVerifyToken_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	ok, err := newTestAdapter(t, srv.URL, time.Second).VerifyToken(context.Background(), "client-token", "")

	assert.ErrorIs(t, err, ErrDecodingResponse)
	assert.False(t, ok)
}

func TestVerifyToken_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	ok, err := newTestAdapter(t, srv.URL, 20*time.Millisecond).VerifyToken(context.Background(), "client-token", "")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, ok)
}

func TestVerifyToken_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	ok, err := newTestAdapter(t, url, time.Second).VerifyToken(context.Background(), "client-token", "")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, ok)
}

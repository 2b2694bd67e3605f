// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

func registerValues() url.Values {
	return url.Values{
		"username":       {"alice"},
		"email":          {"alice@example.com"},
		"password":       {"Str0ng!Passw0rd"},
		"role":           {"user"},
		"captcha_answer": {"10"},
	}
}

// ─────────────────────────────────────────────
// register
// ─────────────────────────────────────────────

func TestRegisterPage_IssuesCaptcha(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/register", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	page := decodePage(t, rec)
	assert.Equal(t, "register", page.Page)
	require.NotNil(t, page.Captcha)
	assert.Equal(t, captcha.ModeMath, page.Captcha.Mode)
	assert.Equal(t, "What is 7 + 3?", page.Captcha.Question)
	assert.Equal(t, 1, f.verifier.issued)
	assert.NotNil(t, responseCookie(rec, sessionCookieName), "session cookie must be issued")
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	var (
		gotRequest models.RegisterRequest
		gotProof   models.CaptchaProof
	)
	f.auth.registerFn = func(_ context.Context, request models.RegisterRequest, proof models.CaptchaProof) (models.User, error) {
		gotRequest, gotProof = request, proof
		return models.User{UserID: 1, Username: request.Username}, nil
	}

	rec := f.do(formRequest(http.MethodPost, "/register", registerValues()))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []models.Notice{{Category: noticeSuccess, Message: "Account created successfully. You can now log in."}}, flashNotices(t, rec))

	assert.Equal(t, "alice", gotRequest.Username)
	assert.Equal(t, "Str0ng!Passw0rd", gotRequest.Password)
	assert.Equal(t, captcha.ScopeRegister, gotProof.Scope)
	assert.Equal(t, "10", gotProof.Answer)
	assert.NotEmpty(t, gotProof.SessionID)
	assert.Nil(t, responseCookie(rec, testCookieName), "registration must not sign the user in")
}

func TestRegister_DefaultsRoleToUser(t *testing.T) {
	f := newFixture(t)

	var gotRole string
	f.auth.registerFn = func(_ context.Context, request models.RegisterRequest, _ models.CaptchaProof) (models.User, error) {
		gotRole = request.Role
		return models.User{}, nil
	}

	values := registerValues()
	values.Del("role")
	f.do(formRequest(http.MethodPost, "/register", values))

	assert.Equal(t, "user", gotRole)
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantField   string
		wantMessage string
		wantNotice  string
	}{
		{
			name:        "validation",
			err:         fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, validators.ValidationErrors{"email": "Invalid email address."}),
			wantStatus:  http.StatusBadRequest,
			wantField:   "email",
			wantMessage: "Invalid email address.",
		},
		{
			name:       "captcha failed",
			err:        service.ErrCaptchaFailed,
			wantStatus: http.StatusBadRequest,
			wantNotice: "CAPTCHA verification failed. Please try again.",
		},
		{
			name:        "email already registered",
			err:         fmt.Errorf("%w: %w", service.ErrEmailTaken, validators.ValidationErrors{"email": service.MsgEmailRegistered}),
			wantStatus:  http.StatusBadRequest,
			wantField:   "email",
			wantMessage: "This email is already registered.",
		},
		{
			name:        "username in use",
			err:         fmt.Errorf("%w: %w", service.ErrUsernameTaken, validators.ValidationErrors{"username": service.MsgUsernameInUse}),
			wantStatus:  http.StatusBadRequest,
			wantField:   "username",
			wantMessage: "This username is already in use.",
		},
		{
			name:        "admin self-registration disabled",
			err:         fmt.Errorf("%w: %w", service.ErrAdminSelfRegistrationDisabled, validators.ValidationErrors{"role": service.MsgAdminSignupDisabled}),
			wantStatus:  http.StatusForbidden,
			wantField:   "role",
			wantMessage: service.MsgAdminSignupDisabled,
		},
		{
			name:       "unique violation at commit",
			err:        fmt.Errorf("error creating user: %w", store.ErrConflict),
			wantStatus: http.StatusConflict,
			wantNotice: "Registration failed due to conflicting user data.",
		},
		{
			name:       "unexpected",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantNotice: msgUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.registerFn = func(_ context.Context, _ models.RegisterRequest, _ models.CaptchaProof) (models.User, error) {
				return models.User{}, tt.err
			}

			rec := f.do(formRequest(http.MethodPost, "/register", registerValues()))

			require.Equal(t, tt.wantStatus, rec.Code)
			page := decodePage(t, rec)
			assert.Equal(t, "register", page.Page)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantMessage, page.Errors[tt.wantField])
			}
			if tt.wantNotice != "" {
				require.NotEmpty(t, page.Notices)
				assert.Equal(t, tt.wantNotice, page.Notices[0].Message)
			}

			// the form is echoed without the password
			assert.Equal(t, "alice", page.Form.(map[string]any)["username"])
			assert.NotContains(t, rec.Body.String(), "Str0ng!Passw0rd")

			// a fresh question follows every failed submission
			assert.Equal(t, 1, f.verifier.issued)
		})
	}
}

// ─────────────────────────────────────────────
// login
// ─────────────────────────────────────────────

func TestLogin_SuccessSetsCookie(t *testing.T) {
	f := newFixture(t)

	var gotProof models.CaptchaProof
	f.auth.loginFn = func(_ context.Context, request models.LoginRequest, proof models.CaptchaProof) (models.User, models.Token, error) {
		gotProof = proof
		return models.User{UserID: 3}, models.Token{SignedString: "signed.jwt.token"}, nil
	}

	rec := f.do(formRequest(http.MethodPost, "/login", url.Values{
		"email":          {"bob@example.com"},
		"password":       {"secret"},
		"captcha_answer": {"10"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
	assert.Equal(t, "Login successful.", flashNotices(t, rec)[0].Message)
	assert.Equal(t, captcha.ScopeLogin, gotProof.Scope)

	cookie := responseCookie(rec, testCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed.jwt.token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7200, cookie.MaxAge)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantNotice string
	}{
		{"captcha failed", service.ErrCaptchaFailed, http.StatusBadRequest, "CAPTCHA verification failed. Please try again."},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials or account locked."},
		{"locked", service.ErrAccountLocked, http.StatusLocked, "Invalid credentials or account locked."},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, msgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.loginFn = func(_ context.Context, _ models.LoginRequest, _ models.CaptchaProof) (models.User, models.Token, error) {
				return models.User{}, models.Token{}, tt.err
			}

			rec := f.do(formRequest(http.MethodPost, "/login", url.Values{"email": {"bob@example.com"}, "password": {"x"}}))

			require.Equal(t, tt.wantStatus, rec.Code)
			page := decodePage(t, rec)
			assert.Equal(t, "login", page.Page)
			require.NotEmpty(t, page.Notices)
			assert.Equal(t, tt.wantNotice, page.Notices[0].Message)
			assert.Nil(t, responseCookie(rec, testCookieName))
			assert.Equal(t, 1, f.verifier.issued)
		})
	}
}

func TestLogin_TurnstileTokenForwarded(t *testing.T) {
	f := newFixture(t)
	f.verifier.mode = captcha.ModeTurnstile

	var gotProof models.CaptchaProof
	f.auth.loginFn = func(_ context.Context, _ models.LoginRequest, proof models.CaptchaProof) (models.User, models.Token, error) {
		gotProof = proof
		return models.User{}, models.Token{}, service.ErrCaptchaFailed
	}

	req := formRequest(http.MethodPost, "/login", url.Values{"cf-turnstile-response": {"tok"}})
	req.RemoteAddr = "203.0.113.9:5555"
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tok", gotProof.Token)
	assert.Equal(t, "203.0.113.9", gotProof.RemoteIP)

	page := decodePage(t, rec)
	require.NotNil(t, page.Captcha)
	assert.Equal(t, captcha.ModeTurnstile, page.Captcha.Mode)
	assert.Equal(t, "site-key", page.Captcha.SiteKey)
	assert.Empty(t, page.Captcha.Question)
}

// ─────────────────────────────────────────────
// logout
// ─────────────────────────────────────────────

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)
	cookie := f.signIn(regularUser())

	var loggedOut models.User
	f.auth.logoutFn = func(_ context.Context, user models.User) error {
		loggedOut = user
		return nil
	}

	rec := f.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, int64(3), loggedOut.UserID)
	assert.Equal(t, []models.Notice{{Category: noticeInfo, Message: "You have been logged out."}}, flashNotices(t, rec))

	cleared := responseCookie(rec, testCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestLogout_AuditFailure(t *testing.T) {
	f := newFixture(t)
	cookie := f.signIn(regularUser())
	f.auth.logoutFn = func(_ context.Context, _ models.User) error { return errors.New("audit down") }

	rec := f.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ─────────────────────────────────────────────
// captcha refresh
// ─────────────────────────────────────────────

func TestRefreshCaptcha(t *testing.T) {
	tests := []struct {
		name       string
		mode       captcha.Mode
		scope      string
		wantStatus int
		wantBody   string
	}{
		{"login scope", captcha.ModeMath, "login", http.StatusOK, `{"question":"What is 7 + 3?"}`},
		{"register scope", captcha.ModeMath, "register", http.StatusOK, `{"question":"What is 7 + 3?"}`},
		{"unknown scope", captcha.ModeMath, "profile", http.StatusNotFound, ""},
		{"turnstile active", captcha.ModeTurnstile, "login", http.StatusBadRequest, `{"error":"Math captcha is disabled when Turnstile is enabled."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.verifier.mode = tt.mode

			rec := f.do(httptest.NewRequest(http.MethodGet, "/captcha/"+tt.scope+"/refresh", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

// pageView is the JSON document returned for every page.
type pageView struct {
	Page    string                      `json:"page"`
	User    *userView                   `json:"user,omitempty"`
	Notices []models.Notice             `json:"notices,omitempty"`
	Captcha *captchaView                `json:"captcha,omitempty"`
	Errors  validators.ValidationErrors `json:"errors,omitempty"`
	Form    any                         `json:"form,omitempty"`
	Data    any                         `json:"data,omitempty"`
}

// userView is the public shape of an account. The password hash and the
// failure window never leave the server.
type userView struct {
	ID             int64       `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FullName       string      `json:"full_name,omitempty"`
	Bio            string      `json:"bio,omitempty"`
	Role           models.Role `json:"role"`
	IsActive       bool        `json:"is_active"`
	IsLocked       bool        `json:"is_locked"`
	FailedAttempts int         `json:"failed_attempts"`
	DisplayName    string      `json:"display_name"`
	Initials       string      `json:"initials"`
	AvatarURL      string      `json:"avatar_url"`
	LockedUntil    *time.Time  `json:"locked_until,omitempty"`
	LastLoginAt    *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

type captchaView struct {
	Mode     captcha.Mode `json:"mode"`
	Question string       `json:"question,omitempty"`
	SiteKey  string       `json:"site_key,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) newUserView(ctx context.Context, user models.User) userView {
	view := userView{
		ID:             user.UserID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		IsActive:       user.IsActive,
		IsLocked:       user.IsLockedAt(time.Now().UTC()),
		FailedAttempts: user.FailedAttempts,
		DisplayName:    user.DisplayName(),
		Initials:       user.Initials(),
		AvatarURL:      h.services.ProfileService.AvatarURL(ctx, user),
		LockedUntil:    user.LockedUntil,
		LastLoginAt:    user.LastLoginAt,
		CreatedAt:      user.CreatedAt,
	}
	if user.FullName != nil {
		view.FullName = *user.FullName
	}
	if user.Bio != nil {
		view.Bio = *user.Bio
	}
	return view
}

func (h *Handler) newUserViews(ctx context.Context, users []models.User) []userView {
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, h.newUserView(ctx, user))
	}
	return views
}

// render writes page with the caller and any pending notices filled in.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page pageView) {
	ctx := r.Context()

	if user, ok := utils.IdentityFromContext(ctx); ok {
		view := h.newUserView(ctx, user)
		page.User = &view
	}
	page.Notices = append(h.consumeFlash(w, r), page.Notices...)

	if _, err := utils.WriteJSON(w, page, status); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.render").Str("page", page.Page).Msg("error writing page")
	}
}

// redirect queues notices and sends the caller to location with 302.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, location string, notices ...models.Notice) {
	h.flash(w, r, notices...)
	http.Redirect(w, r, location, http.StatusFound)
}

// captchaFor returns the challenge to show on the scope's form. With fresh
// set a new math question replaces the pending one.
func (h *Handler) captchaFor(r *http.Request, scope string, fresh bool) *captchaView {
	ctx := r.Context()
	view := &captchaView{Mode: h.verifier.Mode(), SiteKey: h.verifier.SiteKey()}

	sessionID, ok := utils.SessionIDFromContext(ctx)
	if !ok {
		return view
	}

	var (
		question string
		err      error
	)
	if fresh {
		question, err = h.verifier.Issue(ctx, sessionID, scope)
	} else {
		question, err = h.verifier.Current(ctx, sessionID, scope)
	}
	if err != nil && !errors.Is(err, captcha.ErrChallengeUnavailable) {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.captchaFor").Str("scope", scope).Msg("error issuing captcha challenge")
	}

	view.Question = question
	return view
}

func writeError(w http.ResponseWriter, status int, message string) {
	utils.WriteJSON(w, errorResponse{Error: message}, status)
}

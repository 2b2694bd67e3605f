package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/models"
)

const (
	msgCaptchaFailed       = "CAPTCHA verification failed. Please try again."
	msgInvalidCredentials  = "Invalid credentials or account locked."
	msgRegistrationClashed = "Registration failed due to conflicting user data."
	msgUnexpected          = "Something went wrong. Please try again."
)

// registerForm and loginForm echo the submitted values back to the page.
// Passwords are never echoed.
type registerForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginForm struct {
	Email string `json:"email"`
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.IdentityFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, pageView{Page: "landing"})
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageView{
		Page:    "register",
		Form:    registerForm{Role: models.RoleUser.String()},
		Captcha: h.captchaFor(r, captcha.ScopeRegister, true),
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if err := r.ParseForm(); err != nil {
		log.Err(err).Str("func", "*Handler.register").Msg("invalid form was passed")
		writeError(w, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}

	request := models.RegisterRequest{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     r.PostForm.Get("role"),
	}
	if request.Role == "" {
		request.Role = models.RoleUser.String()
	}

	_, err := h.services.AuthService.Register(ctx, request, h.captchaProof(r, captcha.ScopeRegister))
	if err != nil {
		status := statusFromError(err)
		page := pageView{
			Page:   "register",
			Errors: fieldErrors(err),
			Form:   registerForm{Username: request.Username, Email: request.Email, Role: request.Role},
		}

		switch {
		case errors.Is(err, service.ErrCaptchaFailed):
			page.Notices = append(page.Notices, notice(noticeDanger, msgCaptchaFailed))
		case errors.Is(err, store.ErrConflict):
			page.Notices = append(page.Notices, notice(noticeDanger, msgRegistrationClashed))
		case status == http.StatusInternalServerError:
			log.Err(err).Str("func", "*Handler.register").Msg("unexpected error occurred during user registration")
			page.Notices = append(page.Notices, notice(noticeDanger, msgUnexpected))
		}

		page.Captcha = h.captchaFor(r, captcha.ScopeRegister, true)
		h.render(w, r, status, page)
		return
	}

	h.redirect(w, r, "/login", notice(noticeSuccess, "Account created successfully. You can now log in."))
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageView{
		Page:    "login",
		Captcha: h.captchaFor(r, captcha.ScopeLogin, true),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if err := r.ParseForm(); err != nil {
		log.Err(err).Str("func", "*Handler.login").Msg("invalid form was passed")
		writeError(w, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}

	request := models.LoginRequest{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	_, token, err := h.services.AuthService.Login(ctx, request, h.captchaProof(r, captcha.ScopeLogin))
	if err != nil {
		status := statusFromError(err)
		page := pageView{
			Page:   "login",
			Errors: fieldErrors(err),
			Form:   loginForm{Email: request.Email},
		}

		switch {
		case errors.Is(err, service.ErrCaptchaFailed):
			page.Notices = append(page.Notices, notice(noticeDanger, msgCaptchaFailed))
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountLocked):
			page.Notices = append(page.Notices, notice(noticeDanger, msgInvalidCredentials))
		case status == http.StatusInternalServerError:
			log.Err(err).Str("func", "*Handler.login").Msg("unexpected error occurred during user login")
			page.Notices = append(page.Notices, notice(noticeDanger, msgUnexpected))
		}

		page.Captcha = h.captchaFor(r, captcha.ScopeLogin, true)
		h.render(w, r, status, page)
		return
	}

	h.setTokenCookie(w, token)
	h.redirect(w, r, "/home", notice(noticeSuccess, "Login successful."))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := utils.IdentityFromContext(ctx)

	if err := h.services.AuthService.Logout(ctx, user); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.logout").Int64("user_id", user.UserID).Msg("error recording logout")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.clearTokenCookie(w)
	h.redirect(w, r, "/login", notice(noticeInfo, "You have been logged out."))
}

// refreshCaptcha replaces the pending math question of a form.
func (h *Handler) refreshCaptcha(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	if !captcha.ValidScope(scope) {
		writeError(w, http.StatusNotFound, captcha.ErrUnknownScope.Error())
		return
	}

	if h.verifier.Mode() != captcha.ModeMath {
		writeError(w, http.StatusBadRequest, "Math captcha is disabled when Turnstile is enabled.")
		return
	}

	view := h.captchaFor(r, scope, true)
	if view.Question == "" {
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	utils.WriteJSON(w, map[string]string{"question": view.Question}, http.StatusOK)
}

// captchaProof collects the CAPTCHA material submitted with a form.
func (h *Handler) captchaProof(r *http.Request, scope string) models.CaptchaProof {
	sessionID, _ := utils.SessionIDFromContext(r.Context())

	return models.CaptchaProof{
		SessionID: sessionID,
		Scope:     scope,
		Answer:    r.PostForm.Get("captcha_answer"),
		Token:     r.PostForm.Get("cf-turnstile-response"),
		RemoteIP:  utils.ClientIP(r, h.trustProxy),
	}
}

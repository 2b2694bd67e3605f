package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-login-portal/models"
)

const (
	sessionCookieName = "portal_session"
	flashCookieName   = "portal_flash"
)

// Notice categories.
const (
	noticeSuccess = "success"
	noticeInfo    = "info"
	noticeWarning = "warning"
	noticeDanger  = "danger"
)

type cookieSettings struct {
	tokenName   string
	secure      bool
	tokenMaxAge int
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token models.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.tokenName,
		Value:    token.SignedString,
		Path:     "/",
		MaxAge:   h.cookies.tokenMaxAge,
		HttpOnly: true,
		Secure:   h.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.tokenName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// flash queues notices for the next rendered page. Notices already queued
// on the request are kept in front.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, notices ...models.Notice) {
	if len(notices) == 0 {
		return
	}

	queued := append(readFlash(r), notices...)
	payload, err := json.Marshal(queued)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// consumeFlash returns the queued notices and expires the cookie.
func (h *Handler) consumeFlash(w http.ResponseWriter, r *http.Request) []models.Notice {
	notices := readFlash(r)
	if _, err := r.Cookie(flashCookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookies.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return notices
}

// readFlash decodes the flash cookie. A malformed cookie reads as empty.
func readFlash(r *http.Request) []models.Notice {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var notices []models.Notice
	if err = json.Unmarshal(payload, &notices); err != nil {
		return nil
	}
	return notices
}

func notice(category, message string) models.Notice {
	return models.Notice{Category: category, Message: message}
}

package http

import (
	"net/http"

	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/models"
)

// maxSessionIDLength bounds the session id accepted from the cookie.
const maxSessionIDLength = 64

// withSession makes sure every request carries an anonymous session id.
// Pending CAPTCHA challenges are keyed by it. A missing or malformed cookie
// is replaced with a fresh random id.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(sessionCookieName); err == nil && validSessionID(cookie.Value) {
			sessionID = cookie.Value
		} else {
			sessionID = h.uuid.Random()
			h.setSessionCookie(w, sessionID)
		}

		next.ServeHTTP(w, r.WithContext(utils.WithSessionID(r.Context(), sessionID)))
	})
}

func validSessionID(value string) bool {
	if value == "" || len(value) > maxSessionIDLength {
		return false
	}
	for _, c := range value {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// withClientInfo attaches the caller address and user agent recorded in
// audit events, both fitted to the audit columns.
func (h *Handler) withClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := models.ClientInfo{
			IPAddress: utils.TruncateRunes(utils.ClientIP(r, h.trustProxy), models.MaxIPAddressLength),
			UserAgent: utils.TruncateRunes(r.UserAgent(), models.MaxUserAgentLength),
		}
		next.ServeHTTP(w, r.WithContext(utils.WithClientInfo(r.Context(), info)))
	})
}

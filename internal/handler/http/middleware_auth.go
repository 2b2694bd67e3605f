package http

import (
	"net/http"

	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/models"
)

// withIdentity resolves the identity cookie and stores the account in the
// request context via [utils.WithIdentity].
//
// It never rejects a request: a missing, expired or forged token, a deleted
// account or a deactivated one all leave the caller anonymous. Guards
// further down decide what an anonymous caller may see.
func (h *Handler) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookies.tokenName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		user, err := h.services.AuthService.ResolveIdentity(ctx, cookie.Value)
		if err != nil {
			logger.FromRequest(r).Debug().Err(err).Str("func", "*Handler.withIdentity").Msg("identity cookie ignored")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithIdentity(ctx, user)))
	})
}

// requireAuthenticated sends anonymous callers to the login page with a
// warning notice.
func (h *Handler) requireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.IdentityFromContext(r.Context()); !ok {
			h.redirect(w, r, "/login", notice(noticeWarning, "Please log in to continue."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole admits only callers holding role. Anonymous callers are
// handled as by requireAuthenticated; others get 403.
func (h *Handler) requireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return h.requireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := utils.IdentityFromContext(r.Context())
			if user.Role != role {
				logger.FromRequest(r).Warn().Str("func", "*Handler.requireRole").
					Int64("user_id", user.UserID).
					Str("required_role", role.String()).
					Msg("access forbidden")
				writeError(w, http.StatusForbidden, "403 - Access Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// redirectAuthenticated sends signed-in callers away from the login and
// registration pages.
func (h *Handler) redirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.IdentityFromContext(r.Context()); ok {
			http.Redirect(w, r, "/home", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

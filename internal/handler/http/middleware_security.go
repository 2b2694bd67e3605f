package http

import "net/http"

// withSecurityHeaders forbids framing and MIME sniffing and keeps the
// referrer on this origin.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("X-Frame-Options", "DENY")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("Referrer-Policy", "same-origin")

		next.ServeHTTP(w, r)
	})
}

package http

import (
	"net/http"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/utils"
)

type Handler struct {
	services *service.Services
	verifier captcha.Verifier

	// avatars serves locally stored profile photos. Nil when photos live in
	// object storage and are reached through presigned URLs.
	avatars        http.Handler
	avatarMaxBytes int64
	limiter        *RateLimiter

	cookies     cookieSettings
	trustProxy  bool
	corsOrigins []string
	uuid        *utils.UUIDGenerator

	logger *logger.Logger
}

func NewHandler(services *service.Services, verifier captcha.Verifier, avatars http.Handler, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	h := &Handler{
		services: services,
		verifier: verifier,
		avatars:  avatars,
		cookies: cookieSettings{
			tokenName:   cfg.Server.CookieName,
			secure:      cfg.Server.CookieSecure,
			tokenMaxAge: int(cfg.App.TokenDuration.Seconds()),
		},
		avatarMaxBytes: cfg.Storage.Avatars.MaxBytes,
		trustProxy:     cfg.Server.TrustProxy,
		corsOrigins:    cfg.Server.CORSAllowedOrigins,
		uuid:           utils.NewUUIDGenerator(),
		logger:         logger,
	}

	if cfg.Server.RateLimitPerMinute > 0 {
		h.limiter = NewRateLimiter(cfg.Server.RateLimitPerMinute, cfg.Workers.SweepInterval)
	}

	logger.Info().Msg("http handler created")
	return h
}

// Limiter returns the credential throttle, or nil when throttling is off.
func (h *Handler) Limiter() *RateLimiter {
	return h.limiter
}

package handler

import (
	nethttp "net/http"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/handler/http"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/store"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers builds the transport handlers enabled in cfg. Avatar files
// are served by the portal itself only when the storage backend can do so.
func NewHandlers(services *service.Services, verifier captcha.Verifier, avatars store.AvatarStorage, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		var files nethttp.Handler
		if fs, ok := avatars.(store.FileServer); ok {
			files = fs.FileHandler()
		}
		handlers.HTTP = http.NewHandler(services, verifier, files, cfg, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}

package service

import (
	"fmt"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/crypto"
	"github.com/MKhiriev/go-login-portal/internal/lockout"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/validators"
)

type Services struct {
	AuthService    AuthService
	AdminService   AdminService
	ProfileService ProfileService
	AuditService   AuditService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, verifier captcha.Verifier, cfg *config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	hasher := crypto.NewArgon2Hasher(cfg.Security.Argon2)
	policy := lockout.NewPolicy(cfg.Security.Lockout)
	validator := validators.NewAccountValidator()

	appInfoService, err := NewAppInfoService(cfg.App, storages.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	auditService := NewAuditService(storages.AuditRepository, logger)

	return &Services{
		AuthService: NewAuthService(storages.DB, storages.UserRepository, auditService,
			hasher, verifier, policy, validator, cfg.App, logger),
		AdminService: NewAdminService(storages.DB, storages.UserRepository, storages.AuditRepository, auditService,
			storages.AvatarStorage, hasher, policy, validator, logger),
		ProfileService: NewProfileService(storages.DB, storages.UserRepository, auditService,
			storages.AvatarStorage, hasher, validator, cfg.Storage.Avatars.MaxBytes, logger),
		AuditService:   auditService,
		AppInfoService: appInfoService,
	}, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
)

// Storages groups the persistence dependencies handed to the service layer.
type Storages struct {
	*DB
	UserRepository  UserRepository
	AuditRepository AuditRepository
	AvatarStorage   AvatarStorage
}

// NewStorages connects to the configured database, applies migrations and
// prepares the avatar backend.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DB, logger)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.DB.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		logger.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		_ = db.Close()
		return nil, err
	}

	avatars, err := NewAvatarStorage(ctx, cfg.Avatars, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storages{
		DB:              db,
		UserRepository:  NewUserRepository(db, logger),
		AuditRepository: NewAuditRepository(db, logger),
		AvatarStorage:   avatars,
	}, nil
}

// NewAvatarStorage builds the backend selected by cfg.Backend.
func NewAvatarStorage(ctx context.Context, cfg config.Avatars, logger *logger.Logger) (AvatarStorage, error) {
	switch cfg.Backend {
	case config.AvatarBackendS3:
		return NewS3AvatarStorage(ctx, cfg.S3, logger)
	default:
		return NewLocalAvatarStorage(cfg.Dir, logger)
	}
}

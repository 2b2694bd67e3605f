// Package store persists accounts and audit events in PostgreSQL or SQLite
// and keeps profile photos in a local directory or an S3 bucket.
package store

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/MKhiriev/go-login-portal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Transactor runs a function inside one database transaction. Repository
// calls made with the context handed to fn take part in it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserOrder selects the sort order of [UserRepository.ListUsers].
type UserOrder int

const (
	// OrderNewest sorts by creation time, newest first.
	OrderNewest UserOrder = iota
	// OrderDirectory puts admins first, then sorts by username ignoring case.
	OrderDirectory
)

// UserRepository is the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	// FindUserByEmail matches case-insensitively. Inside a PostgreSQL
	// transaction the row stays locked until commit.
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	// ExistsByUsername and ExistsByEmail ignore case and skip excludeID
	// (pass 0 to check every account).
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, userID int64) error
	CountAdmins(ctx context.Context) (int, error)
	ListUsers(ctx context.Context, order UserOrder, limit int) ([]models.User, error)
	Stats(ctx context.Context, now time.Time) (models.UserStats, error)
}

// AuditRepository is the append-only audit log.
type AuditRepository interface {
	Append(ctx context.Context, event models.AuditEvent) error
	// DetachUser nulls the actor of every event recorded for userID.
	DetachUser(ctx context.Context, userID int64) error
	List(ctx context.Context, limit int) ([]models.AuditEvent, error)
}

// AvatarStorage keeps profile photos under flat names.
type AvatarStorage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	// Delete removes name. A missing object is not an error.
	Delete(ctx context.Context, name string) error
	URL(ctx context.Context, name string) (string, error)
}

// FileServer is implemented by avatar backends that serve their own files.
type FileServer interface {
	FileHandler() http.Handler
}

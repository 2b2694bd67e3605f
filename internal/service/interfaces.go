package service

import (
	"context"
	"io"

	"github.com/MKhiriev/go-login-portal/models"
)

// AuthService registers accounts, signs users in and out and resolves the
// identity token carried by a request.
type AuthService interface {
	Register(ctx context.Context, request models.RegisterRequest, proof models.CaptchaProof) (models.User, error)
	Login(ctx context.Context, request models.LoginRequest, proof models.CaptchaProof) (models.User, models.Token, error)
	Logout(ctx context.Context, user models.User) error
	// ResolveIdentity returns the active account named by tokenString or
	// ErrTokenIsExpiredOrInvalid.
	ResolveIdentity(ctx context.Context, tokenString string) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AdminService carries out account management. Every mutation runs in one
// transaction together with its audit event.
type AdminService interface {
	Dashboard(ctx context.Context) (models.Dashboard, error)
	RecentUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, actor models.User, request models.AdminCreateUserRequest) (models.User, error)
	ChangeRole(ctx context.Context, actor models.User, targetID int64, role string) error
	SetActive(ctx context.Context, actor models.User, targetID int64, active bool) error
	Unlock(ctx context.Context, actor models.User, targetID int64) error
	Delete(ctx context.Context, actor models.User, targetID int64) (models.DeleteResult, error)
	AuditLog(ctx context.Context, limit int) ([]models.AuditEvent, error)
}

// ProfileService backs the signed-in pages: home, directory and the
// self-service profile forms.
type ProfileService interface {
	Home(ctx context.Context) (models.UserStats, error)
	Directory(ctx context.Context) (models.Directory, error)
	UpdateDetails(ctx context.Context, user models.User, request models.ProfileDetailsRequest) (models.User, error)
	ChangePassword(ctx context.Context, user models.User, request models.PasswordChangeRequest) error
	UpdateAvatar(ctx context.Context, user models.User, upload models.AvatarUpload, r io.Reader) (models.User, error)
	RemoveAvatar(ctx context.Context, user models.User) (models.User, error)
	AvatarURL(ctx context.Context, user models.User) string
}

// AuditService appends audit events. Called with a transaction context the
// event commits or rolls back with it.
type AuditService interface {
	Record(ctx context.Context, action string, status models.AuditStatus, actor *models.User) error
	Recent(ctx context.Context, limit int) ([]models.AuditEvent, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	// Health pings the database.
	Health(ctx context.Context) error
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

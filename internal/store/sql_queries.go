package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-login-portal/models"
)

const (
	usersTable = "users"
	auditTable = "audit_logs"

	// AvatarURLPrefix is where the local backend serves stored photos.
	AvatarURLPrefix = "/uploads/avatars/"
)

var userColumns = []string{
	"id",
	"username",
	"email",
	"full_name",
	"bio",
	"avatar_filename",
	"password_hash",
	"role",
	"is_active",
	"failed_attempts",
	"failed_attempt_window_start",
	"locked_until",
	"created_at",
	"updated_at",
	"last_login_at",
}

var auditColumns = []string{
	"id",
	"user_id",
	"action",
	"status",
	"ip_address",
	"user_agent",
	"created_at",
}

func (db *DB) selectUsers() sq.SelectBuilder {
	return db.builder.Select(userColumns...).From(usersTable)
}

// existsQuery checks for another account holding value in column, compared
// case-insensitively.
func (db *DB) existsQuery(column, value string, excludeID int64) sq.SelectBuilder {
	query := db.builder.Select("1").
		From(usersTable).
		Where(sq.Expr("LOWER("+column+") = LOWER(?)", value)).
		Limit(1)
	if excludeID > 0 {
		query = query.Where(sq.NotEq{"id": excludeID})
	}
	return query
}

func orderBy(order UserOrder) []string {
	switch order {
	case OrderDirectory:
		return []string{"CASE WHEN role = 'admin' THEN 0 ELSE 1 END", "LOWER(username)", "id"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.Bio,
		&u.AvatarFilename,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.FailedAttempts,
		&u.FailedAttemptWindowStart,
		&u.LockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	return u, err
}

func scanAuditEvent(row rowScanner) (models.AuditEvent, error) {
	var (
		e         models.AuditEvent
		ipAddress sql.NullString
		userAgent sql.NullString
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.Status, &ipAddress, &userAgent, &e.CreatedAt)
	e.IPAddress = ipAddress.String
	e.UserAgent = userAgent.String
	return e, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

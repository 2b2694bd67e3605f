package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the access level assigned to an account.
type Role string

const (
	// RoleAdmin grants access to the admin panel and all user-management
	// operations.
	RoleAdmin Role = "admin"

	// RoleUser is the default role for self-registered accounts.
	RoleUser Role = "user"
)

// ParseRole converts a raw form value into a [Role]. The comparison is
// case-insensitive and ignores surrounding whitespace.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// String implements [fmt.Stringer].
func (r Role) String() string {
	return string(r)
}

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, profile data and the lockout counters.
// PasswordHash and the failed-attempt window are never exposed via JSON.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is unique case-insensitively and limited to 30 characters.
	Username string `json:"username"`

	// Email is stored lower-cased and is unique case-insensitively.
	Email string `json:"email"`

	// FullName is optional, 2..80 characters when present.
	FullName *string `json:"full_name,omitempty"`

	// Bio is optional free text up to 280 characters.
	Bio *string `json:"bio,omitempty"`

	// AvatarFilename is the storage key of a custom profile photo.
	AvatarFilename *string `json:"avatar_filename,omitempty"`

	// PasswordHash is the encoded Argon2id digest. It is only ever passed to
	// the password hasher for verification.
	PasswordHash string `json:"-"`

	Role     Role `json:"role"`
	IsActive bool `json:"is_active"`

	// FailedAttempts counts wrong-password submissions inside the current
	// window. It is reset when a lock is applied.
	FailedAttempts int `json:"failed_attempts"`

	// FailedAttemptWindowStart marks the first failure of the current window.
	FailedAttemptWindowStart *time.Time `json:"-"`

	// LockedUntil is set while the account is locked out.
	LockedUntil *time.Time `json:"locked_until,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsAdmin reports whether the account holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsLockedAt reports whether a lock is in force at now. It does not mutate
// the account; the lazy clearing of expired locks is done by the lockout
// policy.
func (u User) IsLockedAt(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// DisplayName returns the trimmed full name or, when empty, the username.
func (u User) DisplayName() string {
	if u.FullName != nil {
		if name := strings.TrimSpace(*u.FullName); name != "" {
			return name
		}
	}
	return u.Username
}

// Initials returns up to two upper-cased letters for avatar placeholders.
// Underscores count as word separators. An empty source yields "U".
func (u User) Initials() string {
	source := u.Username
	if u.FullName != nil && *u.FullName != "" {
		source = *u.FullName
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return "U"
	}

	parts := strings.Fields(strings.ReplaceAll(source, "_", " "))
	if len(parts) == 0 {
		return strings.ToUpper(firstRune(source))
	}
	if len(parts) == 1 {
		return strings.ToUpper(firstRune(parts[0]))
	}

	return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[len(parts)-1]))
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size == 0 {
		return ""
	}
	return string(r)
}

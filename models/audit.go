package models

import (
	"fmt"
	"time"
)

// AuditStatus is the outcome recorded with every audit event.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
)

// Audit action labels.
const (
	ActionRegister            = "register"
	ActionRegisterCaptchaFail = "register_captcha_fail"
	ActionLoginCaptchaFail    = "login_captcha_fail"
	ActionLoginFail           = "login_fail"
	ActionLoginLocked         = "login_locked"
	ActionLockout             = "lockout"
	ActionLoginSuccess        = "login_success"
	ActionLogout              = "logout"
	ActionProfileUpdate       = "profile_update"
	ActionPasswordChange      = "password_change"
	ActionAvatarUpdate        = "avatar_update"
	ActionAvatarRemove        = "avatar_remove"
)

// Prefixes of admin actions, completed with the target account id by
// [TargetAction].
const (
	ActionAdminCreateUser = "admin_create_user"
	ActionRoleChange      = "role_change"
	ActionActivate        = "activate"
	ActionDeactivate      = "deactivate"
	ActionUnlock          = "unlock"
	ActionDelete          = "delete"
	ActionSelfDelete      = "self_delete"
)

// TargetAction builds an action label that names the affected account,
// e.g. "unlock_target_42".
func TargetAction(prefix string, targetID int64) string {
	return fmt.Sprintf("%s_target_%d", prefix, targetID)
}

// Column bounds of audit_logs.
const (
	// MaxUserAgentLength is the number of user-agent characters kept per event.
	MaxUserAgentLength = 255
	// MaxIPAddressLength fits the textual form of any IPv6 address.
	MaxIPAddressLength = 45
)

// AuditEvent is an append-only record of a security-relevant action.
// UserID is nil for anonymous actors and becomes nil when the account is
// deleted.
type AuditEvent struct {
	ID        int64       `json:"id"`
	UserID    *int64      `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Status    AuditStatus `json:"status"`
	IPAddress string      `json:"ip_address,omitempty"`
	UserAgent string      `json:"user_agent,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the AuditEvent model.
func (e AuditEvent) TableName() string {
	return "audit_logs"
}

// ClientInfo carries the request origin attached to audit events.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

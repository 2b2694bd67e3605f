package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/validators"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:           http.StatusBadRequest,
	service.ErrCaptchaFailed:                 http.StatusBadRequest,
	service.ErrUsernameTaken:                 http.StatusBadRequest,
	service.ErrEmailTaken:                    http.StatusBadRequest,
	service.ErrCurrentPasswordIncorrect:      http.StatusBadRequest,
	service.ErrInvalidRole:                   http.StatusBadRequest,
	service.ErrInvalidCredentials:            http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid:       http.StatusUnauthorized,
	service.ErrAdminSelfRegistrationDisabled: http.StatusForbidden,
	service.ErrAccountLocked:                 http.StatusLocked,
	service.ErrAvatarTooLarge:                http.StatusRequestEntityTooLarge,

	store.ErrConflict:       http.StatusConflict,
	store.ErrNoUserWasFound: http.StatusNotFound,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// adminRuleMessages are the warnings shown when an admin action breaks a
// self-action or last-admin rule.
var adminRuleMessages = map[error]string{
	service.ErrSelfRoleRemoval:       "You cannot remove your own admin role.",
	service.ErrLastAdminDemotion:     "Cannot demote the last remaining admin.",
	service.ErrSelfDeactivation:      "You cannot deactivate your own account.",
	service.ErrLastAdminDeactivation: "Cannot deactivate the last remaining admin.",
	service.ErrLastAdminDeletion:     "Cannot delete the last remaining admin account.",
}

func adminRuleMessage(err error) (string, bool) {
	for target, message := range adminRuleMessages {
		if errors.Is(err, target) {
			return message, true
		}
	}
	return "", false
}

// fieldErrors extracts the per-field messages carried by err, if any.
func fieldErrors(err error) validators.ValidationErrors {
	var fields validators.ValidationErrors
	if errors.As(err, &fields) {
		return fields
	}
	return nil
}

// firstFieldError returns one message from fields in a stable order.
func firstFieldError(fields validators.ValidationErrors, order ...string) string {
	for _, field := range order {
		if message, ok := fields[field]; ok {
			return message
		}
	}
	for _, message := range fields {
		return message
	}
	return "Invalid input."
}

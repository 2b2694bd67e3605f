package service

import "errors"

var (
	// ErrInvalidDataProvided wraps validators.ValidationErrors for a form
	// that failed field validation.
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrCaptchaFailed                 = errors.New("captcha verification failed")
	ErrUsernameTaken                 = errors.New("username is already taken")
	ErrEmailTaken                    = errors.New("email is already registered")
	ErrAdminSelfRegistrationDisabled = errors.New("admin self-registration is disabled")

	// ErrInvalidCredentials covers unknown email, inactive account and wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrHashingPassword         = errors.New("error hashing password")

	ErrInvalidRole           = errors.New("invalid role value")
	ErrSelfRoleRemoval       = errors.New("cannot remove own admin role")
	ErrSelfDeactivation      = errors.New("cannot deactivate own account")
	ErrLastAdminDemotion     = errors.New("cannot demote the last remaining admin")
	ErrLastAdminDeactivation = errors.New("cannot deactivate the last remaining admin")
	ErrLastAdminDeletion     = errors.New("cannot delete the last remaining admin")

	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrNoAvatar                 = errors.New("no custom avatar to remove")
	ErrAvatarTooLarge           = errors.New("avatar exceeds the size limit")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

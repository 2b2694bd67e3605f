package validators

import (
	"context"

	"github.com/MKhiriev/go-login-portal/models"
)

// Field name constants used to specify which fields should be validated.
// They double as the form input names the messages are shown under.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRole            = "role"
	FieldFullName        = "full_name"
	FieldBio             = "bio"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldConfirmPassword = "confirm_password"
	FieldAvatar          = "avatar"
)

// AccountValidator validates the account forms: registration, login,
// admin-created users, profile details, password change and avatar upload.
// Unlike a fail-fast check it reports every failing field at once.
type AccountValidator struct {
}

// NewAccountValidator returns the account form [Validator].
func NewAccountValidator() Validator {
	return &AccountValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj. Both value and pointer forms of each
// supported model are accepted.
//
// The error, when not nil, is either [ValidationErrors], [ErrUnsupportedType]
// or [ErrUnknownField].
func (v *AccountValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RegisterRequest:
		return v.validateRegister(value, fields...)
	case *models.RegisterRequest:
		return v.validateRegister(*value, fields...)

	case models.LoginRequest:
		return v.validateLogin(value, fields...)
	case *models.LoginRequest:
		return v.validateLogin(*value, fields...)

	case models.AdminCreateUserRequest:
		return v.validateAdminCreateUser(value, fields...)
	case *models.AdminCreateUserRequest:
		return v.validateAdminCreateUser(*value, fields...)

	case models.ProfileDetailsRequest:
		return v.validateProfileDetails(value, fields...)
	case *models.ProfileDetailsRequest:
		return v.validateProfileDetails(*value, fields...)

	case models.PasswordChangeRequest:
		return v.validatePasswordChange(value, fields...)
	case *models.PasswordChangeRequest:
		return v.validatePasswordChange(*value, fields...)

	case models.AvatarUpload:
		return v.validateAvatar(value, fields...)
	case *models.AvatarUpload:
		return v.validateAvatar(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *AccountValidator) validateRegister(request models.RegisterRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUsername, FieldEmail, FieldPassword, FieldRole}
	}

	errs := ValidationErrors{}
	for _, f := range fields {
		switch f {
		case FieldUsername:
			checkUsername(errs, f, request.Username)
		case FieldEmail:
			checkEmail(errs, f, request.Email)
		case FieldPassword:
			checkNewPassword(errs, f, request.Password)
		case FieldRole:
			checkRole(errs, f, request.Role)
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

// validateLogin checks presence and email shape only. Password rules are
// not applied so that existing weak passwords can still sign in.
func (v *AccountValidator) validateLogin(request models.LoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword}
	}

	errs := ValidationErrors{}
	for _, f := range fields {
		switch f {
		case FieldEmail:
			checkEmail(errs, f, request.Email)
		case FieldPassword:
			checkRequired(errs, f, request.Password)
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

func (v *AccountValidator) validateAdminCreateUser(request models.AdminCreateUserRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldFullName, FieldUsername, FieldEmail, FieldPassword, FieldRole}
	}

	errs := ValidationErrors{}
	for _, f := range fields {
		switch f {
		case FieldFullName:
			checkOptionalLength(errs, f, request.FullName, 0, FullNameMaxLength)
		case FieldUsername:
			checkUsername(errs, f, request.Username)
		case FieldEmail:
			checkEmail(errs, f, request.Email)
		case FieldPassword:
			checkNewPassword(errs, f, request.Password)
		case FieldRole:
			checkRole(errs, f, request.Role)
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

func (v *AccountValidator) validateProfileDetails(request models.ProfileDetailsRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldFullName, FieldUsername, FieldEmail, FieldBio}
	}

	errs := ValidationErrors{}
	for _, f := range fields {
		switch f {
		case FieldFullName:
			checkOptionalLength(errs, f, request.FullName, FullNameMinLength, FullNameMaxLength)
		case FieldUsername:
			checkUsername(errs, f, request.Username)
		case FieldEmail:
			checkEmail(errs, f, request.Email)
		case FieldBio:
			checkOptionalLength(errs, f, request.Bio, 0, BioMaxLength)
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

func (v *AccountValidator) validatePasswordChange(request models.PasswordChangeRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCurrentPassword, FieldNewPassword, FieldConfirmPassword}
	}

	errs := ValidationErrors{}
	for _, f := range fields {
		switch f {
		case FieldCurrentPassword:
			checkRequired(errs, f, request.CurrentPassword)
		case FieldNewPassword:
			checkNewPassword(errs, f, request.NewPassword)
		case FieldConfirmPassword:
			checkRequired(errs, f, request.ConfirmPassword)
			if request.ConfirmPassword != request.NewPassword {
				errs.Add(f, MsgPasswordsMismatch)
			}
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

// validateAvatar checks the file name only; the size limit is enforced
// while reading the upload.
func (v *AccountValidator) validateAvatar(upload models.AvatarUpload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldAvatar}
	}

	errs := ValidationErrors{}
	for _, f := range fields {
		switch f {
		case FieldAvatar:
			if upload.Filename == "" {
				errs.Add(f, MsgAvatarRequired)
				continue
			}
			ext, ok := AvatarExtension(upload.Filename)
			if !ok {
				errs.Add(f, MsgAvatarNoExtension)
				continue
			}
			if !AllowedAvatarExtensions[ext] {
				errs.Add(f, MsgAvatarExtension)
			}
		default:
			return ErrUnknownField
		}
	}

	return errs.orNil()
}

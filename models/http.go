package models

// RegisterRequest is the self-registration form.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

// AdminCreateUserRequest is the admin "add user" form.
type AdminCreateUserRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// ProfileDetailsRequest carries editable profile fields.
// Empty FullName or Bio clear the stored value.
type ProfileDetailsRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

// PasswordChangeRequest is the self-service password change form.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"-"`
	NewPassword     string `json:"-"`
	ConfirmPassword string `json:"-"`
}

// CaptchaProof is the human-verification material submitted with a form.
// Answer is used by the math challenge, Token by the external verifier.
type CaptchaProof struct {
	SessionID string
	Scope     string
	Answer    string
	Token     string
	RemoteIP  string
}

// AvatarUpload describes a submitted profile photo before it is stored.
type AvatarUpload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

package validators

import (
	"fmt"
	"net/mail"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Messages shown next to form fields.
const (
	MsgRequired          = "This field is required."
	MsgUsernamePattern   = "Username can contain only letters, numbers, and underscore."
	MsgInvalidEmail      = "Invalid email address."
	MsgInvalidChoice     = "Not a valid choice."
	MsgPasswordsMismatch = "Passwords do not match."
	MsgAvatarRequired    = "Please choose an image file."
	MsgAvatarNoExtension = "File extension is required."
	MsgAvatarExtension   = "Unsupported file extension."
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	EmailMaxLength    = 255
	FullNameMinLength = 2
	FullNameMaxLength = 80
	BioMaxLength      = 280
	PasswordMinLength = 10
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

var passwordRequirements = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(fmt.Sprintf(`.{%d,}`, PasswordMinLength)), fmt.Sprintf("at least %d characters", PasswordMinLength)},
	{regexp.MustCompile(`[A-Z]`), "an uppercase letter"},
	{regexp.MustCompile(`[a-z]`), "a lowercase letter"},
	{regexp.MustCompile(`\d`), "a number"},
	{regexp.MustCompile(`[^A-Za-z0-9]`), "a special character"},
}

// AllowedAvatarExtensions lists accepted profile photo types.
var AllowedAvatarExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
}

// PasswordStrengthErrors returns the unmet password requirements in a fixed
// order. An empty result means the password is strong enough.
func PasswordStrengthErrors(password string) []string {
	var failures []string
	for _, req := range passwordRequirements {
		if !req.pattern.MatchString(password) {
			failures = append(failures, req.message)
		}
	}
	return failures
}

// AvatarExtension returns the lower-cased extension of filename without the
// dot, or false when there is none.
func AvatarExtension(filename string) (string, bool) {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || dot == len(base)-1 {
		return "", false
	}
	return strings.ToLower(base[dot+1:]), true
}

func lengthBetween(min, max int) string {
	return fmt.Sprintf("Field must be between %d and %d characters long.", min, max)
}

func lengthAtMost(max int) string {
	return fmt.Sprintf("Field cannot be longer than %d characters.", max)
}

func checkUsername(errs ValidationErrors, field, username string) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	switch {
	case username == "":
		errs.Add(field, MsgRequired)
	case n < UsernameMinLength || n > UsernameMaxLength:
		errs.Add(field, lengthBetween(UsernameMinLength, UsernameMaxLength))
	case !usernamePattern.MatchString(username):
		errs.Add(field, MsgUsernamePattern)
	}
}

func checkEmail(errs ValidationErrors, field, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs.Add(field, MsgRequired)
	case !isEmail(email):
		errs.Add(field, MsgInvalidEmail)
	case utf8.RuneCountInString(email) > EmailMaxLength:
		errs.Add(field, lengthAtMost(EmailMaxLength))
	}
}

// isEmail accepts a bare addr-spec with a dotted domain.
func isEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.HasPrefix(domain, ".")
}

func checkNewPassword(errs ValidationErrors, field, password string) {
	if password == "" {
		errs.Add(field, MsgRequired)
		return
	}
	if failures := PasswordStrengthErrors(password); len(failures) > 0 {
		errs.Add(field, fmt.Sprintf("Password must include %s.", strings.Join(failures, ", ")))
	}
}

func checkRequired(errs ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, MsgRequired)
	}
}

func checkRole(errs ValidationErrors, field, role string) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "user":
	case "":
		errs.Add(field, MsgRequired)
	default:
		errs.Add(field, MsgInvalidChoice)
	}
}

// checkOptionalLength skips empty values; minimum 0 means no lower bound.
func checkOptionalLength(errs ValidationErrors, field, value string, min, max int) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	n := utf8.RuneCountInString(value)
	if min > 0 && (n < min || n > max) {
		errs.Add(field, lengthBetween(min, max))
		return
	}
	if n > max {
		errs.Add(field, lengthAtMost(max))
	}
}

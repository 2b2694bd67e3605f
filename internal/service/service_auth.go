package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/captcha"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/crypto"
	"github.com/MKhiriev/go-login-portal/internal/lockout"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

// Field messages for duplicates found on the registration and profile forms.
const (
	MsgUsernameInUse       = "This username is already in use."
	MsgEmailRegistered     = "This email is already registered."
	MsgAdminSignupDisabled = "Admin self-registration is disabled."
)

// authService is the concrete implementation of AuthService.
// Accounts live in the UserRepository, passwords are checked with the
// PasswordHasher and repeated failures are throttled by the lockout Policy.
type authService struct {
	transactor     store.Transactor
	userRepository store.UserRepository
	auditService   AuditService

	hasher    crypto.PasswordHasher
	verifier  captcha.Verifier
	policy    lockout.Policy
	validator validators.Validator

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	allowAdminSignup bool

	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService populated with token and
// registration parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(
	transactor store.Transactor,
	userRepository store.UserRepository,
	auditService AuditService,
	hasher crypto.PasswordHasher,
	verifier captcha.Verifier,
	policy lockout.Policy,
	validator validators.Validator,
	cfg config.App,
	logger *logger.Logger,
) AuthService {
	return &authService{
		transactor:       transactor,
		userRepository:   userRepository,
		auditService:     auditService,
		hasher:           hasher,
		verifier:         verifier,
		policy:           policy,
		validator:        validator,
		tokenSignKey:     cfg.TokenSignKey,
		tokenIssuer:      cfg.TokenIssuer,
		tokenDuration:    cfg.TokenDuration,
		allowAdminSignup: cfg.AdminSelfRegistrationAllowed(),
		now:              time.Now,
		logger:           logger,
	}
}

// Register creates a self-registered account.
//
// Checks run in order: field validation, CAPTCHA, username and email
// uniqueness (case-insensitive), then the admin self-registration policy.
// The account and its "register" audit event are committed together.
//
// Returns the persisted user or:
//   - ErrInvalidDataProvided wrapping validators.ValidationErrors.
//   - ErrCaptchaFailed after auditing register_captcha_fail.
//   - ErrUsernameTaken / ErrEmailTaken, also wrapping the field message.
//   - ErrAdminSelfRegistrationDisabled.
//   - store.ErrConflict when a concurrent insert won the unique index.
func (a *authService) Register(ctx context.Context, request models.RegisterRequest, proof models.CaptchaProof) (models.User, error) {
	log := logger.FromContext(ctx)

	request.Username = strings.TrimSpace(request.Username)
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))

	if err := a.validator.Validate(ctx, request); err != nil {
		log.Debug().Err(err).Str("func", "*authService.Register").Msg("registration form rejected")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if !a.verifier.Verify(ctx, proof) {
		log.Info().Str("func", "*authService.Register").Msg("captcha verification failed")
		if err := a.auditService.Record(ctx, models.ActionRegisterCaptchaFail, models.AuditFailure, nil); err != nil {
			return models.User{}, err
		}
		return models.User{}, ErrCaptchaFailed
	}

	role, _ := models.ParseRole(request.Role)

	var registered models.User
	err := a.transactor.InTx(ctx, func(ctx context.Context) error {
		if err := checkAvailable(ctx, a.userRepository, request.Username, request.Email, 0, MsgUsernameInUse, MsgEmailRegistered, true); err != nil {
			return err
		}

		if role == models.RoleAdmin && !a.allowAdminSignup {
			return fmt.Errorf("%w: %w", ErrAdminSelfRegistrationDisabled,
				validators.ValidationErrors{validators.FieldRole: MsgAdminSignupDisabled})
		}

		hash, err := a.hasher.Hash(request.Password)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHashingPassword, err)
		}

		now := a.now().UTC()
		created, err := a.userRepository.CreateUser(ctx, models.User{
			Username:     request.Username,
			Email:        request.Email,
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("user creation ended with error: %w", err)
		}

		if err = a.auditService.Record(ctx, models.ActionRegister, models.AuditSuccess, &created); err != nil {
			return err
		}

		registered = created
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Str("username", request.Username).Msg("registration failed")
		return models.User{}, err
	}

	log.Info().Int64("user_id", registered.UserID).Msg("user registered")
	return registered, nil
}

// Login authenticates by email and password and issues an identity token.
//
// The account row is read and updated inside one transaction so concurrent
// failures cannot lose increments of the lockout counter. Every outcome is
// audited in that same transaction, and failure outcomes are committed before
// the error is returned.
//
// Returns the signed-in user and token or:
//   - ErrInvalidDataProvided wrapping validators.ValidationErrors.
//   - ErrCaptchaFailed after auditing login_captcha_fail.
//   - ErrInvalidCredentials for an unknown email, an inactive account or a
//     wrong password.
//   - ErrAccountLocked while a lock is in force.
func (a *authService) Login(ctx context.Context, request models.LoginRequest, proof models.CaptchaProof) (models.User, models.Token, error) {
	log := logger.FromContext(ctx)

	request.Email = strings.ToLower(strings.TrimSpace(request.Email))

	if err := a.validator.Validate(ctx, request); err != nil {
		return models.User{}, models.Token{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if !a.verifier.Verify(ctx, proof) {
		log.Info().Str("func", "*authService.Login").Msg("captcha verification failed")
		if err := a.auditService.Record(ctx, models.ActionLoginCaptchaFail, models.AuditFailure, nil); err != nil {
			return models.User{}, models.Token{}, err
		}
		return models.User{}, models.Token{}, ErrCaptchaFailed
	}

	var (
		user    models.User
		token   models.Token
		outcome error
	)
	err := a.transactor.InTx(ctx, func(ctx context.Context) error {
		outcome = nil

		found, err := a.userRepository.FindUserByEmail(ctx, request.Email)
		if errors.Is(err, store.ErrNoUserWasFound) {
			outcome = ErrInvalidCredentials
			return a.auditService.Record(ctx, models.ActionLoginFail, models.AuditFailure, nil)
		}
		if err != nil {
			return fmt.Errorf("user search by email failed: %w", err)
		}

		if !found.IsActive {
			outcome = ErrInvalidCredentials
			return a.auditService.Record(ctx, models.ActionLoginFail, models.AuditFailure, &found)
		}

		now := a.now().UTC()
		if a.policy.IsLocked(&found, now) {
			outcome = ErrAccountLocked
			return a.auditService.Record(ctx, models.ActionLoginLocked, models.AuditFailure, &found)
		}

		if !a.hasher.Verify(request.Password, found.PasswordHash) {
			escalated := a.policy.RecordFailure(&found, now)
			found.UpdatedAt = now
			if err = a.userRepository.UpdateUser(ctx, found); err != nil {
				return fmt.Errorf("error saving failed attempt: %w", err)
			}
			if escalated {
				log.Warn().Int64("user_id", found.UserID).Msg("account locked after repeated failures")
				if err = a.auditService.Record(ctx, models.ActionLockout, models.AuditFailure, &found); err != nil {
					return err
				}
			}
			outcome = ErrInvalidCredentials
			return a.auditService.Record(ctx, models.ActionLoginFail, models.AuditFailure, &found)
		}

		a.policy.Clear(&found)
		found.LastLoginAt = &now
		found.UpdatedAt = now
		if err = a.userRepository.UpdateUser(ctx, found); err != nil {
			return fmt.Errorf("error saving successful login: %w", err)
		}

		token, err = a.CreateToken(ctx, found)
		if err != nil {
			return err
		}

		if err = a.auditService.Record(ctx, models.ActionLoginSuccess, models.AuditSuccess, &found); err != nil {
			return err
		}

		user = found
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("login ended with error")
		return models.User{}, models.Token{}, err
	}
	if outcome != nil {
		log.Info().Str("func", "*authService.Login").Str("outcome", outcome.Error()).Msg("login rejected")
		return models.User{}, models.Token{}, outcome
	}

	log.Info().Int64("user_id", user.UserID).Msg("user logged in")
	return user, token, nil
}

// Logout records the sign-out. The token itself is stateless; the caller
// drops the cookie.
func (a *authService) Logout(ctx context.Context, user models.User) error {
	if err := a.auditService.Record(ctx, models.ActionLogout, models.AuditSuccess, &user); err != nil {
		return fmt.Errorf("error recording logout: %w", err)
	}
	return nil
}

func (a *authService) ResolveIdentity(ctx context.Context, tokenString string) (models.User, error) {
	if tokenString == "" {
		return models.User{}, ErrTokenIsExpiredOrInvalid
	}

	token, err := a.ParseToken(ctx, tokenString)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.userRepository.FindUserByID(ctx, token.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNoUserWasFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*authService.ResolveIdentity").Msg("error loading identity")
		}
		return models.User{}, ErrTokenIsExpiredOrInvalid
	}
	if !user.IsActive {
		return models.User{}, ErrTokenIsExpiredOrInvalid
	}

	return user, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim, and expires after tokenDuration.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, user.Role, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// Any validation failure (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid so that callers do not need to inspect low-level
// JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// checkAvailable looks for accounts other than excludeID holding username or
// email. With stopAtFirst the username conflict is reported alone; otherwise
// both conflicts are collected.
func checkAvailable(ctx context.Context, users store.UserRepository, username, email string, excludeID int64, usernameMsg, emailMsg string, stopAtFirst bool) error {
	fieldErrs := validators.ValidationErrors{}
	var sentinel error

	taken, err := users.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		fieldErrs.Add(validators.FieldUsername, usernameMsg)
		sentinel = ErrUsernameTaken
		if stopAtFirst {
			return fmt.Errorf("%w: %w", sentinel, fieldErrs)
		}
	}

	taken, err = users.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		fieldErrs.Add(validators.FieldEmail, emailMsg)
		if sentinel == nil {
			sentinel = ErrEmailTaken
		}
	}

	if sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, fieldErrs)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/crypto"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

// DefaultAvatarURL is shown for accounts without a custom photo.
const DefaultAvatarURL = "/static/img/avatar-default.svg"

const MsgCurrentPasswordIncorrect = "Current password is incorrect."

// avatarNameLength is the number of random hex characters in a stored
// avatar file name.
const avatarNameLength = 12

type profileService struct {
	transactor     store.Transactor
	userRepository store.UserRepository
	auditService   AuditService
	avatarStorage  store.AvatarStorage

	hasher    crypto.PasswordHasher
	validator validators.Validator
	uuid      *utils.UUIDGenerator

	avatarMaxBytes int64

	now    func() time.Time
	logger *logger.Logger
}

func NewProfileService(
	transactor store.Transactor,
	userRepository store.UserRepository,
	auditService AuditService,
	avatarStorage store.AvatarStorage,
	hasher crypto.PasswordHasher,
	validator validators.Validator,
	avatarMaxBytes int64,
	logger *logger.Logger,
) ProfileService {
	return &profileService{
		transactor:     transactor,
		userRepository: userRepository,
		auditService:   auditService,
		avatarStorage:  avatarStorage,
		hasher:         hasher,
		validator:      validator,
		uuid:           utils.NewUUIDGenerator(),
		avatarMaxBytes: avatarMaxBytes,
		now:            time.Now,
		logger:         logger,
	}
}

func (s *profileService) Home(ctx context.Context) (models.UserStats, error) {
	stats, err := s.userRepository.Stats(ctx, s.now().UTC())
	if err != nil {
		return models.UserStats{}, fmt.Errorf("error counting users: %w", err)
	}
	return stats, nil
}

// Directory lists every account, admins first.
func (s *profileService) Directory(ctx context.Context) (models.Directory, error) {
	users, err := s.userRepository.ListUsers(ctx, store.OrderDirectory, 0)
	if err != nil {
		return models.Directory{}, fmt.Errorf("error listing directory: %w", err)
	}

	directory := models.Directory{Users: users}
	for _, u := range users {
		if u.IsAdmin() {
			directory.AdminCount++
		}
	}
	directory.UserCount = len(users) - directory.AdminCount

	return directory, nil
}

// UpdateDetails saves the editable profile fields. Username and email
// conflicts with other accounts are reported together.
func (s *profileService) UpdateDetails(ctx context.Context, user models.User, request models.ProfileDetailsRequest) (models.User, error) {
	request.FullName = strings.TrimSpace(request.FullName)
	request.Username = strings.TrimSpace(request.Username)
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))
	request.Bio = strings.TrimSpace(request.Bio)

	if err := s.validator.Validate(ctx, request); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	var updated models.User
	err := s.transactor.InTx(ctx, func(ctx context.Context) error {
		if err := checkAvailable(ctx, s.userRepository, request.Username, request.Email, user.UserID, MsgUsernameInUse, MsgEmailRegistered, false); err != nil {
			return err
		}

		current, err := s.userRepository.FindUserByID(ctx, user.UserID)
		if err != nil {
			return err
		}

		current.FullName = optional(request.FullName)
		current.Username = request.Username
		current.Email = request.Email
		current.Bio = optional(request.Bio)
		current.UpdatedAt = s.now().UTC()

		if err = s.userRepository.UpdateUser(ctx, current); err != nil {
			return fmt.Errorf("error updating profile: %w", err)
		}
		if err = s.auditService.Record(ctx, models.ActionProfileUpdate, models.AuditSuccess, &current); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*profileService.UpdateDetails").Int64("user_id", user.UserID).Msg("profile update failed")
		return models.User{}, err
	}

	return updated, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *profileService) ChangePassword(ctx context.Context, user models.User, request models.PasswordChangeRequest) error {
	if err := s.validator.Validate(ctx, request); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	err := s.transactor.InTx(ctx, func(ctx context.Context) error {
		current, err := s.userRepository.FindUserByID(ctx, user.UserID)
		if err != nil {
			return err
		}

		if !s.hasher.Verify(request.CurrentPassword, current.PasswordHash) {
			return fmt.Errorf("%w: %w", ErrCurrentPasswordIncorrect,
				validators.ValidationErrors{validators.FieldCurrentPassword: MsgCurrentPasswordIncorrect})
		}

		hash, err := s.hasher.Hash(request.NewPassword)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHashingPassword, err)
		}

		current.PasswordHash = hash
		current.UpdatedAt = s.now().UTC()
		if err = s.userRepository.UpdateUser(ctx, current); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}

		return s.auditService.Record(ctx, models.ActionPasswordChange, models.AuditSuccess, &current)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*profileService.ChangePassword").Int64("user_id", user.UserID).Msg("password change failed")
		return err
	}

	return nil
}

// UpdateAvatar stores r as the new profile photo. The file is written before
// the account row changes and removed again if that change fails; the
// replaced photo is removed after commit.
func (s *profileService) UpdateAvatar(ctx context.Context, user models.User, upload models.AvatarUpload, r io.Reader) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, upload); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if s.avatarMaxBytes > 0 && upload.Size > s.avatarMaxBytes {
		return models.User{}, ErrAvatarTooLarge
	}

	ext, _ := validators.AvatarExtension(upload.Filename)
	name := fmt.Sprintf("user_%d_%s.%s", user.UserID, s.uuid.Random()[:avatarNameLength], ext)

	if err := s.avatarStorage.Save(ctx, name, upload.ContentType, r, upload.Size); err != nil {
		log.Err(err).Str("func", "*profileService.UpdateAvatar").Msg("error storing avatar")
		return models.User{}, fmt.Errorf("error storing avatar: %w", err)
	}

	var (
		updated  models.User
		previous *string
	)
	err := s.transactor.InTx(ctx, func(ctx context.Context) error {
		current, err := s.userRepository.FindUserByID(ctx, user.UserID)
		if err != nil {
			return err
		}

		previous = current.AvatarFilename
		current.AvatarFilename = &name
		current.UpdatedAt = s.now().UTC()
		if err = s.userRepository.UpdateUser(ctx, current); err != nil {
			return fmt.Errorf("error updating avatar: %w", err)
		}
		if err = s.auditService.Record(ctx, models.ActionAvatarUpdate, models.AuditSuccess, &current); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*profileService.UpdateAvatar").Int64("user_id", user.UserID).Msg("avatar update failed")
		removeAvatarFile(ctx, s.avatarStorage, &name)
		return models.User{}, err
	}

	removeAvatarFile(ctx, s.avatarStorage, previous)
	return updated, nil
}

// RemoveAvatar drops the custom photo, or returns ErrNoAvatar when there is
// none.
func (s *profileService) RemoveAvatar(ctx context.Context, user models.User) (models.User, error) {
	var (
		updated  models.User
		previous *string
	)
	err := s.transactor.InTx(ctx, func(ctx context.Context) error {
		current, err := s.userRepository.FindUserByID(ctx, user.UserID)
		if err != nil {
			return err
		}
		if current.AvatarFilename == nil || *current.AvatarFilename == "" {
			return ErrNoAvatar
		}

		previous = current.AvatarFilename
		current.AvatarFilename = nil
		current.UpdatedAt = s.now().UTC()
		if err = s.userRepository.UpdateUser(ctx, current); err != nil {
			return fmt.Errorf("error removing avatar: %w", err)
		}
		if err = s.auditService.Record(ctx, models.ActionAvatarRemove, models.AuditSuccess, &current); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	removeAvatarFile(ctx, s.avatarStorage, previous)
	return updated, nil
}

func (s *profileService) AvatarURL(ctx context.Context, user models.User) string {
	if user.AvatarFilename == nil || *user.AvatarFilename == "" {
		return DefaultAvatarURL
	}

	url, err := s.avatarStorage.URL(ctx, *user.AvatarFilename)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*profileService.AvatarURL").Msg("error resolving avatar url")
		return DefaultAvatarURL
	}
	return url
}

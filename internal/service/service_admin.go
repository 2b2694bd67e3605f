// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/crypto"
	"github.com/MKhiriev/go-login-portal/internal/lockout"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

// RecentUsersLimit is the number of accounts listed on the add-user page.
const RecentUsersLimit = 8

// Field messages for duplicates found on the admin add-user form.
const (
	MsgUsernameExists = "Username already exists."
	MsgEmailExists    = "Email already exists."
)

type adminService struct {
	transactor      store.Transactor
	userRepository  store.UserRepository
	auditRepository store.AuditRepository
	auditService    AuditService
	avatarStorage   store.AvatarStorage

	hasher    crypto.PasswordHasher
	policy    lockout.Policy
	validator validators.Validator

	now    func() time.Time
	logger *logger.Logger
}

func NewAdminService(
	transactor store.Transactor,
	userRepository store.UserRepository,
	auditRepository store.AuditRepository,
	auditService AuditService,
	avatarStorage store.AvatarStorage,
	hasher crypto.PasswordHasher,
	policy lockout.Policy,
	validator validators.Validator,
	logger *logger.Logger,
) AdminService {
	return &adminService{
		transactor:      transactor,
		userRepository:  userRepository,
		auditRepository: auditRepository,
		auditService:    auditService,
		avatarStorage:   avatarStorage,
		hasher:          hasher,
		policy:          policy,
		validator:       validator,
		now:             time.Now,
		logger:          logger,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	users, err := s.userRepository.ListUsers(ctx, store.OrderNewest, 0)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("error listing users: %w", err)
	}

	stats, err := s.userRepository.Stats(ctx, s.now().UTC())
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("error counting users: %w", err)
	}

	return models.Dashboard{Users: users, Stats: stats}, nil
}

func (s *adminService) RecentUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepository.ListUsers(ctx, store.OrderNewest, RecentUsersLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing recent users: %w", err)
	}
	return users, nil
}

// CreateUser adds an active account with the chosen role on behalf of actor.
func (s *adminService) CreateUser(ctx context.Context, actor models.User, request models.AdminCreateUserRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	request.Username = strings.TrimSpace(request.Username)
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))
	request.FullName = strings.TrimSpace(request.FullName)

	if err := s.validator.Validate(ctx, request); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	role, ok := models.ParseRole(request.Role)
	if !ok {
		return models.User{}, ErrInvalidRole
	}

	var created models.User
	err := s.transactor.InTx(ctx, func(ctx context.Context) error {
		if err := checkAvailable(ctx, s.userRepository, request.Username, request.Email, 0, MsgUsernameExists, MsgEmailExists, true); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(request.Password)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHashingPassword, err)
		}

		now := s.now().UTC()
		user, err := s.userRepository.CreateUser(ctx, models.User{
			Username:     request.Username,
			Email:        request.Email,
			FullName:     optional(request.FullName),
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("user creation ended with error: %w", err)
		}

		action := models.TargetAction(models.ActionAdminCreateUser, user.UserID)
		if err = s.auditService.Record(ctx, action, models.AuditSuccess, &actor); err != nil {
			return err
		}

		created = user
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*adminService.CreateUser").Int64("actor_id", actor.UserID).Msg("error creating user")
		return models.User{}, err
	}

	log.Info().Int64("actor_id", actor.UserID).Int64("user_id", created.UserID).Msg("user created by admin")
	return created, nil
}

// ChangeRole sets the role of targetID. An admin cannot drop their own
// admin role and the last admin cannot be demoted.
func (s *adminService) ChangeRole(ctx context.Context, actor models.User, targetID int64, role string) error {
	return s.transactor.InTx(ctx, func(ctx context.Context) error {
		target, err := s.userRepository.FindUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		newRole, ok := models.ParseRole(role)
		if !ok {
			return ErrInvalidRole
		}
		if target.UserID == actor.UserID && newRole != models.RoleAdmin {
			return ErrSelfRoleRemoval
		}
		if target.IsAdmin() && newRole == models.RoleUser {
			if err = s.requireAnotherAdmin(ctx, ErrLastAdminDemotion); err != nil {
				return err
			}
		}

		target.Role = newRole
		target.UpdatedAt = s.now().UTC()
		if err = s.userRepository.UpdateUser(ctx, target); err != nil {
			return fmt.Errorf("error updating role: %w", err)
		}

		return s.auditService.Record(ctx, models.TargetAction(models.ActionRoleChange, target.UserID), models.AuditSuccess, &actor)
	})
}

// SetActive activates or deactivates targetID. Deactivation also clears any
// lockout state.
func (s *adminService) SetActive(ctx context.Context, actor models.User, targetID int64, active bool) error {
	return s.transactor.InTx(ctx, func(ctx context.Context) error {
		target, err := s.userRepository.FindUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		if !active {
			if target.UserID == actor.UserID {
				return ErrSelfDeactivation
			}
			if target.IsAdmin() {
				if err = s.requireAnotherAdmin(ctx, ErrLastAdminDeactivation); err != nil {
					return err
				}
			}
		}

		target.IsActive = active
		action := models.ActionActivate
		if !active {
			action = models.ActionDeactivate
			s.policy.Clear(&target)
		}
		target.UpdatedAt = s.now().UTC()

		if err = s.userRepository.UpdateUser(ctx, target); err != nil {
			return fmt.Errorf("error updating status: %w", err)
		}

		return s.auditService.Record(ctx, models.TargetAction(action, target.UserID), models.AuditSuccess, &actor)
	})
}

func (s *adminService) Unlock(ctx context.Context, actor models.User, targetID int64) error {
	return s.transactor.InTx(ctx, func(ctx context.Context) error {
		target, err := s.userRepository.FindUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		s.policy.Clear(&target)
		target.UpdatedAt = s.now().UTC()
		if err = s.userRepository.UpdateUser(ctx, target); err != nil {
			return fmt.Errorf("error unlocking user: %w", err)
		}

		return s.auditService.Record(ctx, models.TargetAction(models.ActionUnlock, target.UserID), models.AuditSuccess, &actor)
	})
}

// Delete removes targetID. Its audit history is kept with the owner
// detached. A self-deletion is audited without an actor since the actor no
// longer exists.
func (s *adminService) Delete(ctx context.Context, actor models.User, targetID int64) (models.DeleteResult, error) {
	log := logger.FromContext(ctx)

	var (
		result models.DeleteResult
		avatar *string
	)
	err := s.transactor.InTx(ctx, func(ctx context.Context) error {
		target, err := s.userRepository.FindUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		if target.IsAdmin() {
			if err = s.requireAnotherAdmin(ctx, ErrLastAdminDeletion); err != nil {
				return err
			}
		}

		if err = s.auditRepository.DetachUser(ctx, target.UserID); err != nil {
			return fmt.Errorf("error detaching audit events: %w", err)
		}

		if err = s.userRepository.DeleteUser(ctx, target.UserID); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}

		selfDelete := target.UserID == actor.UserID
		if selfDelete {
			err = s.auditService.Record(ctx, models.TargetAction(models.ActionSelfDelete, target.UserID), models.AuditSuccess, nil)
		} else {
			err = s.auditService.Record(ctx, models.TargetAction(models.ActionDelete, target.UserID), models.AuditSuccess, &actor)
		}
		if err != nil {
			return err
		}

		result = models.DeleteResult{Username: target.Username, SelfDeleted: selfDelete}
		avatar = target.AvatarFilename
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*adminService.Delete").Int64("target_id", targetID).Msg("error deleting user")
		return models.DeleteResult{}, err
	}

	removeAvatarFile(ctx, s.avatarStorage, avatar)

	log.Info().Int64("actor_id", actor.UserID).Int64("target_id", targetID).Msg("user deleted")
	return result, nil
}

func (s *adminService) AuditLog(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	return s.auditService.Recent(ctx, limit)
}

// requireAnotherAdmin fails with sentinel when at most one admin exists.
func (s *adminService) requireAnotherAdmin(ctx context.Context, sentinel error) error {
	admins, err := s.userRepository.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("error counting admins: %w", err)
	}
	if admins <= 1 {
		return sentinel
	}
	return nil
}

// removeAvatarFile deletes a stored photo after the owning change committed.
// Failures are only logged.
func removeAvatarFile(ctx context.Context, storage store.AvatarStorage, name *string) {
	if name == nil || *name == "" || storage == nil {
		return
	}
	if err := storage.Delete(ctx, *name); err != nil {
		logger.FromContext(ctx).Err(err).Str("avatar", *name).Msg("error removing avatar file")
	}
}

// optional maps an empty string to nil.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

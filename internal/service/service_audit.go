package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/models"
)

type auditService struct {
	auditRepository store.AuditRepository
	now             func() time.Time
	logger          *logger.Logger
}

func NewAuditService(auditRepository store.AuditRepository, logger *logger.Logger) AuditService {
	return &auditService{
		auditRepository: auditRepository,
		now:             time.Now,
		logger:          logger,
	}
}

// Record stores an event for actor (nil for anonymous) with the client
// address and user agent found in ctx.
func (s *auditService) Record(ctx context.Context, action string, status models.AuditStatus, actor *models.User) error {
	client := utils.ClientInfoFromContext(ctx)

	event := models.AuditEvent{
		Action:    action,
		Status:    status,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: s.now().UTC(),
	}
	if actor != nil && actor.UserID > 0 {
		userID := actor.UserID
		event.UserID = &userID
	}

	if err := s.auditRepository.Append(ctx, event); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*auditService.Record").
			Str("action", action).
			Msg("error recording audit event")
		return fmt.Errorf("error recording audit event %q: %w", action, err)
	}

	logger.FromContext(ctx).Info().
		Str("action", action).
		Str("status", string(status)).
		Msg("audit event recorded")
	return nil
}

func (s *auditService) Recent(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	events, err := s.auditRepository.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing audit events: %w", err)
	}
	return events, nil
}

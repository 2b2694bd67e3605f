package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/models"
)

type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] writing to audit_logs.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores event. Client supplied text is cut to the column bounds
// ([models.MaxIPAddressLength], [models.MaxUserAgentLength]) with invalid
// UTF-8 removed.
func (r *auditRepository) Append(ctx context.Context, event models.AuditEvent) error {
	log := logger.FromContext(ctx)

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.db.builder.Insert(auditTable).
		Columns("user_id", "action", "status", "ip_address", "user_agent", "created_at").
		Values(
			event.UserID,
			event.Action,
			string(event.Status),
			nullString(utils.TruncateRunes(event.IPAddress, models.MaxIPAddressLength)),
			nullString(utils.TruncateRunes(event.UserAgent, models.MaxUserAgentLength)),
			event.CreatedAt,
		).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.Append").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*auditRepository.Append").Str("action", event.Action).Msg("error appending audit event")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *auditRepository) DetachUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Update(auditTable).
		Set("user_id", nil).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.DetachUser").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*auditRepository.DetachUser").Msg("error detaching audit events")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// List returns the most recent events first.
func (r *auditRepository) List(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	builder := r.db.builder.Select(auditColumns...).
		From(auditTable).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.List").Msg("error executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	events := make([]models.AuditEvent, 0)
	for rows.Next() {
		event, err := scanAuditEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return events, nil
}


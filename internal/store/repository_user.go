package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/models"
)

// userRepository implements [UserRepository] on top of [DB]. Queries run in
// the transaction carried by the context when there is one.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser inserts user and returns it with the assigned id.
// A username or email already taken in any letter case yields [ErrConflict].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	query, args, err := r.db.builder.Insert(usersTable).
		Columns(
			"username",
			"email",
			"full_name",
			"bio",
			"avatar_filename",
			"password_hash",
			"role",
			"is_active",
			"failed_attempts",
			"created_at",
			"updated_at",
		).
		Values(
			user.Username,
			user.Email,
			user.FullName,
			user.Bio,
			user.AvatarFilename,
			user.PasswordHash,
			string(user.Role),
			user.IsActive,
			user.FailedAttempts,
			user.CreatedAt,
			user.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error building query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err = r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&user.UserID); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		return models.User{}, r.db.mapWriteError(err)
	}

	return user, nil
}

// FindUserByID returns [ErrNoUserWasFound] when no account has userID.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByID", r.db.selectUsers().Where(sq.Eq{"id": userID}))
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := r.db.selectUsers().Where(sq.Expr("LOWER(email) = LOWER(?)", email))
	return r.findOne(ctx, "*userRepository.FindUserByEmail", r.db.lockRows(ctx, query))
}

func (r *userRepository) findOne(ctx context.Context, funcName string, builder sq.SelectBuilder) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error building query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	user, err := scanUser(r.db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, "*userRepository.ExistsByUsername", r.db.existsQuery("username", username, excludeID))
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "*userRepository.ExistsByEmail", r.db.existsQuery("email", email, excludeID))
}

func (r *userRepository) exists(ctx context.Context, funcName string, builder sq.SelectBuilder) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error building query")
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var found int
	err = r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error executing query")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return true, nil
}

// UpdateUser writes every mutable column of user and stamps updated_at.
func (r *userRepository) UpdateUser(ctx context.Context, user models.User) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Update(usersTable).
		SetMap(map[string]any{
			"username":                    user.Username,
			"email":                       user.Email,
			"full_name":                   user.FullName,
			"bio":                         user.Bio,
			"avatar_filename":             user.AvatarFilename,
			"password_hash":               user.PasswordHash,
			"role":                        string(user.Role),
			"is_active":                   user.IsActive,
			"failed_attempts":             user.FailedAttempts,
			"failed_attempt_window_start": user.FailedAttemptWindowStart,
			"locked_until":                user.LockedUntil,
			"last_login_at":               user.LastLoginAt,
			"updated_at":                  time.Now().UTC(),
		}).
		Where(sq.Eq{"id": user.UserID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingOne(ctx, "*userRepository.UpdateUser", query, args)
}

func (r *userRepository) DeleteUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Delete(usersTable).Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteUser").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingOne(ctx, "*userRepository.DeleteUser", query, args)
}

func (r *userRepository) execAffectingOne(ctx context.Context, funcName, query string, args []any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error executing statement")
		return r.db.mapWriteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

func (r *userRepository) CountAdmins(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select("COUNT(*)").
		From(usersTable).
		Where(sq.Eq{"role": string(models.RoleAdmin)}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CountAdmins").Msg("error building query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).Str("func", "*userRepository.CountAdmins").Msg("error counting admins")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

// ListUsers returns accounts in the given order. A non-positive limit
// returns all of them.
func (r *userRepository) ListUsers(ctx context.Context, order UserOrder, limit int) ([]models.User, error) {
	log := logger.FromContext(ctx)

	builder := r.db.selectUsers().OrderBy(orderBy(order)...)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error scanning row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

// Stats counts accounts. Locked means locked_until is later than now.
func (r *userRepository) Stats(ctx context.Context, now time.Time) (models.UserStats, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select(
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0)",
	).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN locked_until IS NOT NULL AND locked_until > ? THEN 1 ELSE 0 END), 0)", now.UTC())).
		From(usersTable).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Stats").Msg("error building query")
		return models.UserStats{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var stats models.UserStats
	err = r.db.conn(ctx).QueryRowContext(ctx, query, args...).
		Scan(&stats.Total, &stats.Admins, &stats.Active, &stats.Locked)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Stats").Msg("error collecting stats")
		return models.UserStats{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	stats.Users = stats.Total - stats.Admins

	return stats, nil
}

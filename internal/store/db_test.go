package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── InTx ──────────────────────────────────────────────────────────────────────

func TestInTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newTestDB(t, config.DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewUserRepository(db, db.logger)
	err := db.InTx(context.Background(), func(ctx context.Context) error {
		return repo.DeleteUser(ctx, 1)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, mock := newTestDB(t, config.DriverPostgres)
	errBusiness := errors.New("last admin")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.InTx(context.Background(), func(ctx context.Context) error {
		return errBusiness
	})

	assert.ErrorIs(t, err, errBusiness)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RetriesSerializationFailure(t *testing.T) {
	db, mock := newTestDB(t, config.DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := db.InTx(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_GivesUpAfterMaxAttempts(t *testing.T) {
	db, mock := newTestDB(t, config.DriverSQLite)
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}

	for range maxTxAttempts {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	calls := 0
	err := db.InTx(context.Background(), func(ctx context.Context) error {
		calls++
		return busy
	})

	require.Error(t, err)
	assert.Equal(t, maxTxAttempts, calls)
}

func TestInTx_NestedCallJoinsOuterTx(t *testing.T) {
	db, mock := newTestDB(t, config.DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := db.InTx(context.Background(), func(ctx context.Context) error {
		return db.InTx(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginFailure(t *testing.T) {
	db, mock := newTestDB(t, config.DriverPostgres)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := db.InTx(context.Background(), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

// ── error classification ──────────────────────────────────────────────────────

func TestPostgresErrorClassifier(t *testing.T) {
	c := NewPostgresErrorClassifier()

	tests := []struct {
		code string
		want ErrorClassification
	}{
		{pgerrcode.SerializationFailure, Retryable},
		{pgerrcode.DeadlockDetected, Retryable},
		{pgerrcode.ConnectionFailure, Retryable},
		{pgerrcode.CannotConnectNow, Retryable},
		{pgerrcode.UniqueViolation, NonRetryable},
		{pgerrcode.SyntaxError, NonRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(&pgconn.PgError{Code: tt.code}))
		})
	}

	assert.Equal(t, NonRetryable, c.Classify(nil))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
}

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.Equal(t, NonRetryable, c.Classify(sqliteUniqueError()))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.True(t, isUniqueViolation(sqliteUniqueError()))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}

// ── connection helpers ────────────────────────────────────────────────────────

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "portal.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("portal.db"))
	assert.Equal(t, "file:portal.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file:portal.db?mode=rwc"))
}

func TestNewDB_PlaceholderFormat(t *testing.T) {
	pg, _ := newTestDB(t, config.DriverPostgres)
	lite, _ := newTestDB(t, config.DriverSQLite)

	pgSQL, _, err := pg.selectUsers().Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	liteSQL, _, err := lite.selectUsers().Where("id = ?", 1).ToSql()
	require.NoError(t, err)

	assert.Contains(t, pgSQL, "id = $1")
	assert.Contains(t, liteSQL, "id = ?")
	assert.Equal(t, config.DriverSQLite, lite.Driver())
}

func TestNewStorages_UnsupportedDriver(t *testing.T) {
	_, err := NewStorages(context.Background(), config.Storage{DB: config.DB{Driver: "mysql"}}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

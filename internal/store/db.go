// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/migrations"
)

// maxTxAttempts bounds how many times a transaction is replayed after a
// retryable failure (serialization conflict, deadlock, busy database).
const maxTxAttempts = 3

// DB wraps the connection pool with the dialect specific pieces: the
// placeholder format, the error classifier and the row locking clause.
type DB struct {
	*sql.DB
	driver             string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// querier is the subset of *sql.DB and *sql.Tx used by repositories.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txCtxKey struct{}

// NewDB wraps an open connection for the given driver.
func NewDB(conn *sql.DB, driver string, log *logger.Logger) *DB {
	db := &DB{DB: conn, driver: driver, logger: log}

	switch driver {
	case config.DriverSQLite:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		db.errorClassificator = NewSQLiteErrorClassifier()
	default:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		db.errorClassificator = NewPostgresErrorClassifier()
	}

	return db
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies the embedded schema for the connected dialect.
func (db *DB) Migrate() error {
	dialect := migrations.DialectPostgres
	if db.driver == config.DriverSQLite {
		dialect = migrations.DialectSQLite
	}
	return migrations.Migrate(db.DB, dialect)
}

// InTx runs fn inside a transaction carried by the context passed to fn.
// Repository calls made with that context join the transaction. A nested
// call reuses the outer transaction.
//
// PostgreSQL transactions run at SERIALIZABLE isolation. A failure the
// classifier marks as retryable replays fn from scratch, so fn must not have
// side effects outside the database.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	log := logger.FromContext(ctx)

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.runTx(ctx, fn)
		if err == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}
		log.Warn().Err(err).
			Str("func", "*DB.InTx").
			Int("attempt", attempt).
			Msg("retrying transaction")
	}

	return err
}

func (db *DB) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, db.txOptions())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err = fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (db *DB) txOptions() *sql.TxOptions {
	if db.driver == config.DriverSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// conn returns the transaction carried by ctx, or the pool.
func (db *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// lockRows appends a row lock to a select that runs inside a PostgreSQL
// transaction. SQLite serializes writers on its own.
func (db *DB) lockRows(ctx context.Context, query sq.SelectBuilder) sq.SelectBuilder {
	if db.driver == config.DriverSQLite {
		return query
	}
	if _, ok := ctx.Value(txCtxKey{}).(*sql.Tx); !ok {
		return query
	}
	return query.Suffix("FOR UPDATE")
}

// mapWriteError converts driver constraint errors into domain errors.
func (db *DB) mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoUserWasFound
	}
	return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
}

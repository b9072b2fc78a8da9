package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so a statement can
// run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgreSQL error codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
)

// ErrDuplicateOrderNumber is returned when a generated order number collides.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// ErrExceedsStock is returned by CartRepository.Merge when the resulting line
// quantity would exceed the product's stock. Nothing is written.
var ErrExceedsStock = errors.New("cart quantity exceeds stock")

// IsUniqueViolation reports whether err is a unique constraint failure,
// optionally restricted to one constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsConcurrencyFailure reports whether err is a lost race the caller may
// resubmit: serialization failure, deadlock, or a stock CHECK violation.
func IsConcurrencyFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgCheckViolation:
		return true
	}
	return false
}

// IsMissingUser reports whether err is a foreign key failure on a user_id
// column, i.e. the referenced account no longer exists.
func IsMissingUser(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return false
	}
	return strings.HasSuffix(pgErr.ConstraintName, "_user_id_fkey")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

// Package postgres provides PostgreSQL implementations of directory
// repositories.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// txKey carries the active pgx.Tx through the context of a unit of work.
type txKey struct{}

// querier abstracts query execution so repository methods work the same
// against the pool and inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// poolIface is the subset of *pgxpool.Pool the repositories need.
// pgxmock's PgxPoolIface satisfies it, which keeps unit tests off a live
// database.
type poolIface interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// engine returns the transaction stored in ctx when there is one,
// otherwise the pool.
func engine(ctx context.Context, pool poolIface) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

package repository

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryable is the subset of pgx shared by the pool and an open transaction
type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// connResolver hands out the transaction carried by ctx, or the pool when none is open
type connResolver struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func newConnResolver(pool *pgxpool.Pool) connResolver {
	return connResolver{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

func (c connResolver) conn(ctx context.Context) queryable {
	return c.getter.DefaultTrOrDB(ctx, c.pool)
}

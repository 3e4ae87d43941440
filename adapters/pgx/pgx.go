// Package pgx implements the user directory contract on top of a
// PostgreSQL pool. It is only ever attached by the persistence binder in
// the unrestricted runtime.
package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/lborres/veil/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.Directory = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// Loader returns a core.DirectoryLoader that connects a pool and verifies
// it before handing the adapter to the binder. A failed ping surfaces as
// a load failure, so the binder degrades to unbound instead of attaching
// a dead adapter.
func Loader(connString string) core.DirectoryLoader {
	return func(ctx context.Context) (core.Directory, error) {
		pool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return nil, oops.Code("DIRECTORY_LOAD_FAILED").
				With("operation", "pgxpool.New").
				Wrap(err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, oops.Code("DIRECTORY_LOAD_FAILED").
				With("operation", "pool.Ping").
				Wrap(err)
		}
		return New(pool), nil
	}
}

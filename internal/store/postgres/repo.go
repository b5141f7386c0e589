package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo bundles the Postgres-backed repositories over one pool.
type Repo struct {
	db           *pgxpool.Pool
	Applications *applicationRepository
	Bookings     *bookingRepository
	Users        *userRepository
	Events       *eventRepository
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db:           db,
		Applications: NewApplicationRepository(db),
		Bookings:     NewBookingRepository(db),
		Users:        NewUserRepository(db),
		Events:       NewEventRepository(db),
	}
}

// DB exposes the pool for health checks.
func (r *Repo) DB() *pgxpool.Pool { return r.db }

// withTx runs fn in a read-committed transaction, committing when fn succeeds.
func withTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

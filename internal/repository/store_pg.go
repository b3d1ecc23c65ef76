package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// escrowLockKey serializes every escrow transaction through one advisory lock.
const escrowLockKey int64 = 0x657363726f77

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, escrowLockKey); err != nil {
		return fmt.Errorf("acquire escrow lock: %w", err)
	}
	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type pgRepos struct {
	flights  FlightRepository
	bookings BookingRepository
	ledger   LedgerRepository
	events   EventRepository
}

// NewRepositories binds all repositories to the same querier.
func NewRepositories(db Querier) Repositories {
	return &pgRepos{
		flights:  NewFlightRepository(db),
		bookings: NewBookingRepository(db),
		ledger:   NewLedgerRepository(db),
		events:   NewEventRepository(db),
	}
}

func (r *pgRepos) Flights() FlightRepository   { return r.flights }
func (r *pgRepos) Bookings() BookingRepository { return r.bookings }
func (r *pgRepos) Ledger() LedgerRepository    { return r.ledger }
func (r *pgRepos) Events() EventRepository     { return r.events }

var _ Store = (*PGStore)(nil)

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGLedgerRepository struct {
	db Querier
}

func NewLedgerRepository(db Querier) LedgerRepository {
	return &PGLedgerRepository{db: db}
}

func (r *PGLedgerRepository) Balance(ctx context.Context, account domain.AccountID) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance_cents FROM accounts WHERE id=$1`, string(account)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *PGLedgerRepository) Transfer(ctx context.Context, t *domain.Transfer) error {
	if t.AmountCents <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", domain.ErrArgument)
	}
	if t.From == t.To {
		return fmt.Errorf("%w: transfer to the same account", domain.ErrArgument)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.From != domain.MintAccount {
		res, err := r.db.Exec(ctx, `UPDATE accounts SET balance_cents = balance_cents - $2 WHERE id=$1 AND balance_cents >= $2`, string(t.From), t.AmountCents)
		if err != nil {
			return fmt.Errorf("debit %s: %w", t.From, err)
		}
		if res.RowsAffected() == 0 {
			return fmt.Errorf("%w: insufficient balance on %s", domain.ErrFunds, t.From)
		}
	}

	if _, err := r.db.Exec(ctx, `INSERT INTO accounts (id, balance_cents) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance_cents = accounts.balance_cents + EXCLUDED.balance_cents`, string(t.To), t.AmountCents); err != nil {
		return fmt.Errorf("credit %s: %w", t.To, err)
	}

	_, err := r.db.Exec(ctx, `INSERT INTO transfers (id, from_account, to_account, amount_cents, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID.String(), string(t.From), string(t.To), t.AmountCents, t.Reason, t.CreatedAt)
	return err
}

func (r *PGLedgerRepository) History(ctx context.Context, account domain.AccountID) ([]domain.Transfer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, from_account, to_account, amount_cents, reason, created_at FROM transfers
		WHERE from_account=$1 OR to_account=$1 ORDER BY created_at, id`, string(account))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]domain.Transfer, 0)
	for rows.Next() {
		var (
			t        domain.Transfer
			id       string
			from, to string
		)
		if err := rows.Scan(&id, &from, &to, &t.AmountCents, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse transfer id %q: %w", id, err)
		}
		t.From, t.To = domain.AccountID(from), domain.AccountID(to)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

var _ LedgerRepository = (*PGLedgerRepository)(nil)

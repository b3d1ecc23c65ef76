// Package accounts exposes operator-level ledger access used to seed and inspect
// balances.
package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"go.uber.org/zap"
)

type AccountService struct {
	log   *zap.Logger
	store repository.Store
}

func NewAccountService(log *zap.Logger, store repository.Store) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{log: log, store: store}
}

// Deposit credits account with newly minted funds.
func (s *AccountService) Deposit(ctx context.Context, account domain.AccountID, cents int64) (int64, error) {
	if account == "" || account == domain.MintAccount {
		return 0, fmt.Errorf("%w: invalid account %q", domain.ErrArgument, account)
	}
	if cents <= 0 {
		return 0, fmt.Errorf("%w: deposit must be positive", domain.ErrArgument)
	}

	var balance int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Ledger().Transfer(ctx, &domain.Transfer{
			From:        domain.MintAccount,
			To:          account,
			AmountCents: cents,
			Reason:      "deposit",
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
		var err error
		balance, err = repos.Ledger().Balance(ctx, account)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("deposit to %s: %w", account, err)
	}
	s.log.Info("deposit", zap.String("account", string(account)), zap.Int64("cents", cents), zap.Int64("balance", balance))
	return balance, nil
}

func (s *AccountService) Balance(ctx context.Context, account domain.AccountID) (int64, error) {
	var balance int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		balance, err = repos.Ledger().Balance(ctx, account)
		return err
	})
	return balance, err
}

func (s *AccountService) History(ctx context.Context, account domain.AccountID) ([]domain.Transfer, error) {
	var history []domain.Transfer
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		history, err = repos.Ledger().History(ctx, account)
		return err
	})
	return history, err
}

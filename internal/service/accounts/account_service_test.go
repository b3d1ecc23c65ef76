package accounts

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Deposit(t *testing.T) {
	service := NewAccountService(nil, repository.NewMemoryStore())
	ctx := context.Background()

	balance, err := service.Deposit(ctx, "alice", 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	balance, err = service.Deposit(ctx, "alice", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)

	got, err := service.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got)

	history, err := service.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.MintAccount, history[0].From)
	assert.Equal(t, "deposit", history[0].Reason)
}

func TestAccountService_Deposit_Rejections(t *testing.T) {
	service := NewAccountService(nil, repository.NewMemoryStore())
	ctx := context.Background()

	_, err := service.Deposit(ctx, "", 100)
	assert.ErrorIs(t, err, domain.ErrArgument)

	_, err = service.Deposit(ctx, domain.MintAccount, 100)
	assert.ErrorIs(t, err, domain.ErrArgument)

	_, err = service.Deposit(ctx, "alice", 0)
	assert.ErrorIs(t, err, domain.ErrArgument)
}

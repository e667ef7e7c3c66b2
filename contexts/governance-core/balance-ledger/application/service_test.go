package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"polity/contexts/governance-core/balance-ledger/adapters/memory"
	domainerrors "polity/contexts/governance-core/balance-ledger/domain/errors"
)

func newService(managers ...string) (Service, *memory.Store) {
	store := memory.NewStore(managers...)
	return Service{
		Accounts: store,
		Managers: store,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
	}, store
}

func TestSetComplianceStatusRequiresManager(t *testing.T) {
	service, _ := newService("manager")

	err := service.SetComplianceStatus(context.Background(), "mallory", "alice", true)
	require.ErrorIs(t, err, domainerrors.ErrNotComplianceManager)

	require.NoError(t, service.SetComplianceStatus(context.Background(), "manager", "alice", true))
	account, found, err := service.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, account.CompliancePassed)
}

func TestMintCreditsAccount(t *testing.T) {
	service, _ := newService("manager")

	_, err := service.Mint(context.Background(), "mallory", "alice", 100)
	require.ErrorIs(t, err, domainerrors.ErrNotComplianceManager)

	_, err = service.Mint(context.Background(), "manager", "alice", 0)
	require.ErrorIs(t, err, domainerrors.ErrInvalidAmount)

	account, err := service.Mint(context.Background(), "manager", "alice", 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), account.Balance)

	balance, err := service.BalanceOf(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)
}

func TestBalanceOfMissingAccountIsZero(t *testing.T) {
	service, _ := newService("manager")

	balance, err := service.BalanceOf(context.Background(), "nobody")
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestTransferRequiresComplianceOnBothSides(t *testing.T) {
	service, _ := newService("manager")
	ctx := context.Background()

	_, err := service.Mint(ctx, "manager", "alice", 100)
	require.NoError(t, err)
	_, err = service.Mint(ctx, "manager", "bob", 10)
	require.NoError(t, err)

	// Neither side compliant yet.
	err = service.Transfer(ctx, "alice", "bob", 30)
	require.ErrorIs(t, err, domainerrors.ErrNotCompliant)

	require.NoError(t, service.SetComplianceStatus(ctx, "manager", "alice", true))
	err = service.Transfer(ctx, "alice", "bob", 30)
	require.ErrorIs(t, err, domainerrors.ErrNotCompliant)

	require.NoError(t, service.SetComplianceStatus(ctx, "manager", "bob", true))
	require.NoError(t, service.Transfer(ctx, "alice", "bob", 30))

	aliceBalance, err := service.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(70), aliceBalance)
	bobBalance, err := service.BalanceOf(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, uint64(40), bobBalance)
}

func TestTransferInsufficientBalance(t *testing.T) {
	service, _ := newService("manager")
	ctx := context.Background()

	_, err := service.Mint(ctx, "manager", "alice", 20)
	require.NoError(t, err)
	require.NoError(t, service.SetComplianceStatus(ctx, "manager", "alice", true))
	require.NoError(t, service.SetComplianceStatus(ctx, "manager", "bob", true))

	err = service.Transfer(ctx, "alice", "bob", 30)
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	balance, err := service.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(20), balance)
}

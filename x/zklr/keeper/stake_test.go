package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

func TestStake(t *testing.T) {
	k, ctx, bank := keepertest.InitializedKeeper(t)
	addr := keepertest.TestAddr(1)
	keepertest.FundedTrader(t, k, ctx, bank, addr, 5_000)

	staked, err := k.Stake(ctx, addr, 1_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), staked)

	ctx = advance(ctx, 10)
	staked, err = k.Stake(ctx, addr, 500)
	require.NoError(t, err)
	require.Equal(t, uint64(1_500), staked)

	acct := trader(t, k, ctx, addr)
	require.Equal(t, uint64(1_500), acct.StakedAmount)
	require.Equal(t, ctx.BlockTime().Unix(), acct.LastStakeTimestamp)
	require.Equal(t, types.StakedUnverified{Stake: 1_500}, acct.Status(ctx.BlockTime().Unix()))
	require.Equal(t, uint64(1_500), global(t, k, ctx).TotalStaked)

	require.True(t, bank.Balance(ctx, addr).Equal(sdkInt(3_500)))
	require.True(t, bank.VaultBalance(ctx, types.StakeVaultName).Equal(sdkInt(1_500)))
	require.True(t, hasEvent(ctx, types.EventTypeTraderStaked))
	requireInvariants(t, k, ctx)
}

func TestStake_FailuresLeaveStateUnchanged(t *testing.T) {
	k, ctx, bank := keepertest.InitializedKeeper(t)
	addr := keepertest.TestAddr(1)
	keepertest.FundedTrader(t, k, ctx, bank, addr, 100)

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := k.Stake(ctx, addr, 101)
		require.ErrorIs(t, err, types.ErrTransferFailed)
		require.Zero(t, trader(t, k, ctx, addr).StakedAmount)
		require.Zero(t, global(t, k, ctx).TotalStaked)
	})

	t.Run("ledger failure", func(t *testing.T) {
		bank.FailTransfers = true
		defer func() { bank.FailTransfers = false }()

		_, err := k.Stake(ctx, addr, 50)
		require.ErrorIs(t, err, types.ErrTransferFailed)
		require.Zero(t, trader(t, k, ctx, addr).StakedAmount)
		require.Zero(t, trader(t, k, ctx, addr).LastStakeTimestamp)
		require.True(t, bank.Balance(ctx, addr).Equal(sdkInt(100)))
	})

	t.Run("aggregate overflow", func(t *testing.T) {
		gs := global(t, k, ctx)
		gs.TotalStaked = ^uint64(0) - 10
		require.NoError(t, k.SetGlobalState(ctx, gs))

		_, err := k.Stake(ctx, addr, 50)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
		require.Zero(t, trader(t, k, ctx, addr).StakedAmount)
		require.True(t, bank.Balance(ctx, addr).Equal(sdkInt(100)))
	})

	t.Run("unknown trader", func(t *testing.T) {
		_, err := k.Stake(ctx, keepertest.TestAddr(42), 1)
		require.ErrorIs(t, err, types.ErrAccountNotFound)
	})
}

func TestUnstake(t *testing.T) {
	k, ctx, bank := keepertest.InitializedKeeper(t)
	addr := keepertest.TestAddr(1)
	stakedTrader(t, k, ctx, bank, addr, 1_000)

	t.Run("before lockup", func(t *testing.T) {
		err := k.Unstake(advance(ctx, 3_599), addr, 100)
		require.ErrorIs(t, err, types.ErrLockupPeriodNotElapsed)
		require.Equal(t, uint64(1_000), trader(t, k, ctx, addr).StakedAmount)
	})

	ctx = advance(ctx, 3_600)

	t.Run("more than staked", func(t *testing.T) {
		err := k.Unstake(ctx, addr, 1_001)
		require.ErrorIs(t, err, types.ErrInsufficientStake)
	})

	t.Run("exactly at the lockup boundary", func(t *testing.T) {
		require.NoError(t, k.Unstake(ctx, addr, 400))
		require.Equal(t, uint64(600), trader(t, k, ctx, addr).StakedAmount)
		require.Equal(t, uint64(600), global(t, k, ctx).TotalStaked)
		require.True(t, bank.Balance(ctx, addr).Equal(sdkInt(400)))
		require.True(t, bank.VaultBalance(ctx, types.StakeVaultName).Equal(sdkInt(600)))
		require.True(t, hasEvent(ctx, types.EventTypeTraderUnstaked))
	})

	t.Run("ledger failure", func(t *testing.T) {
		bank.FailTransfers = true
		defer func() { bank.FailTransfers = false }()

		require.ErrorIs(t, k.Unstake(ctx, addr, 100), types.ErrTransferFailed)
		require.Equal(t, uint64(600), trader(t, k, ctx, addr).StakedAmount)
		require.Equal(t, uint64(600), global(t, k, ctx).TotalStaked)
	})

	t.Run("restaking restarts the lockup", func(t *testing.T) {
		bank.Fund(t, ctx, addr, 10)
		_, err := k.Stake(ctx, addr, 10)
		require.NoError(t, err)
		require.ErrorIs(t, k.Unstake(ctx, addr, 10), types.ErrLockupPeriodNotElapsed)
	})

	requireInvariants(t, k, ctx)
}

package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

func TestProvideLiquidity(t *testing.T) {
	k, ctx, bank := keepertest.InitializedKeeper(t)
	priority := keepertest.TestAddr(1)
	regular := keepertest.TestAddr(2)
	keepertest.FundedProvider(t, k, ctx, bank, priority, true, 5_000)
	keepertest.FundedProvider(t, k, ctx, bank, regular, false, 5_000)

	t.Run("locked from account open", func(t *testing.T) {
		_, err := k.ProvideLiquidity(advance(ctx, 86_399), priority, 1_000, 0)
		require.ErrorIs(t, err, types.ErrLiquidityLockNotElapsed)
	})

	ctx = advance(ctx, 86_400)

	t.Run("priority pool earns a bonus", func(t *testing.T) {
		resp, err := k.ProvideLiquidity(ctx, priority, 1_000, 250)
		require.NoError(t, err)
		require.Equal(t, uint64(100), resp.Bonus)
		require.Equal(t, uint64(1_100), resp.LiquidityProvided)

		acct, err := k.GetLiquidityAccount(ctx, priority)
		require.NoError(t, err)
		require.Equal(t, uint64(1_100), acct.LiquidityProvided)
		require.Equal(t, uint64(100), acct.RewardBalance)
		require.Equal(t, uint64(250), acct.TradeVolume)
		require.Equal(t, uint64(1_000), acct.Deposited())
	})

	t.Run("regular pool has no bonus", func(t *testing.T) {
		resp, err := k.ProvideLiquidity(ctx, regular, 999, 0)
		require.NoError(t, err)
		require.Zero(t, resp.Bonus)
		require.Equal(t, uint64(999), resp.LiquidityProvided)
	})

	t.Run("later deposits are not locked again", func(t *testing.T) {
		resp, err := k.ProvideLiquidity(ctx, priority, 9, 1)
		require.NoError(t, err)
		require.Zero(t, resp.Bonus)
		require.Equal(t, uint64(1_109), resp.LiquidityProvided)

		acct, err := k.GetLiquidityAccount(ctx, priority)
		require.NoError(t, err)
		require.Equal(t, keepertest.GenesisTime.Unix(), acct.LockTimestamp)
		require.Equal(t, uint64(251), acct.TradeVolume)
	})

	require.Equal(t, uint64(2_108), global(t, k, ctx).TotalLiquidity)
	require.True(t, bank.VaultBalance(ctx, types.LiquidityVaultName).Equal(sdkInt(2_008)))
	require.True(t, hasEvent(ctx, types.EventTypeLiquidityProvided))
	requireInvariants(t, k, ctx)

	t.Run("ledger failure", func(t *testing.T) {
		bank.FailTransfers = true
		defer func() { bank.FailTransfers = false }()

		_, err := k.ProvideLiquidity(ctx, regular, 1, 0)
		require.ErrorIs(t, err, types.ErrTransferFailed)
		require.Equal(t, uint64(2_108), global(t, k, ctx).TotalLiquidity)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := k.ProvideLiquidity(ctx, keepertest.TestAddr(9), 1, 0)
		require.ErrorIs(t, err, types.ErrAccountNotFound)
	})
}

package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

func TestInvariants_DetectDrift(t *testing.T) {
	k, ctx, bank := keepertest.InitializedKeeper(t)
	addr := keepertest.TestAddr(1)
	stakedTrader(t, k, ctx, bank, addr, 1_000)
	requireInvariants(t, k, ctx)

	t.Run("total staked", func(t *testing.T) {
		cacheCtx, _ := ctx.CacheContext()
		gs := global(t, k, cacheCtx)
		gs.TotalStaked++
		require.NoError(t, k.SetGlobalState(cacheCtx, gs))

		_, broken := keeper.TotalStakedInvariant(*k)(cacheCtx)
		require.True(t, broken)
	})

	t.Run("total liquidity", func(t *testing.T) {
		cacheCtx, _ := ctx.CacheContext()
		acct := types.NewLiquidityAccount(keepertest.TestAddr(2).String(), false, 0)
		acct.LiquidityProvided = 1
		require.NoError(t, k.SetLiquidityAccount(cacheCtx, acct))

		_, broken := keeper.TotalLiquidityInvariant(*k)(cacheCtx)
		require.True(t, broken)
		_, broken = keeper.LiquidityVaultSolvencyInvariant(*k)(cacheCtx)
		require.True(t, broken)
	})

	t.Run("stake vault solvency", func(t *testing.T) {
		cacheCtx, _ := ctx.CacheContext()
		require.NoError(t, bank.SendCoinsFromModuleToAccount(cacheCtx, types.StakeVaultName, addr, coins(1)))

		_, broken := keeper.StakeVaultSolvencyInvariant(*k)(cacheCtx)
		require.True(t, broken)
	})

	t.Run("strike bound", func(t *testing.T) {
		cacheCtx, _ := ctx.CacheContext()
		acct := trader(t, k, cacheCtx, addr)
		acct.InvalidProofAttempts = types.DefaultMaxInvalidProofs
		require.NoError(t, k.SetTraderAccount(cacheCtx, acct))

		_, broken := keeper.StrikeBoundInvariant(*k)(cacheCtx)
		require.True(t, broken)
	})

	requireInvariants(t, k, ctx)
}

package keeper_test

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

func TestQueryServer(t *testing.T) {
	k, ctx, bank := keepertest.InitializedKeeper(t)
	qs := keeper.NewQueryServerImpl(*k)

	addr := keepertest.TestAddr(1)
	stakedTrader(t, k, ctx, bank, addr, 1_000)

	t.Run("nil requests", func(t *testing.T) {
		_, err := qs.Params(ctx, nil)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		_, err = qs.Trader(ctx, nil)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("params and global state", func(t *testing.T) {
		params, err := qs.Params(ctx, &types.QueryParamsRequest{})
		require.NoError(t, err)
		require.Equal(t, types.DefaultParams(), params.Params)

		gs, err := qs.GlobalState(ctx, &types.QueryGlobalStateRequest{})
		require.NoError(t, err)
		require.Equal(t, uint64(1_000), gs.Global.TotalStaked)
	})

	t.Run("trader status", func(t *testing.T) {
		resp, err := qs.Trader(ctx, &types.QueryTraderRequest{Trader: addr.String()})
		require.NoError(t, err)
		require.Equal(t, "staked_unverified", resp.Status)
		require.Zero(t, resp.Strikes)

		_, err = qs.Trader(ctx, &types.QueryTraderRequest{Trader: keepertest.TestAddr(5).String()})
		require.Equal(t, codes.NotFound, status.Code(err))

		_, err = qs.Trader(ctx, &types.QueryTraderRequest{Trader: "bogus"})
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("bandwidth", func(t *testing.T) {
		_, err := qs.Bandwidth(ctx, &types.QueryBandwidthRequest{Trader: addr.String()})
		require.ErrorIs(t, err, types.ErrProofExpired)

		_, err = k.BatchStakeAndVerify(ctx, addr, 0, validProof, types.Digest{}, 0)
		require.NoError(t, err)

		resp, err := qs.Bandwidth(ctx, &types.QueryBandwidthRequest{Trader: addr.String()})
		require.NoError(t, err)
		require.Equal(t, uint64(990_000), resp.Allocation.EffectivePriority)
	})

	t.Run("liquidity account", func(t *testing.T) {
		keepertest.FundedProvider(t, k, ctx, bank, addr, false, 0)
		resp, err := qs.LiquidityAccount(ctx, &types.QueryLiquidityAccountRequest{Provider: addr.String()})
		require.NoError(t, err)
		require.Equal(t, addr.String(), resp.Account.Owner)
	})

	t.Run("slash records paginate", func(t *testing.T) {
		other := keepertest.TestAddr(2)
		stakedTrader(t, k, ctx, bank, other, 1_000)
		for _, who := range []struct {
			addr   sdk.AccAddress
			rounds int
		}{{addr, 2}, {other, 1}} {
			for r := 0; r < who.rounds; r++ {
				for i := 0; i < 3; i++ {
					_, err := k.VerifyPriority(ctx, who.addr, shortProof, types.Digest{}, 0)
					require.ErrorIs(t, err, types.ErrInvalidProof)
				}
			}
		}

		all, err := qs.SlashRecords(ctx, &types.QuerySlashRecordsRequest{})
		require.NoError(t, err)
		require.Len(t, all.Records, 3)

		page, err := qs.SlashRecords(ctx, &types.QuerySlashRecordsRequest{
			Trader:     addr.String(),
			Pagination: &query.PageRequest{Limit: 1, CountTotal: true},
		})
		require.NoError(t, err)
		require.Len(t, page.Records, 1)
		require.Equal(t, uint64(2), page.Pagination.Total)
		require.NotEmpty(t, page.Pagination.NextKey)

		mine, err := qs.SlashRecords(ctx, &types.QuerySlashRecordsRequest{Trader: other.String()})
		require.NoError(t, err)
		require.Len(t, mine.Records, 1)
		require.Equal(t, other.String(), mine.Records[0].Trader)
	})
}

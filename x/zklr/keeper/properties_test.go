package keeper_test

import (
	"fmt"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

// TestProperty_InvariantsHoldUnderRandomOperations drives random operation
// sequences and checks every invariant after each step, whether the step
// succeeded or failed.
func TestProperty_InvariantsHoldUnderRandomOperations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k, ctx, bank := keepertest.InitializedKeeper(t)

		traders := make([]sdk.AccAddress, 3)
		orders := make([][]byte, len(traders))
		for i := range traders {
			traders[i] = keepertest.TestAddr(10 + i)
			keepertest.FundedTrader(t, k, ctx, bank, traders[i], 1_000_000)
		}
		providers := make([]sdk.AccAddress, 2)
		for i := range providers {
			providers[i] = keepertest.TestAddr(20 + i)
			keepertest.FundedProvider(t, k, ctx, bank, providers[i], i == 0, 1_000_000)
		}

		proof := func(valid bool) []byte {
			if valid {
				return validProof
			}
			return shortProof
		}

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for step := 0; step < steps; step++ {
			i := rapid.IntRange(0, len(traders)-1).Draw(rt, "trader")
			addr := traders[i]

			switch op := rapid.IntRange(0, 7).Draw(rt, "op"); op {
			case 0:
				_, _ = k.Stake(ctx, addr, rapid.Uint64Range(0, 50_000).Draw(rt, "stake"))
			case 1:
				orders[i] = []byte(fmt.Sprintf("order-%d-%d", i, step))
				valid := rapid.Bool().Draw(rt, "valid")
				latency := rapid.Uint64Range(0, 2_000).Draw(rt, "latency")
				_, _ = k.VerifyPriority(ctx, addr, proof(valid), commitmentOf(orders[i]), latency)
			case 2:
				valid := rapid.Bool().Draw(rt, "valid")
				amount := rapid.Uint64Range(0, 50_000).Draw(rt, "amount")
				_, _ = k.BatchStakeAndVerify(ctx, addr, amount, proof(valid), types.Digest{}, 0)
			case 3:
				order := orders[i]
				if !rapid.Bool().Draw(rt, "matching") {
					order = []byte("something else")
				}
				_ = k.RevealTrade(ctx, addr, order, proof(rapid.Bool().Draw(rt, "valid")))
			case 4:
				_ = k.Unstake(ctx, addr, rapid.Uint64Range(0, 60_000).Draw(rt, "unstake"))
			case 5:
				j := rapid.IntRange(0, len(providers)-1).Draw(rt, "provider")
				amount := rapid.Uint64Range(0, 20_000).Draw(rt, "liquidity")
				volume := rapid.Uint64Range(0, 1_000).Draw(rt, "volume")
				_, _ = k.ProvideLiquidity(ctx, providers[j], amount, volume)
			case 6:
				alloc, err := k.AllocateBandwidth(ctx, addr)
				if err == nil {
					acct := trader(t, k, ctx, addr)
					require.GreaterOrEqual(rt, alloc.EffectivePriority, acct.TradeVolume)
				}
			case 7:
				ctx = advance(ctx, rapid.Int64Range(0, 100_000).Draw(rt, "advance"))
			}

			msg, broken := keeper.AllInvariants(*k)(ctx)
			require.False(rt, broken, "step %d: %s", step, msg)
		}
	})
}

func TestProperty_SlashArithmetic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		stake := rapid.Uint64Range(0, 1<<40).Draw(rt, "stake")

		k, ctx, bank := keepertest.InitializedKeeper(t)
		addr := keepertest.TestAddr(1)
		keepertest.FundedTrader(t, k, ctx, bank, addr, stake)
		_, err := k.Stake(ctx, addr, stake)
		require.NoError(rt, err)

		for i := 0; i < int(types.DefaultMaxInvalidProofs); i++ {
			_, err := k.VerifyPriority(ctx, addr, shortProof, types.Digest{}, 0)
			require.ErrorIs(rt, err, types.ErrInvalidProof)
			require.Less(rt, trader(t, k, ctx, addr).InvalidProofAttempts, types.DefaultMaxInvalidProofs)
		}

		want := stake - stake*types.DefaultSlashPercentage/100
		require.Equal(rt, want, trader(t, k, ctx, addr).StakedAmount)
		require.Equal(rt, want, global(t, k, ctx).TotalStaked)
	})
}

func TestProperty_FeesCompound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		stake := rapid.Uint64Range(0, 1<<40).Draw(rt, "stake")
		rounds := rapid.IntRange(1, 5).Draw(rt, "rounds")

		k, ctx, bank := keepertest.InitializedKeeper(t)
		addr := keepertest.TestAddr(1)
		keepertest.FundedTrader(t, k, ctx, bank, addr, stake)
		_, err := k.Stake(ctx, addr, stake)
		require.NoError(rt, err)

		want := stake
		for r := 0; r < rounds; r++ {
			resp, err := k.VerifyPriority(ctx, addr, validProof, types.Digest{}, 0)
			require.NoError(rt, err)
			require.Equal(rt, want/100, resp.Fee)
			want -= want / 100
		}
		require.Equal(rt, want, trader(t, k, ctx, addr).StakedAmount)
	})
}

func TestProperty_DecayMonotonic(t *testing.T) {
	params := types.DefaultParams()
	params.ProofValidityPeriod = 2 * params.DecayPeriod

	rapid.Check(t, func(rt *rapid.T) {
		acct := types.TraderAccount{
			Owner:           keepertest.TestAddr(1).String(),
			StakedAmount:    rapid.Uint64Range(0, 1<<30).Draw(rt, "stake"),
			IsVerified:      true,
			ProofExpiry:     params.ProofValidityPeriod,
			SpeedMultiplier: rapid.Uint64Range(0, 1_000).Draw(rt, "speed"),
			TradeVolume:     rapid.Uint64Range(0, 1<<30).Draw(rt, "volume"),
		}
		earlier := rapid.Int64Range(0, params.DecayPeriod).Draw(rt, "earlier")
		later := rapid.Int64Range(earlier, params.ProofValidityPeriod).Draw(rt, "later")

		a, err := keeper.ComputeBandwidth(params, acct, earlier)
		require.NoError(rt, err)
		b, err := keeper.ComputeBandwidth(params, acct, later)
		require.NoError(rt, err)

		require.GreaterOrEqual(rt, a.EffectivePriority, b.EffectivePriority)
		if later >= params.DecayPeriod {
			require.Equal(rt, acct.TradeVolume, b.EffectivePriority)
		}
	})
}

func TestProperty_SpeedMultiplier(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		latency := rapid.Uint64Range(0, 1<<40).Draw(rt, "latency")
		speed, err := keeper.SpeedMultiplier(types.DefaultSpeedNumerator, latency)
		require.NoError(rt, err)
		require.Equal(rt, types.DefaultSpeedNumerator/(latency+1), speed)
		require.LessOrEqual(rt, speed, types.DefaultSpeedNumerator)
	})
}

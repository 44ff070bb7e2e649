package keeper_test

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

func sdkInt(v uint64) sdkmath.Int { return sdkmath.NewIntFromUint64(v) }

func TestSafeMath(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := keeper.SafeAddUint64(2, 3)
		require.NoError(t, err)
		require.Equal(t, uint64(5), sum)

		_, err = keeper.SafeAddUint64(math.MaxUint64, 1)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := keeper.SafeSubUint64(5, 5)
		require.NoError(t, err)
		require.Zero(t, diff)

		_, err = keeper.SafeSubUint64(4, 5)
		require.ErrorIs(t, err, types.ErrArithmeticUnderflow)
	})

	t.Run("mul", func(t *testing.T) {
		product, err := keeper.SafeMulUint64(1<<32-1, 1<<32+1)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), product)

		_, err = keeper.SafeMulUint64(1<<32, 1<<32)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	})

	t.Run("quo", func(t *testing.T) {
		_, err := keeper.SafeQuoUint64(10, 0)
		require.ErrorIs(t, err, types.ErrDivisionByZero)
	})

	t.Run("percent truncates", func(t *testing.T) {
		pct, err := keeper.SafePercent(999, 20)
		require.NoError(t, err)
		require.Equal(t, uint64(199), pct)

		_, err = keeper.SafePercent(math.MaxUint64, 20)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	})

	t.Run("int64 add", func(t *testing.T) {
		_, err := keeper.SafeAddInt64(math.MaxInt64, 1)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
		_, err = keeper.SafeAddInt64(math.MinInt64, -1)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)

		sum, err := keeper.SafeAddInt64(-5, 3)
		require.NoError(t, err)
		require.Equal(t, int64(-2), sum)
	})

	t.Run("counter", func(t *testing.T) {
		_, err := keeper.SafeIncrementUint32(math.MaxUint32)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	})
}

func TestSpeedMultiplier(t *testing.T) {
	cases := []struct {
		latency uint64
		want    uint64
	}{
		{latency: 0, want: 1000},
		{latency: 1, want: 500},
		{latency: 999, want: 1},
		{latency: 1000, want: 0},
	}
	for _, tc := range cases {
		got, err := keeper.SpeedMultiplier(1000, tc.latency)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "latency %d", tc.latency)
	}

	_, err := keeper.SpeedMultiplier(1000, math.MaxUint64)
	require.ErrorIs(t, err, types.ErrArithmeticOverflow)
}

func coins(amount uint64) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(types.DefaultStakeDenom, sdkmath.NewIntFromUint64(amount)))
}

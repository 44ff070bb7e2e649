package keeper_test

import (
	"bytes"
	"crypto/sha256"
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

var (
	validProof = bytes.Repeat([]byte{0xab}, 10)
	shortProof = []byte("too-short")
)

func advance(ctx sdk.Context, seconds int64) sdk.Context {
	return ctx.WithBlockTime(ctx.BlockTime().Add(time.Duration(seconds) * time.Second))
}

func commitmentOf(order []byte) types.Digest {
	return types.Digest(sha256.Sum256(order))
}

// stakedTrader opens, funds and stakes amount for addr
func stakedTrader(t *testing.T, k *keeper.Keeper, ctx sdk.Context, bank *keepertest.BankKeeper, addr sdk.AccAddress, amount uint64) {
	t.Helper()
	keepertest.FundedTrader(t, k, ctx, bank, addr, amount)
	_, err := k.Stake(ctx, addr, amount)
	require.NoError(t, err)
}

func trader(t *testing.T, k *keeper.Keeper, ctx sdk.Context, addr sdk.AccAddress) types.TraderAccount {
	t.Helper()
	acct, err := k.GetTraderAccount(ctx, addr)
	require.NoError(t, err)
	return acct
}

func global(t *testing.T, k *keeper.Keeper, ctx sdk.Context) types.GlobalState {
	t.Helper()
	gs, err := k.GetGlobalState(ctx)
	require.NoError(t, err)
	return gs
}

func hasEvent(ctx sdk.Context, eventType string) bool {
	for _, evt := range ctx.EventManager().Events() {
		if evt.Type == eventType {
			return true
		}
	}
	return false
}

func requireInvariants(t *testing.T, k *keeper.Keeper, ctx sdk.Context) {
	t.Helper()
	msg, broken := keeper.AllInvariants(*k)(ctx)
	require.False(t, broken, msg)
}

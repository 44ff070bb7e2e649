package types

import (
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func testAddr(i byte) string {
	return sdk.AccAddress([]byte{i, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}).String()
}

func TestMsgValidateBasic(t *testing.T) {
	addr := testAddr(1)

	tests := []struct {
		name    string
		msg     Msg
		wantErr error
	}{
		{"initialize", MsgInitialize{Admin: addr}, nil},
		{"initialize bad admin", MsgInitialize{Admin: "nope"}, ErrInvalidAddress},
		{"open trader", MsgOpenTraderAccount{Trader: addr}, nil},
		{"open liquidity", MsgOpenLiquidityAccount{Provider: addr, PriorityPool: true}, nil},
		{"open liquidity bad provider", MsgOpenLiquidityAccount{}, ErrInvalidAddress},
		{"stake", MsgStake{Trader: addr, Amount: 1}, nil},
		{"stake zero", MsgStake{Trader: addr}, ErrInvalidAmount},
		{"verify with short proof reaches the keeper", MsgVerifyPriority{Trader: addr, Proof: []byte{1}}, nil},
		{"batch", MsgBatchStakeAndVerify{Trader: addr, Amount: 5}, nil},
		{"batch zero", MsgBatchStakeAndVerify{Trader: addr}, ErrInvalidAmount},
		{"reveal", MsgRevealTrade{Trader: addr}, nil},
		{"unstake zero", MsgUnstake{Trader: addr}, ErrInvalidAmount},
		{"provide", MsgProvideLiquidity{Provider: addr, Amount: 1}, nil},
		{"provide zero", MsgProvideLiquidity{Provider: addr}, ErrInvalidAmount},
		{"update params", MsgUpdateParams{Authority: addr, Params: DefaultParams()}, nil},
		{"update params invalid", MsgUpdateParams{Authority: addr}, ErrInvalidParams},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			if tc.wantErr == nil {
				require.NoError(t, err)
				require.NotEmpty(t, tc.msg.Signer())
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGenesisValidate(t *testing.T) {
	a, b := testAddr(1), testAddr(2)
	valid := func() GenesisState {
		return GenesisState{
			Params: DefaultParams(),
			Global: &GlobalState{Admin: a, TotalStaked: 30, TotalLiquidity: 110},
			Traders: []TraderAccount{
				{Owner: a, StakedAmount: 10},
				{Owner: b, StakedAmount: 20},
			},
			LiquidityAccounts: []LiquidityAccount{
				{Owner: a, LiquidityProvided: 110, RewardBalance: 10, IsPriorityPool: true},
			},
			SlashRecords: []SlashRecord{
				{ID: 1, Trader: a, Amount: 2, StakeBefore: 12, Reason: FailureInvalidProof, SlashedAt: time.Unix(0, 0).UTC()},
			},
			NextSlashID: 2,
		}
	}

	require.NoError(t, DefaultGenesis().Validate())
	gs := valid()
	require.NoError(t, gs.Validate())

	tests := []struct {
		name   string
		mutate func(gs *GenesisState)
	}{
		{"bad params", func(gs *GenesisState) { gs.Params.DecayPeriod = 0 }},
		{"staked mismatch", func(gs *GenesisState) { gs.Global.TotalStaked = 31 }},
		{"liquidity mismatch", func(gs *GenesisState) { gs.Global.TotalLiquidity = 100 }},
		{"duplicate trader", func(gs *GenesisState) { gs.Traders[1].Owner = a }},
		{"bad trader owner", func(gs *GenesisState) { gs.Traders[0].Owner = "x" }},
		{"reward above liquidity", func(gs *GenesisState) { gs.LiquidityAccounts[0].RewardBalance = 111 }},
		{"accounts without global", func(gs *GenesisState) { gs.Global = nil }},
		{"slash id out of range", func(gs *GenesisState) { gs.SlashRecords[0].ID = 2 }},
		{"unknown slash reason", func(gs *GenesisState) { gs.SlashRecords[0].Reason = "bored" }},
		{"stake overflow", func(gs *GenesisState) {
			gs.Traders[0].StakedAmount = ^uint64(0)
			gs.Traders[1].StakedAmount = 1
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gs := valid()
			tc.mutate(&gs)
			require.Error(t, gs.Validate())
		})
	}
}

func TestKeys(t *testing.T) {
	addr := sdk.AccAddress([]byte("trader-address-00001"))

	key := SlashRecordByTraderKey(addr, 42)
	id, ok := SlashIDFromIndexKey(key)
	require.True(t, ok)
	require.Equal(t, uint64(42), id)

	_, ok = SlashIDFromIndexKey([]byte{1, 2})
	require.False(t, ok)

	require.NotEqual(t, TraderAccountKey(addr), LiquidityAccountKey(addr))
	require.Equal(t, SlashRecordByTraderPrefixKey(addr), key[:len(key)-8])
}

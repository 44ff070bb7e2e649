package types

import (
	"fmt"
	"math/bits"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState is the zklr module's exported and imported state
type GenesisState struct {
	Params            Params             `json:"params"`
	Global            *GlobalState       `json:"global,omitempty"`
	Traders           []TraderAccount    `json:"traders"`
	LiquidityAccounts []LiquidityAccount `json:"liquidity_accounts"`
	SlashRecords      []SlashRecord      `json:"slash_records"`
	NextSlashID       uint64             `json:"next_slash_id"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:            DefaultParams(),
		Traders:           []TraderAccount{},
		LiquidityAccounts: []LiquidityAccount{},
		SlashRecords:      []SlashRecord{},
		NextSlashID:       1,
	}
}

// Validate checks params, account uniqueness and aggregate consistency
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	var stakedSum, liquiditySum uint64
	seen := make(map[string]struct{}, len(gs.Traders))
	for _, t := range gs.Traders {
		if _, err := sdk.AccAddressFromBech32(t.Owner); err != nil {
			return ErrInvalidGenesis.Wrapf("trader owner %q: %v", t.Owner, err)
		}
		if _, dup := seen[t.Owner]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate trader account %s", t.Owner)
		}
		seen[t.Owner] = struct{}{}

		var carry uint64
		stakedSum, carry = bits.Add64(stakedSum, t.StakedAmount, 0)
		if carry != 0 {
			return ErrInvalidGenesis.Wrap("total staked overflows")
		}
	}

	seen = make(map[string]struct{}, len(gs.LiquidityAccounts))
	for _, lp := range gs.LiquidityAccounts {
		if _, err := sdk.AccAddressFromBech32(lp.Owner); err != nil {
			return ErrInvalidGenesis.Wrapf("liquidity owner %q: %v", lp.Owner, err)
		}
		if _, dup := seen[lp.Owner]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate liquidity account %s", lp.Owner)
		}
		seen[lp.Owner] = struct{}{}
		if lp.RewardBalance > lp.LiquidityProvided {
			return ErrInvalidGenesis.Wrapf("liquidity account %s: reward balance exceeds liquidity", lp.Owner)
		}

		var carry uint64
		liquiditySum, carry = bits.Add64(liquiditySum, lp.LiquidityProvided, 0)
		if carry != 0 {
			return ErrInvalidGenesis.Wrap("total liquidity overflows")
		}
	}

	if gs.Global == nil {
		if len(gs.Traders) > 0 || len(gs.LiquidityAccounts) > 0 {
			return ErrInvalidGenesis.Wrap("accounts present without global state")
		}
	} else {
		if gs.Global.TotalStaked != stakedSum {
			return ErrInvalidGenesis.Wrapf("total staked %d != sum of stakes %d", gs.Global.TotalStaked, stakedSum)
		}
		if gs.Global.TotalLiquidity != liquiditySum {
			return ErrInvalidGenesis.Wrapf("total liquidity %d != sum of deposits %d", gs.Global.TotalLiquidity, liquiditySum)
		}
	}

	ids := make(map[uint64]struct{}, len(gs.SlashRecords))
	for _, rec := range gs.SlashRecords {
		if rec.ID == 0 || rec.ID >= gs.NextSlashID {
			return ErrInvalidGenesis.Wrapf("slash record id %d outside [1, %d)", rec.ID, gs.NextSlashID)
		}
		if _, dup := ids[rec.ID]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate slash record %d", rec.ID)
		}
		ids[rec.ID] = struct{}{}
		if err := rec.Reason.Validate(); err != nil {
			return ErrInvalidGenesis.Wrap(fmt.Sprintf("slash record %d: %v", rec.ID, err))
		}
	}

	return nil
}

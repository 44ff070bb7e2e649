package keeper

import (
	"context"
	"fmt"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// InitGenesis initializes the zklr module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return types.ErrInvalidGenesis.Wrap(err.Error())
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	if genState.Global != nil {
		if err := k.SetGlobalState(ctx, *genState.Global); err != nil {
			return fmt.Errorf("failed to set global state: %w", err)
		}
	}

	for _, acct := range genState.Traders {
		if err := k.SetTraderAccount(ctx, acct); err != nil {
			return fmt.Errorf("failed to set trader %s: %w", acct.Owner, err)
		}
	}

	for _, acct := range genState.LiquidityAccounts {
		if err := k.SetLiquidityAccount(ctx, acct); err != nil {
			return fmt.Errorf("failed to set liquidity account %s: %w", acct.Owner, err)
		}
	}

	for _, record := range genState.SlashRecords {
		if err := k.SetSlashRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to set slash record %d: %w", record.ID, err)
		}
	}

	nextSlashID := genState.NextSlashID
	if nextSlashID == 0 {
		nextSlashID = 1
	}
	k.SetNextSlashID(ctx, nextSlashID)

	return nil
}

// ExportGenesis returns the zklr module's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	genesis := types.DefaultGenesis()
	genesis.Params = params

	if k.HasGlobalState(ctx) {
		global, err := k.GetGlobalState(ctx)
		if err != nil {
			return nil, err
		}
		genesis.Global = &global
	}

	traders, err := k.GetAllTraderAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if traders != nil {
		genesis.Traders = traders
	}

	liquidity, err := k.GetAllLiquidityAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if liquidity != nil {
		genesis.LiquidityAccounts = liquidity
	}

	records, err := k.GetAllSlashRecords(ctx)
	if err != nil {
		return nil, err
	}
	if records != nil {
		genesis.SlashRecords = records
	}
	genesis.NextSlashID = k.GetNextSlashID(ctx)

	return genesis, nil
}

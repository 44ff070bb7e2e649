package app

import (
	"encoding/json"
	"fmt"
	"os"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Balance is a ledger balance seeded at genesis
type Balance struct {
	Address string    `json:"address"`
	Coins   sdk.Coins `json:"coins"`
}

// GenesisState is the engine genesis: module state plus the account
// balances the ledger starts with. Vault balances are not listed; they are
// derived from the module totals when the genesis is loaded.
type GenesisState struct {
	ChainID  string             `json:"chain_id"`
	Zklr     types.GenesisState `json:"zklr"`
	Balances []Balance          `json:"balances"`
}

// NewDefaultGenesisState returns an empty engine genesis with default params
func NewDefaultGenesisState(chainID string) GenesisState {
	return GenesisState{
		ChainID:  chainID,
		Zklr:     *types.DefaultGenesis(),
		Balances: []Balance{},
	}
}

// Validate checks module state and every seeded balance
func (gs GenesisState) Validate() error {
	if err := gs.Zklr.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(gs.Balances))
	for _, b := range gs.Balances {
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return fmt.Errorf("invalid balance address %q: %w", b.Address, err)
		}
		if seen[b.Address] {
			return fmt.Errorf("duplicate balance for %s", b.Address)
		}
		seen[b.Address] = true
		if !b.Coins.IsValid() {
			return fmt.Errorf("invalid coins for %s: %s", b.Address, b.Coins)
		}
	}
	return nil
}

// LoadGenesis reads a genesis file written by WriteGenesis
func LoadGenesis(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return GenesisState{}, fmt.Errorf("failed to read genesis: %w", err)
	}
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return GenesisState{}, fmt.Errorf("failed to decode genesis %s: %w", path, err)
	}
	return gs, nil
}

// WriteGenesis writes gs as indented JSON
func WriteGenesis(path string, gs GenesisState) error {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode genesis: %w", err)
	}
	return os.WriteFile(path, bz, 0o600)
}

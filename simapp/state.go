package simapp

import (
	"math/rand"

	sdk "github.com/cosmos/cosmos-sdk/types"
	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"

	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/x/zklr/types"
)

// RandomizedGenesisState returns an engine genesis with randomized module
// params, accs[0] as administrator and a random stake denom balance for
// every account.
func RandomizedGenesisState(r *rand.Rand, accs []simtypes.Account, chainID string, simParams SimulationParams) app.GenesisState {
	gs := app.NewDefaultGenesisState(chainID)
	gs.Zklr.Params = RandomizedModuleParams(r)
	if len(accs) > 0 {
		gs.Zklr.Global = &types.GlobalState{Admin: accs[0].Address.String()}
	}

	gs.Balances = make([]app.Balance, len(accs))
	for i, acc := range accs {
		amount := simtypes.RandomAmount(r, simParams.InitialAccountBalance).AddRaw(1)
		gs.Balances[i] = app.Balance{
			Address: acc.Address.String(),
			Coins:   sdk.NewCoins(sdk.NewCoin(gs.Zklr.Params.StakeDenom, amount)),
		}
	}

	return gs
}

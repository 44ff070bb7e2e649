package simapp_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/zklr-network/zklr/simapp"
)

func TestRandomizedGenesisIsValid(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		simParams := simapp.RandomizedParams(r)
		accs := simapp.RandomAccounts(r, simParams.NumAccounts)

		gs := simapp.RandomizedGenesisState(r, accs, "zklr-sim", simParams)
		require.NoError(t, gs.Validate(), "seed %d", seed)
		require.Len(t, gs.Balances, simParams.NumAccounts)
		require.Equal(t, accs[0].Address.String(), gs.Zklr.Global.Admin)
	}
}

func TestSimulationPreservesInvariants(t *testing.T) {
	numOps := 300
	if testing.Short() {
		numOps = 50
	}

	for seed := int64(1); seed <= 5; seed++ {
		res, err := simapp.SimulateFromSeed(context.Background(), log.NewNopLogger(), seed, numOps, simapp.DefaultSimulationParams())
		require.NoError(t, err, "seed %d", seed)

		total := 0
		for _, n := range res.Delivered {
			total += n
		}
		for _, n := range res.Rejected {
			total += n
		}
		require.Equal(t, numOps, total)
		require.Positive(t, res.Delivered[simapp.OpStake], "seed %d delivered no stakes", seed)
		require.NoError(t, res.Engine.Close())
	}
}

func TestSimulationIsDeterministic(t *testing.T) {
	export := func() []byte {
		res, err := simapp.SimulateFromSeed(context.Background(), log.NewNopLogger(), 42, 100, simapp.DefaultSimulationParams())
		require.NoError(t, err)
		defer res.Engine.Close()

		gs, err := res.Engine.ExportGenesis(context.Background())
		require.NoError(t, err)
		bz, err := json.Marshal(gs)
		require.NoError(t, err)
		return bz
	}

	require.JSONEq(t, string(export()), string(export()))
}

func TestSimulationRejectsUnusableWeights(t *testing.T) {
	for name, weights := range map[string]map[string]int{
		"all zero": {simapp.OpStake: 0, simapp.OpUnstake: 0},
		"empty":    {},
		"unknown":  {"mint": 10},
	} {
		t.Run(name, func(t *testing.T) {
			simParams := simapp.DefaultSimulationParams()
			simParams.Weights = weights

			_, err := simapp.SimulateFromSeed(context.Background(), log.NewNopLogger(), 1, 10, simParams)
			require.Error(t, err)
		})
	}
}

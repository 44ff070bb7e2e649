package simapp

import (
	"math/rand"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/types/simulation"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Operation names, also used as weight keys
const (
	OpStake             = "stake"
	OpVerify            = "verify_priority"
	OpBatchVerify       = "batch_stake_and_verify"
	OpReveal            = "reveal_trade"
	OpUnstake           = "unstake"
	OpProvideLiquidity  = "provide_liquidity"
	OpAllocateBandwidth = "allocate_bandwidth"
	OpUpdateParams      = "update_params"
)

// SimulationParams defines the parameters for the simulation
type SimulationParams struct {
	// Account parameters
	NumAccounts           int
	InitialAccountBalance math.Int

	// Probability that a submitted proof or reveal is well formed
	ValidProofProb  math.LegacyDec
	ValidRevealProb math.LegacyDec

	// MaxClockStep bounds the seconds the clock advances between operations
	MaxClockStep int

	// Relative operation weights keyed by operation name
	Weights map[string]int
}

// DefaultSimulationParams returns default simulation parameters
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		NumAccounts:           20,
		InitialAccountBalance: math.NewInt(1_000_000),
		ValidProofProb:        math.LegacyNewDecWithPrec(80, 2), // 80%
		ValidRevealProb:       math.LegacyNewDecWithPrec(90, 2), // 90%
		MaxClockStep:          120,
		Weights:               defaultWeights(),
	}
}

// RandomizedParams creates randomized simulation parameters
func RandomizedParams(r *rand.Rand) SimulationParams {
	return SimulationParams{
		NumAccounts:           simulation.RandIntBetween(r, 5, 40),
		InitialAccountBalance: simulation.RandomAmount(r, math.NewInt(10_000_000)).AddRaw(1_000),
		ValidProofProb:        simulation.RandomDecAmount(r, math.LegacyNewDecWithPrec(50, 2)).Add(math.LegacyNewDecWithPrec(50, 2)),
		ValidRevealProb:       simulation.RandomDecAmount(r, math.LegacyNewDecWithPrec(30, 2)).Add(math.LegacyNewDecWithPrec(70, 2)),
		MaxClockStep:          simulation.RandIntBetween(r, 1, 600),
		Weights:               defaultWeights(),
	}
}

// RandomizedModuleParams returns valid module params with randomized
// periods and percentages.
func RandomizedModuleParams(r *rand.Rand) types.Params {
	params := types.DefaultParams()
	params.ProofValidityPeriod = int64(simulation.RandIntBetween(r, 60, 7200))
	params.FeePercentage = uint64(simulation.RandIntBetween(r, 0, 10))
	params.MaxInvalidProofs = uint32(simulation.RandIntBetween(r, 1, 5))
	params.SlashPercentage = uint64(simulation.RandIntBetween(r, 0, 50))
	params.DecayPeriod = int64(simulation.RandIntBetween(r, 60, 86_400))
	params.LockupPeriod = int64(simulation.RandIntBetween(r, 0, 3600))
	params.RevealDelay = int64(simulation.RandIntBetween(r, 0, 120))
	params.PriorityPoolBonus = uint64(simulation.RandIntBetween(r, 0, 25))
	params.LiquidityLockPeriod = int64(simulation.RandIntBetween(r, 0, 86_400))
	params.SpeedNumerator = uint64(simulation.RandIntBetween(r, 1, 10_000))
	params.MinConfidentialStake = uint64(simulation.RandIntBetween(r, 0, 1_000))
	if r.Intn(2) == 0 {
		params.CommitmentHash = types.HashKeccak256
	}
	return params
}

func defaultWeights() map[string]int {
	return map[string]int{
		OpStake:             20,
		OpVerify:            25,
		OpBatchVerify:       10,
		OpReveal:            20,
		OpUnstake:           5,
		OpProvideLiquidity:  10,
		OpAllocateBandwidth: 8,
		OpUpdateParams:      2,
	}
}

// RandomAccounts creates random accounts for simulation
func RandomAccounts(r *rand.Rand, n int) []simulation.Account {
	return simulation.RandomAccounts(r, n)
}

package simapp

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"

	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/x/zklr/types"
)

// Result summarizes a simulation run
type Result struct {
	// Delivered counts accepted operations by name
	Delivered map[string]int
	// Rejected counts operations the engine refused by name
	Rejected map[string]int
	// Engine is the engine the run executed against, left open
	Engine *app.Engine
}

// simState tracks what the simulator needs to build plausible operations
type simState struct {
	r         *rand.Rand
	ctx       context.Context
	engine    *app.Engine
	accs      []simtypes.Account
	params    SimulationParams
	now       time.Time
	pending   map[string][]byte // trader -> committed order
	providers map[string]bool
}

type operation func(s *simState) error

// SimulateFromSeed runs numOps random operations against a fresh in-memory
// engine with invariant checks enabled. Operations the engine rejects are
// expected and counted; a broken invariant aborts the run.
func SimulateFromSeed(ctx context.Context, logger log.Logger, seed int64, numOps int, simParams SimulationParams) (Result, error) {
	ops := map[string]operation{
		OpStake:             simulateStake,
		OpVerify:            simulateVerify,
		OpBatchVerify:       simulateBatchVerify,
		OpReveal:            simulateReveal,
		OpUnstake:           simulateUnstake,
		OpProvideLiquidity:  simulateProvideLiquidity,
		OpAllocateBandwidth: simulateAllocateBandwidth,
		OpUpdateParams:      simulateUpdateParams,
	}
	pick, err := weightedPicker(simParams.Weights, ops)
	if err != nil {
		return Result{}, err
	}

	r := rand.New(rand.NewSource(seed))
	accs := RandomAccounts(r, simParams.NumAccounts)

	s := &simState{
		r:         r,
		ctx:       ctx,
		accs:      accs,
		params:    simParams,
		now:       simtypes.RandTimestamp(r),
		pending:   make(map[string][]byte),
		providers: make(map[string]bool),
	}

	genesis := RandomizedGenesisState(r, accs, fmt.Sprintf("zklr-sim-%d", seed), simParams)
	engine, err := app.NewEngine(logger, dbm.NewMemDB(), &genesis,
		app.WithChainID(genesis.ChainID),
		app.WithClock(func() time.Time { return s.now }),
		app.WithInvariantChecks(true),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create engine: %w", err)
	}
	s.engine = engine

	res := Result{Delivered: map[string]int{}, Rejected: map[string]int{}, Engine: engine}

	for _, acc := range accs {
		addr := acc.Address.String()
		if _, err := engine.OpenTraderAccount(ctx, types.MsgOpenTraderAccount{Trader: addr}); err != nil {
			return res, fmt.Errorf("open trader %s: %w", addr, err)
		}
		if r.Intn(3) == 0 {
			priority := r.Intn(2) == 0
			if _, err := engine.OpenLiquidityAccount(ctx, types.MsgOpenLiquidityAccount{Provider: addr, PriorityPool: priority}); err != nil {
				return res, fmt.Errorf("open liquidity account %s: %w", addr, err)
			}
			s.providers[addr] = true
		}
	}

	for i := 0; i < numOps; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s.now = s.now.Add(time.Duration(r.Intn(simParams.MaxClockStep+1)) * time.Second)

		name := pick(r)
		err := ops[name](s)
		switch {
		case errors.Is(err, app.ErrInvariantBroken):
			return res, fmt.Errorf("operation %d (%s): %w", i, name, err)
		case err != nil:
			res.Rejected[name]++
		default:
			res.Delivered[name]++
		}
	}

	return res, engine.CheckInvariants(ctx)
}

// weightedPicker returns a sampler over names proportional to weights.
// Every weighted name must be a known operation and at least one weight
// must be positive.
func weightedPicker(weights map[string]int, known map[string]operation) (func(*rand.Rand) string, error) {
	names := make([]string, 0, len(weights))
	total := 0
	for name, w := range weights {
		if w <= 0 {
			continue
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown simulation operation %q", name)
		}
		names = append(names, name)
		total += w
	}
	if total == 0 {
		return nil, errors.New("simulation weights are all zero")
	}
	sort.Strings(names)

	return func(r *rand.Rand) string {
		n := r.Intn(total)
		for _, name := range names {
			if n < weights[name] {
				return name
			}
			n -= weights[name]
		}
		return names[len(names)-1]
	}, nil
}

func (s *simState) randomAccount() string {
	acc, _ := simtypes.RandomAcc(s.r, s.accs)
	return acc.Address.String()
}

// randomBalanceAmount returns a random amount up to addr's balance, or 0
func (s *simState) randomBalanceAmount(addr string) uint64 {
	balance, err := s.engine.Balance(s.ctx, addr)
	if err != nil || !balance.Amount.IsPositive() || !balance.Amount.IsUint64() {
		return 0
	}
	return uint64(s.r.Int63n(int64(min(balance.Amount.Uint64(), 1<<62)))) + 1
}

func (s *simState) randomProof() []byte {
	params, err := s.engine.Params(s.ctx)
	minLen := int(types.DefaultMinProofLength)
	if err == nil {
		minLen = int(params.Params.MinProofLength)
	}
	n := minLen + s.r.Intn(32)
	if !s.chance(s.params.ValidProofProb) && minLen > 0 {
		n = s.r.Intn(minLen)
	}
	return randBytes(s.r, n)
}

// commit draws an order for trader and returns its commitment
func (s *simState) commit(trader string) (types.Digest, error) {
	params, err := s.engine.Params(s.ctx)
	if err != nil {
		return types.Digest{}, err
	}
	order := randBytes(s.r, 8+s.r.Intn(56))
	digest, err := types.ComputeOrderCommitment(params.Params.CommitmentHash, order)
	if err != nil {
		return types.Digest{}, err
	}
	s.pending[trader] = order
	return digest, nil
}

func (s *simState) chance(p math.LegacyDec) bool {
	return s.r.Float64() < p.MustFloat64()
}

func simulateStake(s *simState) error {
	trader := s.randomAccount()
	_, err := s.engine.Stake(s.ctx, types.MsgStake{Trader: trader, Amount: s.randomBalanceAmount(trader)})
	return err
}

func simulateVerify(s *simState) error {
	trader := s.randomAccount()
	commitment, err := s.commit(trader)
	if err != nil {
		return err
	}
	_, err = s.engine.VerifyPriority(s.ctx, types.MsgVerifyPriority{
		Trader:     trader,
		Proof:      s.randomProof(),
		Commitment: commitment,
		Latency:    uint64(s.r.Intn(500)),
	})
	return err
}

func simulateBatchVerify(s *simState) error {
	trader := s.randomAccount()
	commitment, err := s.commit(trader)
	if err != nil {
		return err
	}
	_, err = s.engine.BatchStakeAndVerify(s.ctx, types.MsgBatchStakeAndVerify{
		Trader:     trader,
		Amount:     s.randomBalanceAmount(trader),
		Proof:      s.randomProof(),
		Commitment: commitment,
		Latency:    uint64(s.r.Intn(500)),
	})
	return err
}

func simulateReveal(s *simState) error {
	trader := s.randomAccount()
	order, ok := s.pending[trader]
	if !ok || !s.chance(s.params.ValidRevealProb) {
		order = randBytes(s.r, 16)
	}
	_, err := s.engine.RevealTrade(s.ctx, types.MsgRevealTrade{Trader: trader, Order: order, OrderRangeProof: s.randomProof()})
	if err == nil {
		delete(s.pending, trader)
	}
	return err
}

func simulateUnstake(s *simState) error {
	trader := s.randomAccount()
	resp, err := s.engine.Trader(s.ctx, types.QueryTraderRequest{Trader: trader})
	if err != nil {
		return err
	}
	amount := uint64(1)
	if staked := resp.Account.StakedAmount; staked > 0 {
		amount = uint64(s.r.Int63n(int64(min(staked, 1<<62)))) + 1
	}
	_, err = s.engine.Unstake(s.ctx, types.MsgUnstake{Trader: trader, Amount: amount})
	return err
}

func simulateProvideLiquidity(s *simState) error {
	provider := s.randomAccount()
	_, err := s.engine.ProvideLiquidity(s.ctx, types.MsgProvideLiquidity{
		Provider:    provider,
		Amount:      s.randomBalanceAmount(provider),
		TradeVolume: uint64(s.r.Intn(1_000_000)),
	})
	return err
}

func simulateAllocateBandwidth(s *simState) error {
	_, err := s.engine.AllocateBandwidth(s.ctx, s.randomAccount())
	return err
}

func simulateUpdateParams(s *simState) error {
	current, err := s.engine.Params(s.ctx)
	if err != nil {
		return err
	}

	// accs[0] is the genesis administrator; others are refused
	authority := s.accs[0].Address.String()
	if s.r.Intn(4) == 0 {
		authority = s.randomAccount()
	}

	// lowering the strike limit below a trader's strikes breaks the
	// strike bound and the engine discards the update
	params := RandomizedModuleParams(s.r)
	params.MaxInvalidProofs = max(params.MaxInvalidProofs, current.Params.MaxInvalidProofs)

	_, err = s.engine.UpdateParams(s.ctx, types.MsgUpdateParams{Authority: authority, Params: params})
	return err
}

func randBytes(r *rand.Rand, n int) []byte {
	bz := make([]byte, n)
	_, _ = r.Read(bz)
	return bz
}

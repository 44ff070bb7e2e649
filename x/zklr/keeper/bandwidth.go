package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// ComputeBandwidth scores a trader at now. It is pure: the result depends
// only on params, the account and now.
//
//	decay     = max(DecayPeriod - (now - LastProofUpdate), 0)
//	base      = StakedAmount * decay / DecayPeriod
//	effective = base * SpeedMultiplier + TradeVolume
func ComputeBandwidth(params types.Params, acct types.TraderAccount, now int64) (types.BandwidthAllocation, error) {
	switch status := acct.Status(now).(type) {
	case types.Verified:
	case types.Expired:
		return types.BandwidthAllocation{}, types.ErrProofExpired.Wrapf("proof expired at %d, now %d", status.Expiry, now)
	default:
		if now > acct.ProofExpiry {
			return types.BandwidthAllocation{}, types.ErrProofExpired.Wrapf("proof expired at %d, now %d", acct.ProofExpiry, now)
		}
		return types.BandwidthAllocation{}, types.ErrTraderNotVerified.Wrapf("trader is %s", types.StatusName(status))
	}

	if params.DecayPeriod <= 0 {
		return types.BandwidthAllocation{}, types.ErrDivisionByZero.Wrap("decay period is zero")
	}

	// clock is non-decreasing; clamp anyway so decay never exceeds the period
	elapsed := now - acct.LastProofUpdate
	if elapsed < 0 {
		elapsed = 0
	}
	decay := params.DecayPeriod - elapsed
	if decay < 0 {
		decay = 0
	}

	base, err := SafeMulDivUint64(acct.StakedAmount, uint64(decay), uint64(params.DecayPeriod))
	if err != nil {
		return types.BandwidthAllocation{}, err
	}
	weighted, err := SafeMulUint64(base, acct.SpeedMultiplier)
	if err != nil {
		return types.BandwidthAllocation{}, err
	}
	effective, err := SafeAddUint64(weighted, acct.TradeVolume)
	if err != nil {
		return types.BandwidthAllocation{}, err
	}

	return types.BandwidthAllocation{
		EffectivePriority: effective,
		BasePriority:      base,
		DecayFactor:       decay,
		Elapsed:           elapsed,
	}, nil
}

// AllocateBandwidth scores the trader at the current block time. No state
// is mutated; the allocation is logged and emitted for observers.
func (k Keeper) AllocateBandwidth(ctx context.Context, trader sdk.AccAddress) (types.BandwidthAllocation, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.BandwidthAllocation{}, err
	}
	acct, err := k.GetTraderAccount(ctx, trader)
	if err != nil {
		return types.BandwidthAllocation{}, err
	}

	alloc, err := ComputeBandwidth(params, acct, blockTime(ctx))
	k.metrics.observeOperation("allocate_bandwidth", err)
	if err != nil {
		return types.BandwidthAllocation{}, err
	}

	k.metrics.BandwidthPriority.Observe(float64(alloc.EffectivePriority))
	k.Logger(ctx).Debug("bandwidth allocated",
		"trader", trader.String(),
		"effective_priority", alloc.EffectivePriority,
		"elapsed", alloc.Elapsed,
	)
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBandwidthAllocated,
			sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
			sdk.NewAttribute(types.AttributeKeyPriority, strconv.FormatUint(alloc.EffectivePriority, 10)),
		),
	)
	return alloc, nil
}

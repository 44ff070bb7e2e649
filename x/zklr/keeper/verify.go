package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// VerifyPriority is the commit step of commit-reveal. A rejected proof is
// penalized and fails with ErrInvalidProof. An accepted proof is
// fingerprinted, opens a new validity window, stores the order commitment,
// pays the verification fee out of stake and clears the strike count. It
// does not mark the trader verified; RevealTrade does.
func (k Keeper) VerifyPriority(ctx context.Context, trader sdk.AccAddress, proof []byte, commitment types.Digest, latency uint64) (types.MsgVerifyPriorityResponse, error) {
	var resp types.MsgVerifyPriorityResponse

	params, err := k.GetParams(ctx)
	if err != nil {
		return resp, err
	}
	if !k.verifierFor(params).IsValid(proof) {
		if err := k.penalize(ctx, trader, types.FailureInvalidProof, true); err != nil {
			k.metrics.observeOperation("verify_priority", err)
			return resp, err
		}
		err := types.ErrInvalidProof.Wrapf("trader %s: proof rejected (%d bytes)", trader, len(proof))
		k.metrics.observeOperation("verify_priority", err)
		return resp, err
	}

	err = k.atomically(ctx, func(ctx sdk.Context) error {
		global, err := k.GetGlobalState(ctx)
		if err != nil {
			return err
		}
		acct, err := k.GetTraderAccount(ctx, trader)
		if err != nil {
			return err
		}

		fee, err := k.acceptProof(ctx, params, &acct, &global, proof, commitment, latency)
		if err != nil {
			return err
		}

		if err := k.SetTraderAccount(ctx, acct); err != nil {
			return err
		}
		if err := k.SetGlobalState(ctx, global); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePriorityVerified,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyFee, strconv.FormatUint(fee, 10)),
				sdk.NewAttribute(types.AttributeKeyProofDigest, acct.ZKProofDigest.String()),
				sdk.NewAttribute(types.AttributeKeyProofExpiry, strconv.FormatInt(acct.ProofExpiry, 10)),
				sdk.NewAttribute(types.AttributeKeySpeedMultiplier, strconv.FormatUint(acct.SpeedMultiplier, 10)),
			),
		)
		k.metrics.observeTotals(globalTotals{staked: global.TotalStaked, liquidity: global.TotalLiquidity})

		resp = types.MsgVerifyPriorityResponse{
			Fee:             fee,
			ProofDigest:     acct.ZKProofDigest,
			ProofExpiry:     acct.ProofExpiry,
			SpeedMultiplier: acct.SpeedMultiplier,
		}
		return nil
	})
	k.metrics.observeOperation("verify_priority", err)
	if err != nil {
		return types.MsgVerifyPriorityResponse{}, err
	}
	return resp, nil
}

// BatchStakeAndVerify stakes amount, pays the fee on the combined stake and
// marks the trader verified in a single step, without a reveal. A rejected
// proof adds a strike but never slashes.
func (k Keeper) BatchStakeAndVerify(ctx context.Context, trader sdk.AccAddress, amount uint64, proof []byte, commitment types.Digest, latency uint64) (types.MsgBatchStakeAndVerifyResponse, error) {
	var resp types.MsgBatchStakeAndVerifyResponse

	params, err := k.GetParams(ctx)
	if err != nil {
		return resp, err
	}
	if !k.verifierFor(params).IsValid(proof) {
		if err := k.penalize(ctx, trader, types.FailureBatchInvalidProof, false); err != nil {
			k.metrics.observeOperation("batch_stake_and_verify", err)
			return resp, err
		}
		err := types.ErrInvalidProof.Wrapf("trader %s: batch proof rejected (%d bytes)", trader, len(proof))
		k.metrics.observeOperation("batch_stake_and_verify", err)
		return resp, err
	}

	err = k.atomically(ctx, func(ctx sdk.Context) error {
		global, err := k.GetGlobalState(ctx)
		if err != nil {
			return err
		}
		acct, err := k.GetTraderAccount(ctx, trader)
		if err != nil {
			return err
		}

		if err := k.addStake(ctx, params, &acct, &global, trader, amount); err != nil {
			return err
		}
		fee, err := k.acceptProof(ctx, params, &acct, &global, proof, commitment, latency)
		if err != nil {
			return err
		}
		acct.IsVerified = true

		if err := k.SetTraderAccount(ctx, acct); err != nil {
			return err
		}
		if err := k.SetGlobalState(ctx, global); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeBatchVerified,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
				sdk.NewAttribute(types.AttributeKeyFee, strconv.FormatUint(fee, 10)),
				sdk.NewAttribute(types.AttributeKeyStakedAmount, strconv.FormatUint(acct.StakedAmount, 10)),
				sdk.NewAttribute(types.AttributeKeyProofExpiry, strconv.FormatInt(acct.ProofExpiry, 10)),
			),
		)
		k.metrics.observeTotals(globalTotals{staked: global.TotalStaked, liquidity: global.TotalLiquidity})

		resp = types.MsgBatchStakeAndVerifyResponse{
			Fee:             fee,
			StakedAmount:    acct.StakedAmount,
			ProofExpiry:     acct.ProofExpiry,
			SpeedMultiplier: acct.SpeedMultiplier,
		}
		return nil
	})
	k.metrics.observeOperation("batch_stake_and_verify", err)
	if err != nil {
		return types.MsgBatchStakeAndVerifyResponse{}, err
	}
	return resp, nil
}

// acceptProof applies an accepted proof to acct: digest, commitment, validity
// window, fee on the current stake, speed multiplier and strike reset. The
// fee moves from the stake vault to the fee collector.
func (k Keeper) acceptProof(ctx sdk.Context, params types.Params, acct *types.TraderAccount, global *types.GlobalState, proof []byte, commitment types.Digest, latency uint64) (uint64, error) {
	hasher, err := hasherFor(params)
	if err != nil {
		return 0, err
	}

	now := blockTime(ctx)
	expiry, err := SafeAddInt64(now, params.ProofValidityPeriod)
	if err != nil {
		return 0, err
	}
	fee, err := SafePercent(acct.StakedAmount, params.FeePercentage)
	if err != nil {
		return 0, err
	}
	newStake, err := SafeSubUint64(acct.StakedAmount, fee)
	if err != nil {
		return 0, err
	}
	newTotal, err := SafeSubUint64(global.TotalStaked, fee)
	if err != nil {
		return 0, err
	}
	speed, err := SpeedMultiplier(params.SpeedNumerator, latency)
	if err != nil {
		return 0, err
	}
	if err := k.moveBetweenVaults(ctx, types.StakeVaultName, types.FeeCollectorName, params.StakeDenom, fee); err != nil {
		return 0, err
	}

	acct.ZKProofDigest = hasher.Hash(proof)
	acct.Commitment = commitment
	acct.LastProofUpdate = now
	acct.ProofExpiry = expiry
	acct.StakedAmount = newStake
	acct.SpeedMultiplier = speed
	acct.InvalidProofAttempts = 0
	global.TotalStaked = newTotal

	k.metrics.FeesCollected.Add(float64(fee))
	k.metrics.SpeedMultiplier.Observe(float64(speed))
	return fee, nil
}

// SpeedMultiplier returns floor(numerator / (latency + 1)).
func SpeedMultiplier(numerator, latency uint64) (uint64, error) {
	divisor, err := SafeAddUint64(latency, 1)
	if err != nil {
		return 0, err
	}
	return SafeQuoUint64(numerator, divisor)
}

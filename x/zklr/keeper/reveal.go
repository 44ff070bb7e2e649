package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// RevealTrade opens the order committed by the last accepted proof. It is
// gated by RevealDelay after that proof. A rejected range proof or an order
// that does not hash to the stored commitment is penalized like a rejected
// proof and fails with ErrInvalidReveal. A match marks the trader verified.
func (k Keeper) RevealTrade(ctx context.Context, trader sdk.AccAddress, order, orderRangeProof []byte) error {
	err := k.revealTrade(ctx, trader, order, orderRangeProof)
	k.metrics.observeOperation("reveal_trade", err)
	return err
}

func (k Keeper) revealTrade(ctx context.Context, trader sdk.AccAddress, order, orderRangeProof []byte) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	acct, err := k.GetTraderAccount(ctx, trader)
	if err != nil {
		return err
	}

	now := blockTime(ctx)
	revealAt, err := SafeAddInt64(acct.LastProofUpdate, params.RevealDelay)
	if err != nil {
		return err
	}
	if now < revealAt {
		return types.ErrRevealTooEarly.Wrapf("reveal allowed at %d, now %d", revealAt, now)
	}

	if !k.verifierFor(params).IsValid(orderRangeProof) {
		if err := k.penalize(ctx, trader, types.FailureInvalidRangeProof, true); err != nil {
			return err
		}
		return types.ErrInvalidReveal.Wrapf("trader %s: range proof rejected", trader)
	}

	hasher, err := hasherFor(params)
	if err != nil {
		return err
	}
	if hasher.Hash(order) != acct.Commitment {
		if err := k.penalize(ctx, trader, types.FailureCommitmentMismatch, true); err != nil {
			return err
		}
		return types.ErrInvalidReveal.Wrapf("trader %s: order does not match commitment", trader)
	}

	return k.atomically(ctx, func(ctx sdk.Context) error {
		acct.IsVerified = true
		if err := k.SetTraderAccount(ctx, acct); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeTradeRevealed,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyProofDigest, acct.ZKProofDigest.String()),
			),
		)
		return nil
	})
}

package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// GetParams retrieves the module parameters from the store
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	bz := k.getStore(ctx).Get(types.ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}

	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.Params{}, fmt.Errorf("GetParams: unmarshal: %w", err)
	}
	return params, nil
}

// SetParams validates and stores the module parameters
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("SetParams: marshal: %w", err)
	}
	k.getStore(ctx).Set(types.ParamsKey, bz)
	return nil
}

// hasherFor returns the commitment hasher selected by params
func hasherFor(params types.Params) (types.Hasher, error) {
	h, err := types.NewHasher(params.CommitmentHash)
	if err != nil {
		return nil, types.ErrInvalidParams.Wrap(err.Error())
	}
	return h, nil
}

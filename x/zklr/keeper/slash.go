package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	storeprefix "cosmossdk.io/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// GetNextSlashID returns the id the next slash record will receive
func (k Keeper) GetNextSlashID(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(types.NextSlashIDKey)
	if bz == nil {
		return 1
	}
	return binary.BigEndian.Uint64(bz)
}

// SetNextSlashID stores the next slash record id
func (k Keeper) SetNextSlashID(ctx context.Context, id uint64) {
	k.getStore(ctx).Set(types.NextSlashIDKey, sdk.Uint64ToBigEndian(id))
}

func (k Keeper) allocateSlashID(ctx context.Context) (uint64, error) {
	id := k.GetNextSlashID(ctx)
	next, err := SafeAddUint64(id, 1)
	if err != nil {
		return 0, err
	}
	k.SetNextSlashID(ctx, next)
	return id, nil
}

// SetSlashRecord stores a slash record and indexes it by trader
func (k Keeper) SetSlashRecord(ctx context.Context, record types.SlashRecord) error {
	trader, err := sdk.AccAddressFromBech32(record.Trader)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("slash record trader %q: %v", record.Trader, err)
	}
	bz, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("SetSlashRecord: marshal: %w", err)
	}

	store := k.getStore(ctx)
	store.Set(types.SlashRecordKey(record.ID), bz)
	store.Set(types.SlashRecordByTraderKey(trader, record.ID), []byte{})
	return nil
}

// GetSlashRecord retrieves a slash record by id
func (k Keeper) GetSlashRecord(ctx context.Context, id uint64) (types.SlashRecord, error) {
	bz := k.getStore(ctx).Get(types.SlashRecordKey(id))
	if bz == nil {
		return types.SlashRecord{}, types.ErrSlashRecordNotFound.Wrapf("id %d", id)
	}
	var record types.SlashRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return types.SlashRecord{}, fmt.Errorf("GetSlashRecord: unmarshal: %w", err)
	}
	return record, nil
}

func (k Keeper) recordSlash(ctx context.Context, trader sdk.AccAddress, amount, stakeBefore uint64, reason types.FailureKind) (uint64, error) {
	id, err := k.allocateSlashID(ctx)
	if err != nil {
		return 0, err
	}
	record := types.SlashRecord{
		ID:          id,
		Trader:      trader.String(),
		Amount:      amount,
		StakeBefore: stakeBefore,
		Reason:      reason,
		SlashedAt:   sdk.UnwrapSDKContext(ctx).BlockTime().UTC(),
	}
	if err := k.SetSlashRecord(ctx, record); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSlashRecords paginates slash records globally, or for one trader when
// trader is non-empty.
func (k Keeper) ListSlashRecords(ctx context.Context, trader sdk.AccAddress, pageReq *query.PageRequest) ([]types.SlashRecord, *query.PageResponse, error) {
	store := k.getStore(ctx)
	var (
		records []types.SlashRecord
		pageRes *query.PageResponse
		err     error
	)

	if trader.Empty() {
		view := storeprefix.NewStore(store, types.SlashRecordKeyPrefix)
		pageRes, err = query.Paginate(view, pageReq, func(_ []byte, value []byte) error {
			var rec types.SlashRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	} else {
		view := storeprefix.NewStore(store, types.SlashRecordByTraderPrefixKey(trader))
		pageRes, err = query.Paginate(view, pageReq, func(key []byte, _ []byte) error {
			id, ok := types.SlashIDFromIndexKey(key)
			if !ok {
				return nil
			}
			rec, err := k.GetSlashRecord(ctx, id)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	}

	if err != nil {
		return nil, nil, err
	}
	return records, pageRes, nil
}

// GetAllSlashRecords returns every slash record in id order
func (k Keeper) GetAllSlashRecords(ctx context.Context) ([]types.SlashRecord, error) {
	var records []types.SlashRecord
	store := k.getStore(ctx)
	view := storeprefix.NewStore(store, types.SlashRecordKeyPrefix)
	iterator := view.Iterator(nil, nil)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var rec types.SlashRecord
		if err := json.Unmarshal(iterator.Value(), &rec); err != nil {
			return nil, fmt.Errorf("GetAllSlashRecords: unmarshal: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

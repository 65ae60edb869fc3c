package queue

import (
	"context"
	"fmt"

	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/collections"
	"cosmossdk.io/collections/indexes"
	sdkmath "cosmossdk.io/math"
)

// UnlockingIndexes defines the indexes for the unlocking position queue.
type UnlockingIndexes struct {
	ByOwner *indexes.Multi[string, uint64, types.UnlockingPosition]
}

// IndexesList returns the list of indexes for the unlocking position queue.
func (i UnlockingIndexes) IndexesList() []collections.Index[uint64, types.UnlockingPosition] {
	return []collections.Index[uint64, types.UnlockingPosition]{i.ByOwner}
}

// NewUnlockingIndexes creates a new UnlockingIndexes object.
func NewUnlockingIndexes(sb *collections.SchemaBuilder) UnlockingIndexes {
	return UnlockingIndexes{
		ByOwner: indexes.NewMulti(
			sb,
			types.UnlockingPositionsByOwnerPrefix,
			types.UnlockingPositionsByOwnerName,
			collections.StringKey,
			collections.Uint64Key,
			func(_ uint64, pos types.UnlockingPosition) (string, error) {
				return pos.Owner, nil
			},
		),
	}
}

// UnlockingQueue holds vault tokens escrowed by the lockup extension.
// Positions are keyed by lockup id, so iteration order is creation order.
type UnlockingQueue struct {
	// IndexedMap is the indexed map of unlocking positions keyed by lockup id.
	IndexedMap *collections.IndexedMap[uint64, types.UnlockingPosition, UnlockingIndexes]
	// Sequence is the sequence for generating unique lockup IDs.
	Sequence collections.Sequence
}

// NewUnlockingQueue creates a new UnlockingQueue.
func NewUnlockingQueue(builder *collections.SchemaBuilder) *UnlockingQueue {
	return &UnlockingQueue{
		IndexedMap: collections.NewIndexedMap(
			builder,
			types.UnlockingPositionsKeyPrefix,
			types.UnlockingPositionsName,
			collections.Uint64Key,
			types.JSONValue[types.UnlockingPosition](),
			NewUnlockingIndexes(builder),
		),
		Sequence: collections.NewSequence(builder, types.UnlockingSequenceKey, types.UnlockingSequenceName),
	}
}

// Enqueue assigns the next lockup id to pos and stores it.
func (q *UnlockingQueue) Enqueue(ctx context.Context, pos types.UnlockingPosition) (uint64, error) {
	if err := pos.Validate(); err != nil {
		return 0, fmt.Errorf("invalid unlocking position: %w", err)
	}
	id, err := q.Sequence.Next(ctx)
	if err != nil {
		return 0, err
	}
	pos.ID = id
	return id, q.IndexedMap.Set(ctx, id, pos)
}

// Get returns the position with the given lockup id, or collections.ErrNotFound.
func (q *UnlockingQueue) Get(ctx context.Context, id uint64) (types.UnlockingPosition, error) {
	return q.IndexedMap.Get(ctx, id)
}

// Reduce lowers the escrowed amount of a position by amount, removing the
// position when nothing is left.
func (q *UnlockingQueue) Reduce(ctx context.Context, pos types.UnlockingPosition, amount sdkmath.Int) error {
	if amount.GT(pos.VaultTokenAmount) {
		return fmt.Errorf("cannot take %s from lockup %d holding %s", amount, pos.ID, pos.VaultTokenAmount)
	}
	pos.VaultTokenAmount = pos.VaultTokenAmount.Sub(amount)
	if pos.VaultTokenAmount.IsZero() {
		return q.Dequeue(ctx, pos.ID)
	}
	return q.IndexedMap.Set(ctx, pos.ID, pos)
}

// Dequeue removes a position. Removing an unknown id is a no-op.
func (q *UnlockingQueue) Dequeue(ctx context.Context, id uint64) error {
	ok, err := q.IndexedMap.Has(ctx, id)
	if err != nil || !ok {
		return err
	}
	return q.IndexedMap.Remove(ctx, id)
}

// WalkByOwner iterates over the positions of owner in lockup id order,
// starting after startAfter when it is set.
// Iteration stops when the callback returns stop=true or an error.
func (q *UnlockingQueue) WalkByOwner(ctx context.Context, owner string, startAfter *uint64, fn func(pos types.UnlockingPosition) (stop bool, err error)) error {
	iter, err := q.IndexedMap.Indexes.ByOwner.MatchExact(ctx, owner)
	if err != nil {
		return err
	}
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		id, err := iter.PrimaryKey()
		if err != nil {
			return err
		}
		if startAfter != nil && id <= *startAfter {
			continue
		}
		pos, err := q.IndexedMap.Get(ctx, id)
		if err != nil {
			return err
		}
		if stop, err := fn(pos); stop || err != nil {
			return err
		}
	}
	return nil
}

// Walk iterates over all positions in lockup id order.
func (q *UnlockingQueue) Walk(ctx context.Context, fn func(pos types.UnlockingPosition) (stop bool, err error)) error {
	return q.IndexedMap.Walk(ctx, nil, func(_ uint64, pos types.UnlockingPosition) (bool, error) {
		return fn(pos)
	})
}

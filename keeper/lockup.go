package keeper

import (
	goerrors "errors"
	"time"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/collections"
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Unlock escrows the attached vault tokens in a new unlocking position that
// matures once the lockup duration has passed.
func (k *Keeper) Unlock(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.UnlockMsg) (types.UnlockResponse, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return types.UnlockResponse{}, err
	}
	if err := validateVaultTokenFunds(cfg, info.Funds, msg.Amount); err != nil {
		return types.UnlockResponse{}, err
	}
	duration, err := k.LockupDuration.Get(ctx)
	if err != nil {
		return types.UnlockResponse{}, err
	}

	releaseAt := env.Block.Time.Add(time.Duration(duration) * time.Second)
	id, err := k.UnlockingQueue.Enqueue(ctx, types.UnlockingPosition{
		Owner:            info.Sender,
		ReleaseAt:        releaseAt,
		VaultTokenAmount: msg.Amount,
	})
	if err != nil {
		return types.UnlockResponse{}, err
	}

	k.emitEvent(ctx, types.NewEventUnlock(info.Sender, id, sdk.NewCoin(cfg.VaultToken, msg.Amount), releaseAt))
	return types.UnlockResponse{LockupID: id, ReleaseAt: releaseAt}, nil
}

// WithdrawUnlocked redeems a matured unlocking position of the sender.
func (k *Keeper) WithdrawUnlocked(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.WithdrawUnlockedMsg) (sdk.Coin, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	recipient := types.RecipientOr(msg.Recipient, info.Sender)
	if err := k.validateAddress(recipient); err != nil {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "invalid recipient %q: %s", recipient, err)
	}

	pos, err := k.getOwnedPosition(ctx, msg.LockupID, info.Sender)
	if err != nil {
		return sdk.Coin{}, err
	}
	if !pos.IsMatured(env.Block.Time) {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "lockup %d is unlocking until %s", pos.ID, pos.ReleaseAt.UTC().Format(time.RFC3339))
	}
	if err := k.UnlockingQueue.Dequeue(ctx, pos.ID); err != nil {
		return sdk.Coin{}, err
	}

	return k.redeem(ctx, env, cfg, types.EventTypeWithdrawUnlocked, info.Sender, recipient, pos.VaultTokenAmount)
}

// getOwnedPosition loads a position and checks that owner holds it.
func (k Keeper) getOwnedPosition(ctx sdk.Context, id uint64, owner string) (types.UnlockingPosition, error) {
	pos, err := k.UnlockingQueue.Get(ctx, id)
	if goerrors.Is(err, collections.ErrNotFound) {
		return types.UnlockingPosition{}, errors.Wrapf(types.ErrNotFound, "lockup %d", id)
	}
	if err != nil {
		return types.UnlockingPosition{}, err
	}
	if pos.Owner != owner {
		return types.UnlockingPosition{}, errors.Wrapf(types.ErrUnauthorized, "lockup %d is not owned by %s", id, owner)
	}
	return pos, nil
}

// consumeMaturedPositions takes amount vault tokens out of the matured
// positions of owner, oldest first.
func (k Keeper) consumeMaturedPositions(ctx sdk.Context, env runner.Env, owner string, amount sdkmath.Int) error {
	type take struct {
		pos    types.UnlockingPosition
		amount sdkmath.Int
	}
	var takes []take
	remaining := amount

	err := k.UnlockingQueue.WalkByOwner(ctx, owner, nil, func(pos types.UnlockingPosition) (bool, error) {
		if !pos.IsMatured(env.Block.Time) {
			return false, nil
		}
		t := sdkmath.MinInt(remaining, pos.VaultTokenAmount)
		takes = append(takes, take{pos: pos, amount: t})
		remaining = remaining.Sub(t)
		return remaining.IsZero(), nil
	})
	if err != nil {
		return err
	}
	if remaining.IsPositive() {
		return errors.Wrapf(types.ErrInsufficientShares, "matured unlocking positions of %s cover %s of %s",
			owner, amount.Sub(remaining), amount)
	}

	for _, t := range takes {
		if err := k.UnlockingQueue.Reduce(ctx, t.pos, t.amount); err != nil {
			return err
		}
	}
	return nil
}

// Default and maximum page sizes of the unlocking positions query.
const (
	DefaultUnlockingPositionsLimit = 10
	MaxUnlockingPositionsLimit     = 30
)

// GetUnlockingPositions pages through the positions of owner.
func (k Keeper) GetUnlockingPositions(ctx sdk.Context, req types.UnlockingPositionsQuery) ([]types.UnlockingPosition, error) {
	limit := DefaultUnlockingPositionsLimit
	if req.Limit != nil {
		limit = min(int(*req.Limit), MaxUnlockingPositionsLimit)
	}

	positions := []types.UnlockingPosition{}
	if limit == 0 {
		return positions, nil
	}
	err := k.UnlockingQueue.WalkByOwner(ctx, req.Owner, req.StartAfter, func(pos types.UnlockingPosition) (bool, error) {
		positions = append(positions, pos)
		return len(positions) >= limit, nil
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}

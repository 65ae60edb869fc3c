package keeper

import (
	"context"
	"slices"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils"

	"cosmossdk.io/collections"
	"cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Compound folds base tokens held by the vault beyond its accounted total
// assets into the total assets, raising the value of every vault token.
// Only keepers may call it. Compounding nothing is a no-op.
func (k *Keeper) Compound(ctx sdk.Context, env runner.Env, info runner.MessageInfo) (sdk.Coin, error) {
	ok, err := k.Keepers.Has(ctx, info.Sender)
	if err != nil {
		return sdk.Coin{}, err
	}
	if !ok {
		return sdk.Coin{}, errors.Wrapf(types.ErrUnauthorized, "%s is not a keeper", info.Sender)
	}

	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	unaccounted, err := k.UnaccountedAssets(ctx, env, cfg)
	if err != nil {
		return sdk.Coin{}, err
	}
	compounded := sdk.NewCoin(cfg.BaseToken, unaccounted)
	if unaccounted.IsZero() {
		return compounded, nil
	}

	totalAssets, totalShares, err := k.Totals(ctx, cfg)
	if err != nil {
		return sdk.Coin{}, err
	}
	if totalShares.IsZero() {
		return sdk.Coin{}, errors.Wrap(types.ErrInvalidRequest, "cannot compound into a vault without vault tokens")
	}
	if err := k.TotalAssets.Set(ctx, totalAssets.Add(unaccounted)); err != nil {
		return sdk.Coin{}, err
	}

	k.getLogger(ctx).Debug("compounded", "keeper", info.Sender, "assets", compounded)
	k.emitEvent(ctx, types.NewEventCompound(info.Sender, compounded))
	return compounded, nil
}

// UpdateKeepers changes the keeper set. Only the admin may call it.
func (k *Keeper) UpdateKeepers(ctx sdk.Context, info runner.MessageInfo, msg types.UpdateKeepersMsg) error {
	if _, err := k.requireAdmin(ctx, info.Sender); err != nil {
		return err
	}
	invalid := slices.Collect(utils.Filter(slices.Concat(msg.Add, msg.Remove), func(addr string) bool {
		return k.validateAddress(addr) != nil
	}))
	if len(invalid) > 0 {
		return errors.Wrapf(types.ErrInvalidRequest, "invalid keeper addresses: %v", invalid)
	}
	if err := addAll(ctx, k.Keepers, msg.Add); err != nil {
		return err
	}
	return removeAll(ctx, k.Keepers, msg.Remove)
}

// GetKeepers returns the keeper set in address order.
func (k Keeper) GetKeepers(ctx sdk.Context) ([]string, error) {
	iter, err := k.Keepers.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	keepers, err := iter.Keys()
	if err != nil {
		return nil, err
	}
	if keepers == nil {
		keepers = []string{}
	}
	return keepers, nil
}

func addAll(ctx context.Context, set collections.KeySet[string], addrs []string) error {
	for _, addr := range addrs {
		if err := set.Set(ctx, addr); err != nil {
			return err
		}
	}
	return nil
}

func removeAll(ctx context.Context, set collections.KeySet[string], addrs []string) error {
	for _, addr := range addrs {
		if err := set.Remove(ctx, addr); err != nil {
			return err
		}
	}
	return nil
}

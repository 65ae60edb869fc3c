package keeper

import (
	"slices"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ForceRedeem redeems the attached vault tokens immediately, bypassing any
// lockup. Only whitelisted addresses may call it.
func (k *Keeper) ForceRedeem(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.ForceRedeemMsg) (sdk.Coin, error) {
	if err := k.requireWhitelisted(ctx, info.Sender); err != nil {
		return sdk.Coin{}, err
	}
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	recipient := types.RecipientOr(msg.Recipient, info.Sender)
	if err := k.validateAddress(recipient); err != nil {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "invalid recipient %q: %s", recipient, err)
	}
	if err := validateVaultTokenFunds(cfg, info.Funds, msg.Amount); err != nil {
		return sdk.Coin{}, err
	}

	return k.redeem(ctx, env, cfg, types.EventTypeForceRedeem, info.Sender, recipient, msg.Amount)
}

// ForceWithdrawUnlocking redeems all or part of an unlocking position of
// the sender before it matures. Only whitelisted addresses may call it.
func (k *Keeper) ForceWithdrawUnlocking(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.ForceWithdrawUnlockingMsg) (sdk.Coin, error) {
	if err := k.requireWhitelisted(ctx, info.Sender); err != nil {
		return sdk.Coin{}, err
	}
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
	amount := pos.VaultTokenAmount
	if msg.Amount != nil {
		amount = *msg.Amount
	}
	if amount.GT(pos.VaultTokenAmount) {
		return sdk.Coin{}, errors.Wrapf(types.ErrInsufficientShares, "lockup %d holds %s, requested %s", pos.ID, pos.VaultTokenAmount, amount)
	}
	if err := k.UnlockingQueue.Reduce(ctx, pos, amount); err != nil {
		return sdk.Coin{}, err
	}

	return k.redeem(ctx, env, cfg, types.EventTypeForceRedeem, info.Sender, recipient, amount)
}

// UpdateForceWithdrawWhitelist changes the force withdraw whitelist. Only the
// admin may call it.
func (k *Keeper) UpdateForceWithdrawWhitelist(ctx sdk.Context, info runner.MessageInfo, msg types.UpdateForceWithdrawWhitelistMsg) error {
	if _, err := k.requireAdmin(ctx, info.Sender); err != nil {
		return err
	}
	for _, addr := range slices.Concat(msg.AddAddresses, msg.RemoveAddresses) {
		if err := k.validateAddress(addr); err != nil {
			return errors.Wrapf(types.ErrInvalidRequest, "invalid address %q: %s", addr, err)
		}
	}
	if err := addAll(ctx, k.ForceWithdrawWhitelist, msg.AddAddresses); err != nil {
		return err
	}
	return removeAll(ctx, k.ForceWithdrawWhitelist, msg.RemoveAddresses)
}

func (k Keeper) requireWhitelisted(ctx sdk.Context, sender string) error {
	ok, err := k.ForceWithdrawWhitelist.Has(ctx, sender)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(types.ErrUnauthorized, "%s is not whitelisted for force withdrawals", sender)
	}
	return nil
}

package keeper

import (
	"fmt"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// CreateVault initializes a new vault from msg.
//
// It performs the following steps:
//  1. Validates the message and every address it names.
//  2. Creates the vault token through the token factory. The creation fee is
//     paid from the funds attached to the instantiation.
//  3. Stores the config, the standard info and the state of each enabled extension.
//  4. Emits an instantiate event.
func (k *Keeper) CreateVault(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.InstantiateMsg) (types.Config, error) {
	if err := msg.ValidateBasic(); err != nil {
		return types.Config{}, err
	}

	admin := types.RecipientOr(msg.Admin, info.Sender)
	addrs := []string{admin}
	if exts := msg.Extensions; exts != nil {
		if exts.Keeper != nil {
			addrs = append(addrs, exts.Keeper.Keepers...)
		}
		if exts.ForceUnlock != nil {
			addrs = append(addrs, exts.ForceUnlock.Whitelist...)
		}
	}
	for _, addr := range addrs {
		if err := k.validateAddress(addr); err != nil {
			return types.Config{}, errors.Wrapf(types.ErrInvalidRequest, "invalid address %q: %s", addr, err)
		}
	}

	vaultToken, err := k.TokenFactoryKeeper.CreateDenom(ctx, env.Contract.Address, types.VaultTokenSubdenom)
	if err != nil {
		return types.Config{}, fmt.Errorf("failed to create vault token: %w", err)
	}

	cfg := types.Config{Admin: admin, BaseToken: msg.BaseToken, VaultToken: vaultToken}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, errors.Wrap(types.ErrInvalidRequest, err.Error())
	}
	if err := k.Config.Set(ctx, cfg); err != nil {
		return types.Config{}, err
	}
	if err := k.TotalAssets.Set(ctx, sdkmath.ZeroInt()); err != nil {
		return types.Config{}, err
	}

	extensions := msg.Extensions.Enabled()
	standardInfo := types.VaultStandardInfoResponse{Version: types.VaultStandardVersion, Extensions: extensions}
	if err := k.VaultStandardInfo.Set(ctx, standardInfo); err != nil {
		return types.Config{}, err
	}

	if exts := msg.Extensions; exts != nil {
		if exts.Keeper != nil {
			if err := addAll(ctx, k.Keepers, exts.Keeper.Keepers); err != nil {
				return types.Config{}, err
			}
		}
		if exts.Lockup != nil {
			if err := k.LockupDuration.Set(ctx, exts.Lockup.DurationSeconds); err != nil {
				return types.Config{}, err
			}
		}
		if exts.ForceUnlock != nil {
			if err := addAll(ctx, k.ForceWithdrawWhitelist, exts.ForceUnlock.Whitelist); err != nil {
				return types.Config{}, err
			}
		}
	}

	k.getLogger(ctx).Info("created vault", "address", env.Contract.Address, "vault_token", vaultToken, "extensions", extensions)
	k.emitEvent(ctx, types.NewEventInstantiate(cfg, extensions))
	return cfg, nil
}

// Deposit exchanges base tokens for newly minted vault tokens.
//
// With funds attached they must be exactly msg.Amount of the base token.
// Without funds the vault consumes base tokens previously transferred to it
// that are not yet part of its total assets.
//
// Returns the minted vault tokens.
func (k *Keeper) Deposit(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.DepositMsg) (sdk.Coin, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	recipient := types.RecipientOr(msg.Recipient, info.Sender)
	if err := k.validateAddress(recipient); err != nil {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "invalid recipient %q: %s", recipient, err)
	}
	if err := k.validateDepositFunds(ctx, env, cfg, info.Funds, msg.Amount); err != nil {
		return sdk.Coin{}, err
	}

	shares, err := k.PreviewDeposit(ctx, cfg, msg.Amount)
	if err != nil {
		return sdk.Coin{}, fmt.Errorf("failed to calculate shares from assets: %w", err)
	}
	if shares.IsZero() {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "deposit amount %s is too small and results in zero vault tokens", msg.Amount)
	}

	totalAssets, err := k.TotalAssets.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	if err := k.TotalAssets.Set(ctx, totalAssets.Add(msg.Amount)); err != nil {
		return sdk.Coin{}, err
	}
	if err := k.TokenFactoryKeeper.Mint(ctx, env.Contract.Address, shares, recipient); err != nil {
		return sdk.Coin{}, fmt.Errorf("failed to mint vault tokens: %w", err)
	}

	k.emitEvent(ctx, types.NewEventDeposit(info.Sender, recipient, sdk.NewCoin(cfg.BaseToken, msg.Amount), shares))
	return shares, nil
}

// Redeem burns vault tokens and pays out base tokens.
//
// Without the lockup extension the vault tokens are attached as funds. With
// lockup enabled vault tokens are first escrowed by an unlock, and redeem
// finalizes the sender's matured unlocking positions, oldest first.
//
// Returns the base tokens paid out.
func (k *Keeper) Redeem(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.RedeemMsg) (sdk.Coin, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	recipient := types.RecipientOr(msg.Recipient, info.Sender)
	if err := k.validateAddress(recipient); err != nil {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "invalid recipient %q: %s", recipient, err)
	}

	lockup, err := k.isExtensionEnabled(ctx, types.ExtensionLockup)
	if err != nil {
		return sdk.Coin{}, err
	}
	if lockup {
		if !info.Funds.Empty() {
			return sdk.Coin{}, errors.Wrap(types.ErrInvalidFunds, "vault tokens must be unlocked before they can be redeemed")
		}
		if err := k.consumeMaturedPositions(ctx, env, info.Sender, msg.Amount); err != nil {
			return sdk.Coin{}, err
		}
	} else if err := validateVaultTokenFunds(cfg, info.Funds, msg.Amount); err != nil {
		return sdk.Coin{}, err
	}

	return k.redeem(ctx, env, cfg, types.EventTypeRedeem, info.Sender, recipient, msg.Amount)
}

// redeem burns shares already held by the vault and sends the base tokens
// they are worth to recipient.
func (k *Keeper) redeem(ctx sdk.Context, env runner.Env, cfg types.Config, eventType, sender, recipient string, shares sdkmath.Int) (sdk.Coin, error) {
	assets, err := k.PreviewRedeem(ctx, cfg, shares)
	if err != nil {
		return sdk.Coin{}, fmt.Errorf("failed to calculate assets from shares: %w", err)
	}
	if assets.IsZero() {
		return sdk.Coin{}, errors.Wrapf(types.ErrInvalidRequest, "redeem amount %s is too small and results in zero assets", shares)
	}

	totalAssets, err := k.TotalAssets.Get(ctx)
	if err != nil {
		return sdk.Coin{}, err
	}
	if assets.Amount.GT(totalAssets) {
		k.getLogger(ctx).Error("redeem exceeds total assets", "assets", assets, "total_assets", totalAssets)
		return sdk.Coin{}, fmt.Errorf("redeem of %s exceeds total assets %s", assets, totalAssets)
	}

	sharesCoin := sdk.NewCoin(cfg.VaultToken, shares)
	if err := k.TokenFactoryKeeper.Burn(ctx, env.Contract.Address, sharesCoin, env.Contract.Address); err != nil {
		return sdk.Coin{}, fmt.Errorf("failed to burn vault tokens: %w", err)
	}
	if err := k.TotalAssets.Set(ctx, totalAssets.Sub(assets.Amount)); err != nil {
		return sdk.Coin{}, err
	}
	if err := k.BankKeeper.SendCoins(ctx, env.Contract.Address, recipient, sdk.NewCoins(assets)); err != nil {
		return sdk.Coin{}, fmt.Errorf("failed to send base tokens to %s: %w", recipient, err)
	}

	k.emitEvent(ctx, types.NewEventRedeem(eventType, sender, recipient, sharesCoin, assets))
	return assets, nil
}

func (k Keeper) validateDepositFunds(ctx sdk.Context, env runner.Env, cfg types.Config, funds sdk.Coins, amount sdkmath.Int) error {
	if funds.Empty() {
		unaccounted, err := k.UnaccountedAssets(ctx, env, cfg)
		if err != nil {
			return err
		}
		if unaccounted.LT(amount) {
			return errors.Wrapf(types.ErrInsufficientFunds, "vault holds %s%s not yet deposited, deposit requires %s%s",
				unaccounted, cfg.BaseToken, amount, cfg.BaseToken)
		}
		return nil
	}
	if len(funds) != 1 || funds[0].Denom != cfg.BaseToken {
		return errors.Wrapf(types.ErrInvalidFunds, "expected only %s, got %s", cfg.BaseToken, funds)
	}
	switch got := funds[0].Amount; {
	case got.LT(amount):
		return errors.Wrapf(types.ErrInsufficientFunds, "sent %s, deposit requires %s%s", funds, amount, cfg.BaseToken)
	case got.GT(amount):
		return errors.Wrapf(types.ErrInvalidFunds, "sent %s, deposit requires exactly %s%s", funds, amount, cfg.BaseToken)
	}
	return nil
}

func validateVaultTokenFunds(cfg types.Config, funds sdk.Coins, amount sdkmath.Int) error {
	if len(funds) != 1 || funds[0].Denom != cfg.VaultToken {
		return errors.Wrapf(types.ErrInvalidFunds, "expected only %s, got %s", cfg.VaultToken, funds)
	}
	switch got := funds[0].Amount; {
	case got.LT(amount):
		return errors.Wrapf(types.ErrInsufficientShares, "sent %s, requires %s%s", funds, amount, cfg.VaultToken)
	case got.GT(amount):
		return errors.Wrapf(types.ErrInvalidFunds, "sent %s, requires exactly %s%s", funds, amount, cfg.VaultToken)
	}
	return nil
}

func (k Keeper) isExtensionEnabled(ctx sdk.Context, name string) (bool, error) {
	info, err := k.VaultStandardInfo.Get(ctx)
	if err != nil {
		return false, err
	}
	return info.HasExtension(name), nil
}

// requireAdmin fails unless sender is the vault admin.
func (k Keeper) requireAdmin(ctx sdk.Context, sender string) (types.Config, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return types.Config{}, err
	}
	if sender != cfg.Admin {
		return types.Config{}, errors.Wrapf(types.ErrUnauthorized, "%s is not the vault admin", sender)
	}
	return cfg, nil
}

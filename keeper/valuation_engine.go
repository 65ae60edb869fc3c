package keeper

import (
	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils"

	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Totals returns the accounted total assets and the vault token supply.
// Vault tokens escrowed by the lockup extension are part of the supply.
func (k Keeper) Totals(ctx sdk.Context, cfg types.Config) (totalAssets, totalShares sdkmath.Int, err error) {
	totalAssets, err = k.TotalAssets.Get(ctx)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	supply, err := k.BankKeeper.GetSupply(ctx, cfg.VaultToken)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	return totalAssets, supply.Amount, nil
}

// ConvertToShares returns the vault tokens an idealized, fee-free deposit of
// assets base tokens is worth in the current state.
func (k Keeper) ConvertToShares(ctx sdk.Context, cfg types.Config, assets sdkmath.Int) (sdk.Coin, error) {
	totalAssets, totalShares, err := k.Totals(ctx, cfg)
	if err != nil {
		return sdk.Coin{}, err
	}
	return utils.CalculateSharesFromAssets(assets, totalAssets, totalShares, cfg.VaultToken)
}

// ConvertToAssets returns the base tokens an idealized, fee-free redeem of
// shares vault tokens is worth in the current state.
func (k Keeper) ConvertToAssets(ctx sdk.Context, cfg types.Config, shares sdkmath.Int) (sdk.Coin, error) {
	totalAssets, totalShares, err := k.Totals(ctx, cfg)
	if err != nil {
		return sdk.Coin{}, err
	}
	return utils.CalculateAssetsFromShares(shares, totalShares, totalAssets, cfg.BaseToken)
}

// PreviewDeposit returns the vault tokens a deposit of assets would mint now.
// The mock vault charges no deposit fee, so this equals ConvertToShares.
func (k Keeper) PreviewDeposit(ctx sdk.Context, cfg types.Config, assets sdkmath.Int) (sdk.Coin, error) {
	return k.ConvertToShares(ctx, cfg, assets)
}

// PreviewRedeem returns the base tokens a redeem of shares would release now.
// The mock vault charges no redeem fee, so this equals ConvertToAssets.
func (k Keeper) PreviewRedeem(ctx sdk.Context, cfg types.Config, shares sdkmath.Int) (sdk.Coin, error) {
	return k.ConvertToAssets(ctx, cfg, shares)
}

// UnaccountedAssets returns the base tokens held by the vault beyond its
// accounted total assets. These are tokens transferred to the vault outside
// of a deposit.
func (k Keeper) UnaccountedAssets(ctx sdk.Context, env runner.Env, cfg types.Config) (sdkmath.Int, error) {
	balance, err := k.BankKeeper.GetBalance(ctx, env.Contract.Address, cfg.BaseToken)
	if err != nil {
		return sdkmath.Int{}, err
	}
	totalAssets, err := k.TotalAssets.Get(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if balance.Amount.LT(totalAssets) {
		return sdkmath.ZeroInt(), nil
	}
	return balance.Amount.Sub(totalAssets), nil
}

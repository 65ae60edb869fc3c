package keeper

import (
	goerrors "errors"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/collections"
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// QueryServer answers query messages. Queries never write state.
type QueryServer struct {
	*Keeper
}

// NewQueryServer creates a new QueryServer for the mock vault.
func NewQueryServer(keeper *Keeper) QueryServer {
	return QueryServer{Keeper: keeper}
}

// Query handles a validated query message and returns the response to be
// JSON encoded.
func (k QueryServer) Query(ctx sdk.Context, env runner.Env, req types.QueryMsg) (any, error) {
	switch {
	case req.VaultStandardInfo != nil:
		return k.VaultStandardInfo(ctx)
	case req.Info != nil:
		return k.Info(ctx)
	case req.PreviewDeposit != nil:
		return k.PreviewDeposit(ctx, req.PreviewDeposit.Amount)
	case req.PreviewRedeem != nil:
		return k.PreviewRedeem(ctx, req.PreviewRedeem.Amount)
	case req.TotalAssets != nil:
		return k.TotalAssets(ctx)
	case req.TotalVaultTokenSupply != nil:
		return k.TotalVaultTokenSupply(ctx)
	case req.ConvertToShares != nil:
		return k.ConvertToShares(ctx, req.ConvertToShares.Amount)
	case req.ConvertToAssets != nil:
		return k.ConvertToAssets(ctx, req.ConvertToAssets.Amount)
	case req.VaultExtension != nil:
		return k.queryExtension(ctx, *req.VaultExtension)
	}
	return nil, errors.Wrap(types.ErrInvalidRequest, "empty query message")
}

func (k QueryServer) queryExtension(ctx sdk.Context, req types.ExtensionQueryMsg) (any, error) {
	name := req.Name()
	enabled, err := k.isExtensionEnabled(ctx, name)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, errors.Wrapf(types.ErrUnknownExtension, "%s is not enabled on this vault", name)
	}

	switch {
	case req.Keeper != nil:
		return k.GetKeepers(ctx)
	case req.Lockup.UnlockingPositions != nil:
		return k.GetUnlockingPositions(ctx, *req.Lockup.UnlockingPositions)
	case req.Lockup.UnlockingPosition != nil:
		pos, err := k.UnlockingQueue.Get(ctx, req.Lockup.UnlockingPosition.LockupID)
		if goerrors.Is(err, collections.ErrNotFound) {
			return nil, errors.Wrapf(types.ErrNotFound, "lockup %d", req.Lockup.UnlockingPosition.LockupID)
		}
		return pos, err
	default:
		duration, err := k.LockupDuration.Get(ctx)
		if err != nil {
			return nil, err
		}
		return types.LockupDurationResponse{DurationSeconds: duration}, nil
	}
}

// VaultStandardInfo returns the standard version and enabled extensions.
func (k QueryServer) VaultStandardInfo(ctx sdk.Context) (types.VaultStandardInfoResponse, error) {
	return k.Keeper.VaultStandardInfo.Get(ctx)
}

// Info returns the base and vault tokens.
func (k QueryServer) Info(ctx sdk.Context) (types.VaultInfoResponse, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return types.VaultInfoResponse{}, err
	}
	return types.VaultInfoResponse{BaseToken: cfg.BaseToken, VaultToken: cfg.VaultToken}, nil
}

func (k QueryServer) PreviewDeposit(ctx sdk.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	return k.convert(ctx, amount, k.Keeper.PreviewDeposit)
}

func (k QueryServer) PreviewRedeem(ctx sdk.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	return k.convert(ctx, amount, k.Keeper.PreviewRedeem)
}

func (k QueryServer) ConvertToShares(ctx sdk.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	return k.convert(ctx, amount, k.Keeper.ConvertToShares)
}

func (k QueryServer) ConvertToAssets(ctx sdk.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	return k.convert(ctx, amount, k.Keeper.ConvertToAssets)
}

// TotalAssets returns the base tokens the vault accounts for.
func (k QueryServer) TotalAssets(ctx sdk.Context) (sdkmath.Int, error) {
	return k.Keeper.TotalAssets.Get(ctx)
}

// TotalVaultTokenSupply returns the vault token supply, including tokens
// escrowed in unlocking positions.
func (k QueryServer) TotalVaultTokenSupply(ctx sdk.Context) (sdkmath.Int, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	supply, err := k.BankKeeper.GetSupply(ctx, cfg.VaultToken)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return supply.Amount, nil
}

func (k QueryServer) convert(ctx sdk.Context, amount sdkmath.Int, fn func(sdk.Context, types.Config, sdkmath.Int) (sdk.Coin, error)) (sdkmath.Int, error) {
	cfg, err := k.Config.Get(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	coin, err := fn(ctx, cfg, amount)
	if err != nil {
		return sdkmath.Int{}, errors.Wrap(types.ErrInvalidRequest, err.Error())
	}
	return coin.Amount, nil
}

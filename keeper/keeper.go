package keeper

import (
	"github.com/provlabs/vault-standard/queue"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/address"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Keeper holds the state of one mock vault contract instance. It is built
// over the contract's own store for the duration of a call.
type Keeper struct {
	schema       collections.Schema
	addressCodec address.Codec

	BankKeeper         types.BankKeeper
	TokenFactoryKeeper types.TokenFactoryKeeper

	Config                 collections.Item[types.Config]
	VaultStandardInfo      collections.Item[types.VaultStandardInfoResponse]
	TotalAssets            collections.Item[sdkmath.Int]
	Keepers                collections.KeySet[string]
	ForceWithdrawWhitelist collections.KeySet[string]
	LockupDuration         collections.Item[uint64]
	UnlockingQueue         *queue.UnlockingQueue
}

func NewKeeper(
	storeService store.KVStoreService,
	addressCodec address.Codec,
	bankKeeper types.BankKeeper,
	tokenFactoryKeeper types.TokenFactoryKeeper,
) *Keeper {
	builder := collections.NewSchemaBuilder(storeService)

	keeper := &Keeper{
		addressCodec:           addressCodec,
		BankKeeper:             bankKeeper,
		TokenFactoryKeeper:     tokenFactoryKeeper,
		Config:                 collections.NewItem(builder, types.ConfigKey, types.ConfigName, types.JSONValue[types.Config]()),
		VaultStandardInfo:      collections.NewItem(builder, types.VaultStandardInfoKey, types.VaultStandardInfoName, types.JSONValue[types.VaultStandardInfoResponse]()),
		TotalAssets:            collections.NewItem(builder, types.TotalAssetsKey, types.TotalAssetsName, sdk.IntValue),
		Keepers:                collections.NewKeySet(builder, types.KeepersKeyPrefix, types.KeepersName, collections.StringKey),
		ForceWithdrawWhitelist: collections.NewKeySet(builder, types.ForceWithdrawWhitelistKeyPrefix, types.ForceWithdrawWhitelistName, collections.StringKey),
		LockupDuration:         collections.NewItem(builder, types.LockupDurationKey, types.LockupDurationName, collections.Uint64Value),
		UnlockingQueue:         queue.NewUnlockingQueue(builder),
	}

	schema, err := builder.Build()
	if err != nil {
		panic(err)
	}

	keeper.schema = schema
	return keeper
}

// getLogger returns a logger with mock vault context.
func (k Keeper) getLogger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "contract/"+types.ContractName)
}

func (k Keeper) emitEvent(ctx sdk.Context, event sdk.Event) {
	ctx.EventManager().EmitEvent(event)
}

// validateAddress checks addr against the chain's bech32 prefix.
func (k Keeper) validateAddress(addr string) error {
	_, err := k.addressCodec.StringToBytes(addr)
	return err
}

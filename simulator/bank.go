package simulator

import (
	"context"
	goerrors "errors"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/address"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

var (
	BalancesPrefix = collections.NewPrefix(0)
	SupplyPrefix   = collections.NewPrefix(1)
)

// Bank is a minimal ledger of balances and supplies keyed by bech32 address.
type Bank struct {
	addressCodec address.Codec

	Balances collections.Map[collections.Pair[string, string], math.Int]
	Supply   collections.Map[string, math.Int]
}

func NewBank(storeService corestore.KVStoreService, addressCodec address.Codec) *Bank {
	builder := collections.NewSchemaBuilder(storeService)
	bank := &Bank{
		addressCodec: addressCodec,
		Balances: collections.NewMap(builder, BalancesPrefix, "balances",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey), sdk.IntValue),
		Supply: collections.NewMap(builder, SupplyPrefix, "supply", collections.StringKey, sdk.IntValue),
	}
	if _, err := builder.Build(); err != nil {
		panic(err)
	}
	return bank
}

// GetBalance returns the balance of addr in denom, zero if it holds none.
func (b *Bank) GetBalance(ctx context.Context, addr, denom string) (sdk.Coin, error) {
	amount, err := getOrZero(ctx, b.Balances, collections.Join(addr, denom))
	if err != nil {
		return sdk.Coin{}, err
	}
	return sdk.NewCoin(denom, amount), nil
}

// GetAllBalances returns every non-zero balance of addr.
func (b *Bank) GetAllBalances(ctx context.Context, addr string) (sdk.Coins, error) {
	iter, err := b.Balances.Iterate(ctx, collections.NewPrefixedPairRange[string, string](addr))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	coins := sdk.NewCoins()
	for ; iter.Valid(); iter.Next() {
		kv, err := iter.KeyValue()
		if err != nil {
			return nil, err
		}
		coins = coins.Add(sdk.NewCoin(kv.Key.K2(), kv.Value))
	}
	return coins, nil
}

// GetSupply returns the total supply of denom.
func (b *Bank) GetSupply(ctx context.Context, denom string) (sdk.Coin, error) {
	amount, err := getOrZero(ctx, b.Supply, denom)
	if err != nil {
		return sdk.Coin{}, err
	}
	return sdk.NewCoin(denom, amount), nil
}

// SendCoins moves amt from one account to another.
func (b *Bank) SendCoins(ctx context.Context, from, to string, amt sdk.Coins) error {
	if err := b.validate(amt, from, to); err != nil {
		return err
	}
	for _, coin := range amt {
		if err := b.subBalance(ctx, from, coin); err != nil {
			return err
		}
		if err := b.addBalance(ctx, to, coin); err != nil {
			return err
		}
	}
	return nil
}

// MintCoins creates amt in the account of to.
func (b *Bank) MintCoins(ctx context.Context, to string, amt sdk.Coins) error {
	if err := b.validate(amt, to); err != nil {
		return err
	}
	for _, coin := range amt {
		if err := b.addBalance(ctx, to, coin); err != nil {
			return err
		}
		if err := b.addSupply(ctx, coin.Denom, coin.Amount); err != nil {
			return err
		}
	}
	return nil
}

// BurnCoins destroys amt held by from.
func (b *Bank) BurnCoins(ctx context.Context, from string, amt sdk.Coins) error {
	if err := b.validate(amt, from); err != nil {
		return err
	}
	for _, coin := range amt {
		if err := b.subBalance(ctx, from, coin); err != nil {
			return err
		}
		if err := b.addSupply(ctx, coin.Denom, coin.Amount.Neg()); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) validate(amt sdk.Coins, addrs ...string) error {
	if err := amt.Validate(); err != nil {
		return errors.Wrap(sdkerrors.ErrInvalidCoins, err.Error())
	}
	for _, addr := range addrs {
		if _, err := b.addressCodec.StringToBytes(addr); err != nil {
			return errors.Wrapf(sdkerrors.ErrInvalidAddress, "%q: %s", addr, err)
		}
	}
	return nil
}

func (b *Bank) addBalance(ctx context.Context, addr string, coin sdk.Coin) error {
	key := collections.Join(addr, coin.Denom)
	balance, err := getOrZero(ctx, b.Balances, key)
	if err != nil {
		return err
	}
	return b.Balances.Set(ctx, key, balance.Add(coin.Amount))
}

func (b *Bank) subBalance(ctx context.Context, addr string, coin sdk.Coin) error {
	key := collections.Join(addr, coin.Denom)
	balance, err := getOrZero(ctx, b.Balances, key)
	if err != nil {
		return err
	}
	if balance.LT(coin.Amount) {
		return errors.Wrapf(sdkerrors.ErrInsufficientFunds, "spendable balance %s%s of %s is smaller than %s", balance, coin.Denom, addr, coin)
	}
	remaining := balance.Sub(coin.Amount)
	if remaining.IsZero() {
		return b.Balances.Remove(ctx, key)
	}
	return b.Balances.Set(ctx, key, remaining)
}

func (b *Bank) addSupply(ctx context.Context, denom string, delta math.Int) error {
	supply, err := getOrZero(ctx, b.Supply, denom)
	if err != nil {
		return err
	}
	supply = supply.Add(delta)
	if supply.IsNegative() {
		return errors.Wrapf(sdkerrors.ErrInsufficientFunds, "supply of %s would become negative", denom)
	}
	if supply.IsZero() {
		return b.Supply.Remove(ctx, denom)
	}
	return b.Supply.Set(ctx, denom, supply)
}

func getOrZero[K any](ctx context.Context, m collections.Map[K, math.Int], key K) (math.Int, error) {
	amount, err := m.Get(ctx, key)
	if goerrors.Is(err, collections.ErrNotFound) {
		return math.ZeroInt(), nil
	}
	return amount, err
}

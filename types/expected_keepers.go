package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper is the ledger a vault moves tokens on. Addresses are bech32
// strings as seen by contracts.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr, denom string) (sdk.Coin, error)
	GetSupply(ctx context.Context, denom string) (sdk.Coin, error)
	SendCoins(ctx context.Context, from, to string, amt sdk.Coins) error
}

// TokenFactoryKeeper creates and administers vault token denoms.
type TokenFactoryKeeper interface {
	CreateDenom(ctx context.Context, creator, subdenom string) (string, error)
	Mint(ctx context.Context, admin string, amount sdk.Coin, to string) error
	Burn(ctx context.Context, admin string, amount sdk.Coin, from string) error
}

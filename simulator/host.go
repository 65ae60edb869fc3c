package simulator

import (
	"context"

	"github.com/provlabs/vault-standard/runner"

	"cosmossdk.io/core/address"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// contractHost is the environment of one contract instance. A contract may
// read any balance but only move, create, mint and burn as itself.
type contractHost struct {
	app          *App
	addr         string
	storeService corestore.KVStoreService
}

var _ runner.Host = contractHost{}

func (h contractHost) StoreService() corestore.KVStoreService {
	return h.storeService
}

func (h contractHost) AddressCodec() address.Codec {
	return h.app.addressCodec
}

func (h contractHost) GetBalance(ctx context.Context, addr, denom string) (sdk.Coin, error) {
	return h.app.Bank.GetBalance(ctx, addr, denom)
}

func (h contractHost) GetSupply(ctx context.Context, denom string) (sdk.Coin, error) {
	return h.app.Bank.GetSupply(ctx, denom)
}

func (h contractHost) SendCoins(ctx context.Context, from, to string, amt sdk.Coins) error {
	if err := h.requireSelf(from); err != nil {
		return err
	}
	return h.app.Bank.SendCoins(ctx, from, to, amt)
}

func (h contractHost) CreateDenom(ctx context.Context, creator, subdenom string) (string, error) {
	if err := h.requireSelf(creator); err != nil {
		return "", err
	}
	return h.app.TokenFactory.CreateDenom(ctx, creator, subdenom)
}

func (h contractHost) Mint(ctx context.Context, admin string, amount sdk.Coin, to string) error {
	if err := h.requireSelf(admin); err != nil {
		return err
	}
	return h.app.TokenFactory.Mint(ctx, admin, amount, to)
}

func (h contractHost) Burn(ctx context.Context, admin string, amount sdk.Coin, from string) error {
	if err := h.requireSelf(admin); err != nil {
		return err
	}
	return h.app.TokenFactory.Burn(ctx, admin, amount, from)
}

func (h contractHost) requireSelf(addr string) error {
	if addr != h.addr {
		return errors.Wrapf(sdkerrors.ErrUnauthorized, "contract %s cannot act as %s", h.addr, addr)
	}
	return nil
}

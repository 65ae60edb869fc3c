package simulator

import (
	"context"
	goerrors "errors"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	tftypes "github.com/strangelove-ventures/tokenfactory/x/tokenfactory/types"
)

var DenomAdminsPrefix = collections.NewPrefix(0)

// TokenFactory creates factory/{creator}/{subdenom} denoms and lets their
// admin mint and burn them.
type TokenFactory struct {
	bank   *Bank
	params tftypes.Params

	DenomAdmins collections.Map[string, string]
}

func NewTokenFactory(storeService corestore.KVStoreService, bank *Bank, params tftypes.Params) *TokenFactory {
	builder := collections.NewSchemaBuilder(storeService)
	tf := &TokenFactory{
		bank:        bank,
		params:      params,
		DenomAdmins: collections.NewMap(builder, DenomAdminsPrefix, "denom_admins", collections.StringKey, collections.StringValue),
	}
	if _, err := builder.Build(); err != nil {
		panic(err)
	}
	return tf
}

// CreateDenom creates a new denom administered by creator, charging the
// denom creation fee from creator.
func (tf *TokenFactory) CreateDenom(ctx context.Context, creator, subdenom string) (string, error) {
	denom, err := tftypes.GetTokenDenom(creator, subdenom)
	if err != nil {
		return "", err
	}
	exists, err := tf.DenomAdmins.Has(ctx, denom)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.Wrapf(tftypes.ErrDenomExists, "denom: %s", denom)
	}

	if fee := tf.params.DenomCreationFee; !fee.IsZero() {
		if err := tf.bank.BurnCoins(ctx, creator, fee); err != nil {
			return "", errors.Wrapf(err, "unable to pay denom creation fee of %s", fee)
		}
	}
	if err := tf.DenomAdmins.Set(ctx, denom, creator); err != nil {
		return "", err
	}
	return denom, nil
}

// Mint mints amount to the account of to.
func (tf *TokenFactory) Mint(ctx context.Context, admin string, amount sdk.Coin, to string) error {
	if err := tf.requireAdmin(ctx, admin, amount.Denom); err != nil {
		return err
	}
	return tf.bank.MintCoins(ctx, to, sdk.NewCoins(amount))
}

// Burn burns amount from the account of from.
func (tf *TokenFactory) Burn(ctx context.Context, admin string, amount sdk.Coin, from string) error {
	if err := tf.requireAdmin(ctx, admin, amount.Denom); err != nil {
		return err
	}
	return tf.bank.BurnCoins(ctx, from, sdk.NewCoins(amount))
}

// GetAdmin returns the admin of a factory denom.
func (tf *TokenFactory) GetAdmin(ctx context.Context, denom string) (string, error) {
	admin, err := tf.DenomAdmins.Get(ctx, denom)
	if goerrors.Is(err, collections.ErrNotFound) {
		return "", errors.Wrapf(tftypes.ErrInvalidDenom, "denom %s was not created by the token factory", denom)
	}
	return admin, err
}

func (tf *TokenFactory) requireAdmin(ctx context.Context, sender, denom string) error {
	admin, err := tf.GetAdmin(ctx, denom)
	if err != nil {
		return err
	}
	if admin != sender {
		return errors.Wrapf(tftypes.ErrUnauthorized, "%s is not the admin of %s", sender, denom)
	}
	return nil
}

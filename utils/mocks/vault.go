// Package mocks sets up mock vaults on a fresh simulator for tests.
package mocks

import (
	"context"
	"testing"

	"github.com/provlabs/vault-standard/keeper"
	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/simulator"
	"github.com/provlabs/vault-standard/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stretchr/testify/require"
)

const (
	// BaseToken is the base token of mock vaults.
	BaseToken = "uusdc"
	// FeeDenom is the denom the simulator's token factory charges in.
	FeeDenom = "uosmo"
)

// InitialBalance is what the admin of a mock vault starts with.
var InitialBalance = sdk.NewCoins(
	sdk.NewInt64Coin(BaseToken, 1_000_000_000_000),
	sdk.NewInt64Coin(FeeDenom, 1_000_000_000_000),
)

// Vault is a mock vault instantiated on its own simulator.
type Vault struct {
	App     *simulator.App
	Admin   runner.Account
	Address string
	Config  types.Config
}

// NewVault instantiates the mock vault from msg, admin'd by a freshly funded
// account. An empty base token defaults to BaseToken.
func NewVault(t testing.TB, msg types.InstantiateMsg) *Vault {
	t.Helper()

	app, err := simulator.New(simulator.DefaultConfig(), nil)
	require.NoError(t, err, "should create simulator")
	admin, err := app.InitAccount(InitialBalance)
	require.NoError(t, err, "should fund admin")

	if msg.BaseToken == "" {
		msg.BaseToken = BaseToken
	}
	ctx := context.Background()
	codeID, err := app.StoreCode(ctx, runner.InProcess(keeper.Contract{}), admin)
	require.NoError(t, err, "should store mock vault code")
	addr, err := app.Instantiate(ctx, codeID, msg, admin.Address, types.ContractLabel, CreationFee(), admin)
	require.NoError(t, err, "should instantiate mock vault")

	v := &Vault{App: app, Admin: admin, Address: addr}
	v.Config, err = v.Keeper().Config.Get(app.Context())
	require.NoError(t, err, "mock vault should have a config")
	return v
}

// CreationFee is the fee the default simulator charges to create the vault token.
func CreationFee() sdk.Coins {
	return simulator.DefaultConfig().TokenFactoryParams.DenomCreationFee
}

// Keeper builds a keeper over the vault's store.
func (v *Vault) Keeper() *keeper.Keeper {
	host := v.App.Host(v.Address)
	return keeper.NewKeeper(host.StoreService(), host.AddressCodec(), host, host)
}

// Query answers a JSON encoded query message the way the contract does on
// chain, reading state through ctx.
func (v *Vault) Query(ctx sdk.Context, msg []byte) ([]byte, error) {
	return keeper.Contract{}.Query(ctx, v.App.Host(v.Address), v.Env(ctx), msg)
}

// Env describes the block of ctx and the vault contract.
func (v *Vault) Env(ctx sdk.Context) runner.Env {
	return runner.Env{
		Block: runner.BlockInfo{
			Height:  ctx.BlockHeight(),
			Time:    ctx.BlockTime(),
			ChainID: ctx.ChainID(),
		},
		Contract: runner.ContractInfo{Address: v.Address},
	}
}

// Fund creates an account holding coins.
func (v *Vault) Fund(t testing.TB, coins sdk.Coins) string {
	t.Helper()
	acc, err := v.App.InitAccount(coins)
	require.NoError(t, err, "should fund account")
	return acc.Address
}

package robot

import (
	"context"
	"fmt"
	"testing"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stretchr/testify/require"
)

// DefaultVault is a Vault described by plain values.
type DefaultVault struct {
	Base  string
	Token string
	Addr  string
}

var _ Vault = DefaultVault{}

func (v DefaultVault) BaseToken() string  { return v.Base }
func (v DefaultVault) VaultToken() string { return v.Token }
func (v DefaultVault) VaultAddr() string  { return v.Addr }

// DefaultVaultRobot is a VaultRobot over a mock vault it instantiated.
type DefaultVaultRobot struct {
	*VaultRobot

	Admin  runner.Account
	CodeID uint64
}

// NewDefaultVaultRobot returns a robot for an already instantiated vault.
func NewDefaultVaultRobot(t testing.TB, r runner.Runner, admin runner.Account, baseToken, vaultToken, vaultAddr string) *DefaultVaultRobot {
	return &DefaultVaultRobot{
		VaultRobot: NewVaultRobot(t, r, DefaultVault{Base: baseToken, Token: vaultToken, Addr: vaultAddr}),
		Admin:      admin,
	}
}

// MockVaultTokenDenom is the vault token the mock vault at vaultAddr issues.
func MockVaultTokenDenom(vaultAddr string) string {
	return fmt.Sprintf("factory/%s/%s", vaultAddr, types.VaultTokenSubdenom)
}

// Instantiate uploads code and instantiates it as a mock vault over
// baseToken, paying denomCreationFee for the vault token.
func Instantiate(t testing.TB, r runner.Runner, code runner.ContractType, admin runner.Account, baseToken string, denomCreationFee sdk.Coins) *DefaultVaultRobot {
	return InstantiateWithExtensions(t, r, code, admin, baseToken, nil, denomCreationFee)
}

// InstantiateWithExtensions is Instantiate enabling the given extensions.
func InstantiateWithExtensions(t testing.TB, r runner.Runner, code runner.ContractType, admin runner.Account, baseToken string, exts *types.InstantiateExtensions, denomCreationFee sdk.Coins) *DefaultVaultRobot {
	t.Helper()
	ctx := context.Background()

	codeID, err := r.StoreCode(ctx, code, admin)
	require.NoError(t, err, "store mock vault code")

	msg := types.InstantiateMsg{BaseToken: baseToken, Extensions: exts}
	addr, err := r.Instantiate(ctx, codeID, msg, admin.Address, types.ContractLabel, denomCreationFee, admin)
	require.NoError(t, err, "instantiate mock vault")

	robot := NewDefaultVaultRobot(t, r, admin, baseToken, MockVaultTokenDenom(addr), addr)
	robot.CodeID = codeID
	return robot
}

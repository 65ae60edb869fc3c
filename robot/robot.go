// Package robot drives a vault standard contract from tests. A VaultRobot
// works with any runner and any vault exposing its base token, vault token
// and address; every failure is fatal to the test.
package robot

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stretchr/testify/require"
)

// Vault is what a robot needs to know about the vault under test.
type Vault interface {
	BaseToken() string
	VaultToken() string
	VaultAddr() string
}

// VaultRobot executes and queries a vault through a runner.
type VaultRobot struct {
	T      testing.TB
	Runner runner.Runner
	Vault  Vault
}

// NewVaultRobot returns a robot for vault on r.
func NewVaultRobot(t testing.TB, r runner.Runner, vault Vault) *VaultRobot {
	return &VaultRobot{T: t, Runner: r, Vault: vault}
}

func (r *VaultRobot) BaseToken() string  { return r.Vault.BaseToken() }
func (r *VaultRobot) VaultToken() string { return r.Vault.VaultToken() }
func (r *VaultRobot) VaultAddr() string  { return r.Vault.VaultAddr() }

// DepositToVault deposits amount base tokens, attaching them as funds.
func (r *VaultRobot) DepositToVault(amount math.Int, signer runner.Account) *VaultRobot {
	r.T.Helper()
	r.Execute(types.NewDepositMsg(amount, ""), sdk.NewCoins(sdk.NewCoin(r.BaseToken(), amount)), signer)
	return r
}

// DepositCw20ToVault deposits amount base tokens without attaching funds.
// The vault must already hold them, e.g. after a cw20 transfer.
func (r *VaultRobot) DepositCw20ToVault(amount math.Int, signer runner.Account) *VaultRobot {
	r.T.Helper()
	r.Execute(types.NewDepositMsg(amount, ""), nil, signer)
	return r
}

// RedeemFromVault redeems amount vault tokens, attaching them as funds.
func (r *VaultRobot) RedeemFromVault(amount math.Int, signer runner.Account) *VaultRobot {
	r.T.Helper()
	r.Execute(types.NewRedeemMsg(amount, ""), sdk.NewCoins(sdk.NewCoin(r.VaultToken(), amount)), signer)
	return r
}

// Execute sends msg to the vault and requires it to succeed.
func (r *VaultRobot) Execute(msg any, funds sdk.Coins, signer runner.Account) *runner.ExecuteResponse {
	r.T.Helper()
	resp, err := r.Runner.Execute(context.Background(), r.VaultAddr(), msg, funds, signer)
	require.NoError(r.T, err, "execute %s on vault %s", describe(msg), r.VaultAddr())
	return resp
}

// ExecuteExpectError sends msg to the vault and requires it to fail with an
// error whose message contains expectedErr.
func (r *VaultRobot) ExecuteExpectError(msg any, funds sdk.Coins, signer runner.Account, expectedErr string) *VaultRobot {
	r.T.Helper()
	_, err := r.Runner.Execute(context.Background(), r.VaultAddr(), msg, funds, signer)
	require.ErrorContains(r.T, err, expectedErr, "execute %s on vault %s", describe(msg), r.VaultAddr())
	return r
}

// QueryBalance returns the denom balance of addr.
func (r *VaultRobot) QueryBalance(addr, denom string) math.Int {
	r.T.Helper()
	coin, err := r.Runner.QueryBalance(context.Background(), addr, denom)
	require.NoError(r.T, err, "query %s balance of %s", denom, addr)
	return coin.Amount
}

// QueryBaseTokenBalance returns the base token balance of addr.
func (r *VaultRobot) QueryBaseTokenBalance(addr string) math.Int {
	r.T.Helper()
	return r.QueryBalance(addr, r.BaseToken())
}

// QueryVaultTokenBalance returns the vault token balance of addr.
func (r *VaultRobot) QueryVaultTokenBalance(addr string) math.Int {
	r.T.Helper()
	return r.QueryBalance(addr, r.VaultToken())
}

// Query sends msg to the vault's query entry point and decodes the response into resp.
func (r *VaultRobot) Query(msg types.QueryMsg, resp any) {
	r.T.Helper()
	err := r.Runner.QuerySmart(context.Background(), r.VaultAddr(), msg, resp)
	require.NoError(r.T, err, "query %s on vault %s", describe(msg), r.VaultAddr())
}

func (r *VaultRobot) QueryInfo() types.VaultInfoResponse {
	r.T.Helper()
	var resp types.VaultInfoResponse
	r.Query(types.QueryMsg{Info: &types.InfoQuery{}}, &resp)
	return resp
}

func (r *VaultRobot) QueryVaultStandardInfo() types.VaultStandardInfoResponse {
	r.T.Helper()
	var resp types.VaultStandardInfoResponse
	r.Query(types.QueryMsg{VaultStandardInfo: &types.VaultStandardInfoQuery{}}, &resp)
	return resp
}

// QueryVaultStandardInfoRaw reads the standard info straight from the
// vault's storage.
func (r *VaultRobot) QueryVaultStandardInfoRaw() types.VaultStandardInfoResponse {
	r.T.Helper()
	bz, err := r.Runner.QueryRaw(context.Background(), r.VaultAddr(), types.VaultStandardInfoKey.Bytes())
	require.NoError(r.T, err, "raw query %s", types.VaultStandardInfoName)
	require.NotNil(r.T, bz, "vault %s does not store %s", r.VaultAddr(), types.VaultStandardInfoName)

	var resp types.VaultStandardInfoResponse
	require.NoError(r.T, json.Unmarshal(bz, &resp), "decode %s", types.VaultStandardInfoName)
	return resp
}

func (r *VaultRobot) QueryPreviewDeposit(amount math.Int) math.Int {
	r.T.Helper()
	return r.queryAmount(types.QueryMsg{PreviewDeposit: &types.PreviewDepositQuery{Amount: amount}})
}

func (r *VaultRobot) QueryPreviewRedeem(amount math.Int) math.Int {
	r.T.Helper()
	return r.queryAmount(types.QueryMsg{PreviewRedeem: &types.PreviewRedeemQuery{Amount: amount}})
}

func (r *VaultRobot) QueryTotalAssets() math.Int {
	r.T.Helper()
	return r.queryAmount(types.QueryMsg{TotalAssets: &types.TotalAssetsQuery{}})
}

func (r *VaultRobot) QueryTotalVaultTokenSupply() math.Int {
	r.T.Helper()
	return r.queryAmount(types.QueryMsg{TotalVaultTokenSupply: &types.TotalVaultTokenSupplyQuery{}})
}

func (r *VaultRobot) QueryConvertToShares(amount math.Int) math.Int {
	r.T.Helper()
	return r.queryAmount(types.QueryMsg{ConvertToShares: &types.ConvertToSharesQuery{Amount: amount}})
}

func (r *VaultRobot) QueryConvertToAssets(amount math.Int) math.Int {
	r.T.Helper()
	return r.queryAmount(types.QueryMsg{ConvertToAssets: &types.ConvertToAssetsQuery{Amount: amount}})
}

func (r *VaultRobot) queryAmount(msg types.QueryMsg) math.Int {
	r.T.Helper()
	var amount math.Int
	r.Query(msg, &amount)
	return amount
}

func describe(msg any) string {
	switch m := msg.(type) {
	case types.ExecuteMsg:
		return m.Variant()
	case types.QueryMsg:
		bz, _ := json.Marshal(m)
		return string(bz)
	}
	return fmt.Sprintf("%T", msg)
}

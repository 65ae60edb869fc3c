package simulator_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/simulator"

	"cosmossdk.io/collections"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	"github.com/stretchr/testify/require"
)

// counter is a tiny in-process contract. Execute adds to a stored counter
// and fails when asked to, after writing, so atomicity can be observed.
type counter struct{}

type counterMsg struct {
	Add  uint64 `json:"add"`
	Fail bool   `json:"fail"`
	Pay  string `json:"pay,omitempty"`
}

func (counter) item(host runner.Host) collections.Item[uint64] {
	sb := collections.NewSchemaBuilder(host.StoreService())
	item := collections.NewItem(sb, collections.NewPrefix("count"), "count", collections.Uint64Value)
	if _, err := sb.Build(); err != nil {
		panic(err)
	}
	return item
}

func (c counter) Instantiate(ctx sdk.Context, host runner.Host, env runner.Env, info runner.MessageInfo, msg []byte) ([]byte, error) {
	return nil, c.item(host).Set(ctx, 0)
}

func (c counter) Execute(ctx sdk.Context, host runner.Host, env runner.Env, info runner.MessageInfo, msg []byte) ([]byte, error) {
	var m counterMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, err
	}
	item := c.item(host)
	count, err := item.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := item.Set(ctx, count+m.Add); err != nil {
		return nil, err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent("added", sdk.NewAttribute("amount", fmt.Sprintf("%d", m.Add))))
	if m.Pay != "" {
		if err := host.SendCoins(ctx, m.Pay, info.Sender, info.Funds); err != nil {
			return nil, err
		}
	}
	if m.Fail {
		return nil, fmt.Errorf("asked to fail")
	}
	return []byte(fmt.Sprintf("%d", count+m.Add)), nil
}

func (c counter) Query(ctx sdk.Context, host runner.Host, env runner.Env, msg []byte) ([]byte, error) {
	count, err := c.item(host).Get(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"count": count, "height": env.Block.Height})
}

type counterState struct {
	Count  uint64 `json:"count"`
	Height int64  `json:"height"`
}

func setupCounter(t *testing.T) (*simulator.App, runner.Account, string) {
	t.Helper()
	app, err := simulator.New(simulator.DefaultConfig(), nil)
	require.NoError(t, err, "should create simulator")

	signer, err := app.InitAccount(sdk.NewCoins(sdk.NewInt64Coin("uosmo", 1_000_000)))
	require.NoError(t, err, "should init account")

	codeID, err := app.StoreCode(context.Background(), runner.InProcess(counter{}), signer)
	require.NoError(t, err, "should store code")
	require.Equal(t, uint64(1), codeID, "code ids start at 1")

	addr, err := app.Instantiate(context.Background(), codeID, struct{}{}, signer.Address, "counter", nil, signer)
	require.NoError(t, err, "should instantiate")
	return app, signer, addr
}

func TestExecuteCommitsOnSuccess(t *testing.T) {
	app, signer, addr := setupCounter(t)
	ctx := context.Background()

	resp, err := app.Execute(ctx, addr, counterMsg{Add: 3}, nil, signer)
	require.NoError(t, err)
	require.Equal(t, "3", string(resp.Data))

	value, ok := resp.Attribute(wasmtypes.CustomContractEventPrefix+"added", "amount")
	require.True(t, ok, "contract event should be prefixed")
	require.Equal(t, "3", value)
	contract, ok := resp.Attribute(wasmtypes.CustomContractEventPrefix+"added", wasmtypes.AttributeKeyContractAddr)
	require.True(t, ok)
	require.Equal(t, addr, contract)

	var state counterState
	require.NoError(t, app.QuerySmart(ctx, addr, struct{}{}, &state))
	require.Equal(t, uint64(3), state.Count)
}

func TestExecuteDiscardsOnFailure(t *testing.T) {
	app, signer, addr := setupCounter(t)
	ctx := context.Background()

	_, err := app.Execute(ctx, addr, counterMsg{Add: 5, Fail: true}, sdk.NewCoins(sdk.NewInt64Coin("uosmo", 100)), signer)
	require.ErrorContains(t, err, "asked to fail")

	var state counterState
	require.NoError(t, app.QuerySmart(ctx, addr, struct{}{}, &state))
	require.Equal(t, uint64(0), state.Count, "failed execution must not write")

	balance, err := app.QueryBalance(ctx, signer.Address, "uosmo")
	require.NoError(t, err)
	require.Equal(t, "1000000", balance.Amount.String(), "attached funds should be returned")
}

func TestExecuteInsufficientFunds(t *testing.T) {
	app, signer, addr := setupCounter(t)

	_, err := app.Execute(context.Background(), addr, counterMsg{Add: 1}, sdk.NewCoins(sdk.NewInt64Coin("uosmo", 2_000_000)), signer)
	require.ErrorIs(t, err, sdkerrors.ErrInsufficientFunds)
}

func TestHostRejectsForeignSender(t *testing.T) {
	app, signer, addr := setupCounter(t)

	_, err := app.Execute(context.Background(), addr, counterMsg{Pay: signer.Address}, sdk.NewCoins(sdk.NewInt64Coin("uosmo", 1)), signer)
	require.ErrorIs(t, err, sdkerrors.ErrUnauthorized)
}

func TestQueryRaw(t *testing.T) {
	app, signer, addr := setupCounter(t)
	ctx := context.Background()
	_, err := app.Execute(ctx, addr, counterMsg{Add: 7}, nil, signer)
	require.NoError(t, err)

	bz, err := app.QueryRaw(ctx, addr, []byte("count"))
	require.NoError(t, err)
	value, err := collections.Uint64Value.Decode(bz)
	require.NoError(t, err)
	require.Equal(t, uint64(7), value)

	bz, err = app.QueryRaw(ctx, addr, []byte("missing"))
	require.NoError(t, err)
	require.Nil(t, bz)
}

func TestIncreaseTime(t *testing.T) {
	app, _, addr := setupCounter(t)
	start := app.BlockTime()

	app.IncreaseTime(time.Hour)
	require.Equal(t, start.Add(time.Hour), app.BlockTime())

	var state counterState
	require.NoError(t, app.QuerySmart(context.Background(), addr, struct{}{}, &state))
	require.Equal(t, int64(2), state.Height)
}

func TestStoreCodeRejectsArtifacts(t *testing.T) {
	app, err := simulator.New(simulator.DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = app.StoreCode(context.Background(), runner.Artifact("mock_vault.wasm"), runner.Account{})
	require.ErrorContains(t, err, "in-process contracts only")
}

func TestInstantiateUnknownCode(t *testing.T) {
	app, err := simulator.New(simulator.DefaultConfig(), nil)
	require.NoError(t, err)
	signer, err := app.InitAccount(nil)
	require.NoError(t, err)

	_, err = app.Instantiate(context.Background(), 42, struct{}{}, "", "missing", nil, signer)
	require.ErrorIs(t, err, wasmtypes.ErrNotFound)
}

func TestContractAddressesAreDistinct(t *testing.T) {
	first := simulator.BuildContractAddress(1, 1)
	second := simulator.BuildContractAddress(1, 2)
	require.Len(t, first, wasmtypes.ContractAddrLen)
	require.NotEqual(t, first, second)
}

// Package simulator is an in-process runner. It keeps a bank ledger, a
// token factory and a contract registry in an in-memory multistore and
// executes in-process contracts against them with per-call atomicity.
package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/utils"

	"cosmossdk.io/core/address"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"

	addresscodec "github.com/cosmos/cosmos-sdk/codec/address"
	sdk "github.com/cosmos/cosmos-sdk/types"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	tftypes "github.com/strangelove-ventures/tokenfactory/x/tokenfactory/types"
)

// StoreKey is the name of the simulator's single KV store.
const StoreKey = "simulator"

// Config configures a simulator App.
type Config struct {
	ChainID            string
	Bech32Prefix       string
	GenesisTime        time.Time
	TokenFactoryParams tftypes.Params
}

// DefaultConfig mirrors an osmosis chain: osmo addresses and a token
// factory charging 10000000uosmo per denom.
func DefaultConfig() Config {
	return Config{
		ChainID:      "osmosis-sim-1",
		Bech32Prefix: "osmo",
		GenesisTime:  time.Unix(1_700_000_000, 0).UTC(),
		TokenFactoryParams: tftypes.Params{
			DenomCreationFee: sdk.NewCoins(sdk.NewInt64Coin("uosmo", 10_000_000)),
		},
	}
}

// App is the in-process runner. It is safe for concurrent use, calls are
// serialized.
type App struct {
	mu sync.Mutex

	cfg          Config
	logger       log.Logger
	key          *storetypes.KVStoreKey
	cms          storetypes.CommitMultiStore
	ctx          sdk.Context
	addressCodec address.Codec

	Bank         *Bank
	TokenFactory *TokenFactory
	Wasm         *Wasm
}

var _ runner.Runner = (*App)(nil)

// New creates a simulator at height 1 and cfg.GenesisTime.
func New(cfg Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := cfg.TokenFactoryParams.Validate(); err != nil {
		return nil, fmt.Errorf("invalid token factory params: %w", err)
	}

	key := storetypes.NewKVStoreKey(StoreKey)
	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, db)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load multistore: %w", err)
	}

	header := cmtproto.Header{ChainID: cfg.ChainID, Height: 1, Time: cfg.GenesisTime}
	codec := addresscodec.NewBech32Codec(cfg.Bech32Prefix)
	bank := NewBank(newPrefixStoreService(key, BankStorePrefix), codec)

	return &App{
		cfg:          cfg,
		logger:       logger.With("module", "simulator"),
		key:          key,
		cms:          cms,
		ctx:          sdk.NewContext(cms, header, false, logger),
		addressCodec: codec,
		Bank:         bank,
		TokenFactory: NewTokenFactory(newPrefixStoreService(key, TokenFactoryStorePrefix), bank, cfg.TokenFactoryParams),
		Wasm:         NewWasm(newPrefixStoreService(key, WasmStorePrefix), codec),
	}, nil
}

// Context returns the current root context. Writes through it are permanent.
func (a *App) Context() sdk.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// AddressCodec returns the bech32 codec of the simulated chain.
func (a *App) AddressCodec() address.Codec {
	return a.addressCodec
}

// InitAccount creates a new account holding coins.
func (a *App) InitAccount(coins sdk.Coins) (runner.Account, error) {
	addr := utils.NewAddress(a.cfg.Bech32Prefix).Bech32
	if err := a.FundAccount(addr, coins); err != nil {
		return runner.Account{}, err
	}
	return runner.Account{Address: addr}, nil
}

// InitAccounts creates n accounts each holding coins.
func (a *App) InitAccounts(coins sdk.Coins, n int) ([]runner.Account, error) {
	accounts := make([]runner.Account, 0, n)
	for range n {
		acc, err := a.InitAccount(coins)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// FundAccount mints coins into addr.
func (a *App) FundAccount(addr string, coins sdk.Coins) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if coins.Empty() {
		_, err := a.addressCodec.StringToBytes(addr)
		return err
	}
	return a.Bank.MintCoins(a.ctx, addr, coins)
}

// BlockTime returns the time of the current block.
func (a *App) BlockTime() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx.BlockTime()
}

// IncreaseTime moves to the next block, d later than the current one.
func (a *App) IncreaseTime(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctx = a.ctx.WithBlockHeight(a.ctx.BlockHeight() + 1).WithBlockTime(a.ctx.BlockTime().Add(d))
}

func (a *App) StoreCode(ctx context.Context, code runner.ContractType, signer runner.Account) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if code.IsArtifact() {
		return 0, fmt.Errorf("the simulator executes in-process contracts only, cannot load %s", code.WasmPath)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Wasm.StoreCode(a.ctx, signer.Address, code.Contract)
}

func (a *App) Instantiate(ctx context.Context, codeID uint64, msg any, admin, label string, funds sdk.Coins, signer runner.Account) (string, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	var addr string
	_, err = a.call(ctx, func(cacheCtx sdk.Context) ([]byte, error) {
		addr, err = a.Wasm.Instantiate(cacheCtx, codeID, signer.Address, admin, label)
		if err != nil {
			return nil, err
		}
		impl, _, err := a.Wasm.Contract(cacheCtx, addr)
		if err != nil {
			return nil, err
		}
		if err := a.transferFunds(cacheCtx, signer.Address, addr, funds); err != nil {
			return nil, err
		}
		return impl.Instantiate(cacheCtx, a.host(addr), a.env(cacheCtx, addr), runner.MessageInfo{Sender: signer.Address, Funds: funds}, bz)
	}, func(cacheCtx sdk.Context) sdk.Event {
		return sdk.NewEvent(wasmtypes.EventTypeInstantiate,
			sdk.NewAttribute(wasmtypes.AttributeKeyContractAddr, addr),
			sdk.NewAttribute(wasmtypes.AttributeKeyCodeID, fmt.Sprintf("%d", codeID)),
		)
	})
	if err != nil {
		return "", fmt.Errorf("failed to instantiate code %d: %w", codeID, err)
	}
	a.logger.Debug("instantiated contract", "code_id", codeID, "address", addr, "label", label)
	return addr, nil
}

func (a *App) Execute(ctx context.Context, contract string, msg any, funds sdk.Coins, signer runner.Account) (*runner.ExecuteResponse, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	resp, err := a.call(ctx, func(cacheCtx sdk.Context) ([]byte, error) {
		impl, _, err := a.Wasm.Contract(cacheCtx, contract)
		if err != nil {
			return nil, err
		}
		if err := a.transferFunds(cacheCtx, signer.Address, contract, funds); err != nil {
			return nil, err
		}
		return impl.Execute(cacheCtx, a.host(contract), a.env(cacheCtx, contract), runner.MessageInfo{Sender: signer.Address, Funds: funds}, bz)
	}, func(sdk.Context) sdk.Event {
		return sdk.NewEvent(wasmtypes.EventTypeExecute, sdk.NewAttribute(wasmtypes.AttributeKeyContractAddr, contract))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute on %s: %w", contract, err)
	}
	return resp, nil
}

// call runs fn in a cached context and commits its writes only when it
// succeeds. Contract events are reported the way wasmd reports them.
func (a *App) call(ctx context.Context, fn func(sdk.Context) ([]byte, error), baseEvent func(sdk.Context) sdk.Event) (*runner.ExecuteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ctx = a.ctx.WithEventManager(sdk.NewEventManager())
	cacheCtx, write := a.ctx.CacheContext()
	data, err := fn(cacheCtx)
	if err != nil {
		return nil, err
	}
	contractEvents := cacheCtx.EventManager().ABCIEvents()
	write()

	events := []abci.Event{abci.Event(baseEvent(cacheCtx))}
	contract, _ := runner.FindAttribute(events, events[0].Type, wasmtypes.AttributeKeyContractAddr)
	events = append(events, wasmEvents(contract, contractEvents)...)
	return &runner.ExecuteResponse{Data: data, Events: events}, nil
}

func (a *App) QuerySmart(ctx context.Context, contract string, msg any, resp any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bz, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	data, err := a.query(contract, bz)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", contract, err)
	}
	return json.Unmarshal(data, resp)
}

// query runs a smart query in a cached context that is always discarded.
func (a *App) query(contract string, msg []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cacheCtx, _ := a.ctx.CacheContext()
	impl, _, err := a.Wasm.Contract(cacheCtx, contract)
	if err != nil {
		return nil, err
	}
	return impl.Query(cacheCtx, a.host(contract), a.env(cacheCtx, contract), msg)
}

func (a *App) QueryRaw(ctx context.Context, contract string, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, _, err := a.Wasm.Contract(a.ctx, contract); err != nil {
		return nil, err
	}
	return a.contractStore(contract).OpenKVStore(a.ctx).Get(key)
}

func (a *App) QueryBalance(ctx context.Context, addr, denom string) (sdk.Coin, error) {
	if err := ctx.Err(); err != nil {
		return sdk.Coin{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Bank.GetBalance(a.ctx, addr, denom)
}

func (a *App) transferFunds(ctx sdk.Context, from, to string, funds sdk.Coins) error {
	if funds.Empty() {
		return nil
	}
	return a.Bank.SendCoins(ctx, from, to, funds)
}

func (a *App) host(contract string) contractHost {
	return contractHost{app: a, addr: contract, storeService: a.contractStore(contract)}
}

func (a *App) contractStore(contract string) corestore.KVStoreService {
	bz, err := a.addressCodec.StringToBytes(contract)
	if err != nil {
		panic(fmt.Sprintf("invalid contract address %q: %s", contract, err))
	}
	return newPrefixStoreService(a.key, append(append([]byte{}, ContractStorePrefix...), bz...))
}

func (a *App) env(ctx sdk.Context, contract string) runner.Env {
	return runner.Env{
		Block: runner.BlockInfo{
			Height:  ctx.BlockHeight(),
			Time:    ctx.BlockTime(),
			ChainID: ctx.ChainID(),
		},
		Contract: runner.ContractInfo{Address: contract},
	}
}

// wasmEvents prefixes contract events with wasm- and tags them with the
// emitting contract, as wasmd does for custom contract events.
func wasmEvents(contract string, events []abci.Event) []abci.Event {
	out := make([]abci.Event, 0, len(events))
	for _, event := range events {
		attrs := append([]abci.EventAttribute{{Key: wasmtypes.AttributeKeyContractAddr, Value: contract}}, event.Attributes...)
		out = append(out, abci.Event{Type: wasmtypes.CustomContractEventPrefix + event.Type, Attributes: attrs})
	}
	return out
}

// Host returns the environment the contract at addr runs in. Tests use it
// to call a contract's handlers directly.
func (a *App) Host(contract string) runner.Host {
	return a.host(contract)
}

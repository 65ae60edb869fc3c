// Package runner defines the capability surface shared by the in-process
// simulator and a live chain: uploading and instantiating contracts,
// executing messages, and querying contract state and balances.
package runner

import (
	"context"
	"time"

	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/core/address"
	"cosmossdk.io/core/store"

	sdk "github.com/cosmos/cosmos-sdk/types"

	abci "github.com/cometbft/cometbft/abci/types"
)

// Account is a signer known to a runner. KeyName is only meaningful to
// runners backed by a keyring.
type Account struct {
	Address string
	KeyName string
}

// Querier reads contract state.
type Querier interface {
	// QuerySmart sends msg, JSON encoded, to the contract's query entry point
	// and decodes the JSON response into resp.
	QuerySmart(ctx context.Context, contract string, msg any, resp any) error
	// QueryRaw reads a raw key from the contract's store. A missing key
	// yields a nil slice and no error.
	QueryRaw(ctx context.Context, contract string, key []byte) ([]byte, error)
}

// Runner is the execution environment a vault is tested against.
type Runner interface {
	Querier

	StoreCode(ctx context.Context, code ContractType, signer Account) (uint64, error)
	Instantiate(ctx context.Context, codeID uint64, msg any, admin, label string, funds sdk.Coins, signer Account) (string, error)
	Execute(ctx context.Context, contract string, msg any, funds sdk.Coins, signer Account) (*ExecuteResponse, error)
	QueryBalance(ctx context.Context, addr, denom string) (sdk.Coin, error)
}

// ExecuteResponse is the outcome of a successful execution.
type ExecuteResponse struct {
	TxHash  string
	GasUsed int64
	Data    []byte
	Events  []abci.Event
}

// Attribute returns the first value of key in the first event of eventType.
func (r *ExecuteResponse) Attribute(eventType, key string) (string, bool) {
	if r == nil {
		return "", false
	}
	return FindAttribute(r.Events, eventType, key)
}

// FindAttribute returns the first value of key in the first event of eventType.
func FindAttribute(events []abci.Event, eventType, key string) (string, bool) {
	for _, event := range events {
		if event.Type != eventType {
			continue
		}
		for _, attr := range event.Attributes {
			if attr.Key == key {
				return attr.Value, true
			}
		}
	}
	return "", false
}

// ContractType is the code a runner uploads: either an in-process
// implementation or the path of a compiled wasm artifact.
type ContractType struct {
	Contract Contract
	WasmPath string
}

// InProcess wraps an in-process contract implementation.
func InProcess(c Contract) ContractType {
	return ContractType{Contract: c}
}

// Artifact refers to a compiled wasm artifact on disk.
func Artifact(path string) ContractType {
	return ContractType{WasmPath: path}
}

// IsArtifact reports whether the code is a wasm artifact.
func (c ContractType) IsArtifact() bool {
	return c.Contract == nil
}

// Contract is a contract executed in-process. msg is the JSON encoded
// message; the returned bytes are the response data.
type Contract interface {
	Instantiate(ctx sdk.Context, host Host, env Env, info MessageInfo, msg []byte) ([]byte, error)
	Execute(ctx sdk.Context, host Host, env Env, info MessageInfo, msg []byte) ([]byte, error)
	Query(ctx sdk.Context, host Host, env Env, msg []byte) ([]byte, error)
}

// Host is what the environment exposes to an in-process contract: its own
// isolated store and the ledger modules it may call.
type Host interface {
	types.BankKeeper
	types.TokenFactoryKeeper

	StoreService() store.KVStoreService
	AddressCodec() address.Codec
}

// Env describes the block and the contract being called.
type Env struct {
	Block    BlockInfo
	Contract ContractInfo
}

type BlockInfo struct {
	Height  int64
	Time    time.Time
	ChainID string
}

type ContractInfo struct {
	Address string
}

// MessageInfo is the sender of a message and the funds attached to it.
// Funds have already been transferred to the contract when it is called.
type MessageInfo struct {
	Sender string
	Funds  sdk.Coins
}

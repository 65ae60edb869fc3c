package simulator

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/address"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/errors"

	sdkaddress "github.com/cosmos/cosmos-sdk/types/address"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
)

var (
	CodesPrefix       = collections.NewPrefix(0)
	CodeSeqPrefix     = collections.NewPrefix(1)
	ContractsPrefix   = collections.NewPrefix(2)
	InstanceSeqPrefix = collections.NewPrefix(3)
)

// CodeInfo is the metadata of uploaded code.
type CodeInfo struct {
	Creator string `json:"creator"`
}

// ContractInfo is the metadata of an instantiated contract.
type ContractInfo struct {
	CodeID  uint64 `json:"code_id"`
	Creator string `json:"creator"`
	Admin   string `json:"admin"`
	Label   string `json:"label"`
}

// Wasm is the code and contract registry of the simulator. Code is held
// in-process; only its metadata lives in the store.
type Wasm struct {
	addressCodec address.Codec
	impls        map[uint64]runner.Contract

	Codes       collections.Map[uint64, CodeInfo]
	CodeSeq     collections.Sequence
	Contracts   collections.Map[string, ContractInfo]
	InstanceSeq collections.Sequence
}

func NewWasm(storeService corestore.KVStoreService, addressCodec address.Codec) *Wasm {
	builder := collections.NewSchemaBuilder(storeService)
	w := &Wasm{
		addressCodec: addressCodec,
		impls:        map[uint64]runner.Contract{},
		Codes:        collections.NewMap(builder, CodesPrefix, "codes", collections.Uint64Key, types.JSONValue[CodeInfo]()),
		CodeSeq:      collections.NewSequence(builder, CodeSeqPrefix, "code_seq"),
		Contracts:    collections.NewMap(builder, ContractsPrefix, "contracts", collections.StringKey, types.JSONValue[ContractInfo]()),
		InstanceSeq:  collections.NewSequence(builder, InstanceSeqPrefix, "instance_seq"),
	}
	if _, err := builder.Build(); err != nil {
		panic(err)
	}
	return w
}

// StoreCode registers an in-process contract and returns its code id.
// Code ids start at 1.
func (w *Wasm) StoreCode(ctx context.Context, creator string, impl runner.Contract) (uint64, error) {
	seq, err := w.CodeSeq.Next(ctx)
	if err != nil {
		return 0, err
	}
	codeID := seq + 1
	if err := w.Codes.Set(ctx, codeID, CodeInfo{Creator: creator}); err != nil {
		return 0, err
	}
	w.impls[codeID] = impl
	return codeID, nil
}

// Instantiate registers a new contract instance of codeID and returns its address.
func (w *Wasm) Instantiate(ctx context.Context, codeID uint64, creator, admin, label string) (string, error) {
	if ok, err := w.Codes.Has(ctx, codeID); err != nil {
		return "", err
	} else if !ok {
		return "", errors.Wrapf(wasmtypes.ErrNotFound, "no such code: %d", codeID)
	}

	seq, err := w.InstanceSeq.Next(ctx)
	if err != nil {
		return "", err
	}
	addr, err := w.addressCodec.BytesToString(BuildContractAddress(codeID, seq+1))
	if err != nil {
		return "", err
	}
	info := ContractInfo{CodeID: codeID, Creator: creator, Admin: admin, Label: label}
	if err := w.Contracts.Set(ctx, addr, info); err != nil {
		return "", err
	}
	return addr, nil
}

// Contract returns the implementation behind a contract address.
func (w *Wasm) Contract(ctx context.Context, addr string) (runner.Contract, ContractInfo, error) {
	info, err := w.Contracts.Get(ctx, addr)
	if err != nil {
		return nil, ContractInfo{}, errors.Wrapf(wasmtypes.ErrNotFound, "no such contract %s: %s", addr, err)
	}
	impl, ok := w.impls[info.CodeID]
	if !ok {
		return nil, ContractInfo{}, fmt.Errorf("code %d of contract %s is not loaded", info.CodeID, addr)
	}
	return impl, info, nil
}

// BuildContractAddress derives a contract address from the code id and the
// global instance id, the way wasmd derives classic contract addresses.
func BuildContractAddress(codeID, instanceID uint64) []byte {
	contractID := make([]byte, 16)
	binary.BigEndian.PutUint64(contractID[:8], codeID)
	binary.BigEndian.PutUint64(contractID[8:], instanceID)
	return sdkaddress.Module(wasmtypes.ModuleName, contractID)[:wasmtypes.ContractAddrLen]
}

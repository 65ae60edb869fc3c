package simulator

import (
	"context"

	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Store prefixes of the simulator's modules inside its single KV store.
var (
	BankStorePrefix         = []byte("bank/")
	TokenFactoryStorePrefix = []byte("tokenfactory/")
	WasmStorePrefix         = []byte("wasm/")
	ContractStorePrefix     = []byte("contract/")
)

// prefixStoreService hands out the part of a KV store under a fixed prefix.
type prefixStoreService struct {
	key    *storetypes.KVStoreKey
	prefix []byte
}

var _ corestore.KVStoreService = prefixStoreService{}

func newPrefixStoreService(key *storetypes.KVStoreKey, p []byte) prefixStoreService {
	return prefixStoreService{key: key, prefix: p}
}

func (s prefixStoreService) OpenKVStore(ctx context.Context) corestore.KVStore {
	return coreKVStore{kv: prefix.NewStore(sdk.UnwrapSDKContext(ctx).KVStore(s.key), s.prefix)}
}

// coreKVStore adapts a store/types KVStore to the core KVStore interface.
type coreKVStore struct {
	kv storetypes.KVStore
}

func (s coreKVStore) Get(key []byte) ([]byte, error) {
	return s.kv.Get(key), nil
}

func (s coreKVStore) Has(key []byte) (bool, error) {
	return s.kv.Has(key), nil
}

func (s coreKVStore) Set(key, value []byte) error {
	s.kv.Set(key, value)
	return nil
}

func (s coreKVStore) Delete(key []byte) error {
	s.kv.Delete(key)
	return nil
}

func (s coreKVStore) Iterator(start, end []byte) (corestore.Iterator, error) {
	return s.kv.Iterator(start, end), nil
}

func (s coreKVStore) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return s.kv.ReverseIterator(start, end), nil
}

package keeper

import (
	"encoding/json"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Contract is the in-process mock vault. Each call builds a keeper over the
// store the host hands out for the contract instance.
type Contract struct{}

var _ runner.Contract = Contract{}

func (Contract) keeper(host runner.Host) *Keeper {
	return NewKeeper(host.StoreService(), host.AddressCodec(), host, host)
}

// Instantiate creates the vault and returns its VaultInfoResponse.
func (c Contract) Instantiate(ctx sdk.Context, host runner.Host, env runner.Env, info runner.MessageInfo, msg []byte) ([]byte, error) {
	instantiateMsg, err := types.DecodeInstantiateMsg(msg)
	if err != nil {
		return nil, err
	}
	cfg, err := c.keeper(host).CreateVault(ctx, env, info, instantiateMsg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(types.VaultInfoResponse{BaseToken: cfg.BaseToken, VaultToken: cfg.VaultToken})
}

func (c Contract) Execute(ctx sdk.Context, host runner.Host, env runner.Env, info runner.MessageInfo, msg []byte) ([]byte, error) {
	executeMsg, err := types.DecodeExecuteMsg(msg)
	if err != nil {
		return nil, err
	}
	return NewMsgServer(c.keeper(host)).Execute(ctx, env, info, executeMsg)
}

func (c Contract) Query(ctx sdk.Context, host runner.Host, env runner.Env, msg []byte) ([]byte, error) {
	queryMsg, err := types.DecodeQueryMsg(msg)
	if err != nil {
		return nil, err
	}
	resp, err := NewQueryServer(c.keeper(host)).Query(ctx, env, queryMsg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

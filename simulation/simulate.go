package simulation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/provlabs/vault-standard/keeper"
	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/simulator"
	"github.com/provlabs/vault-standard/types"

	sdk "github.com/cosmos/cosmos-sdk/types"
	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"
)

// BaseToken is the base token of simulated vaults.
const BaseToken = "uusdc"

// Setup instantiates a keeper enabled mock vault on a fresh simulator and
// funds numAccounts random accounts to act on it.
func Setup(r *rand.Rand, numAccounts int) (*State, error) {
	cfg := simulator.DefaultConfig()
	app, err := simulator.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	accounts, err := RandomAccounts(r, numAccounts+1, cfg.Bech32Prefix)
	if err != nil {
		return nil, err
	}
	admin, accounts := accounts[0], accounts[1:]

	fee := cfg.TokenFactoryParams.DenomCreationFee
	if err := app.FundAccount(admin.Address, fee); err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		funds := sdk.NewCoins(sdk.NewCoin(BaseToken, simtypes.RandomAmount(r, sdk.DefaultPowerReduction).AddRaw(1)))
		if err := app.FundAccount(acc.Address, funds); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	codeID, err := app.StoreCode(ctx, runner.InProcess(keeper.Contract{}), admin)
	if err != nil {
		return nil, err
	}
	msg := types.InstantiateMsg{
		BaseToken: BaseToken,
		Extensions: &types.InstantiateExtensions{
			Keeper: &types.KeeperConfig{Keepers: []string{admin.Address}},
		},
	}
	addr, err := app.Instantiate(ctx, codeID, msg, admin.Address, types.ContractLabel, fee, admin)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate vault: %w", err)
	}

	var info types.VaultInfoResponse
	if err := app.QuerySmart(ctx, addr, types.QueryMsg{Info: &types.InfoQuery{}}, &info); err != nil {
		return nil, err
	}
	return &State{
		App:      app,
		Vault:    addr,
		Config:   types.Config{Admin: admin.Address, BaseToken: info.BaseToken, VaultToken: info.VaultToken},
		Keeper:   admin,
		Accounts: accounts,
	}, nil
}

// Simulate runs numOps operations picked from ops and checks every
// invariant after each of them. It returns the messages of the operations
// run so far.
func Simulate(r *rand.Rand, s *State, ops []WeightedOperation, numOps int) ([]simtypes.OperationMsg, error) {
	totalWeight := 0
	for _, op := range ops {
		totalWeight += op.Weight
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("operations have no weight")
	}

	msgs := make([]simtypes.OperationMsg, 0, numOps)
	for i := range numOps {
		op := pick(r, ops, totalWeight)
		msg, err := op(r, s)
		if err != nil {
			return msgs, fmt.Errorf("operation %d (%s): %w", i, msg.Name, err)
		}
		msgs = append(msgs, msg)
		if err := CheckInvariants(s); err != nil {
			return msgs, fmt.Errorf("invariant broken after operation %d (%s): %w", i, msg.Name, err)
		}
	}
	return msgs, nil
}

func pick(r *rand.Rand, ops []WeightedOperation, totalWeight int) Operation {
	n := r.Intn(totalWeight)
	for _, op := range ops {
		if n < op.Weight {
			return op.Op
		}
		n -= op.Weight
	}
	return ops[len(ops)-1].Op
}

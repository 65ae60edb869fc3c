// Package simulation runs randomized operation sequences against a mock
// vault on the simulator and checks the vault's invariants after each one.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/simulator"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"
)

// Route is reported as the route of every operation message.
const Route = "vault"

const (
	OpWeightDeposit            = "op_weight_deposit"
	OpWeightRedeem             = "op_weight_redeem"
	OpWeightDonate             = "op_weight_donate"
	OpWeightDepositUnaccounted = "op_weight_deposit_unaccounted"
	OpWeightCompound           = "op_weight_compound"
	OpWeightAdvanceTime        = "op_weight_advance_time"
)

const (
	DefaultWeightDeposit            = 40
	DefaultWeightRedeem             = 30
	DefaultWeightDonate             = 5
	DefaultWeightDepositUnaccounted = 5
	DefaultWeightCompound           = 5
	DefaultWeightAdvanceTime        = 5
)

// Operation performs one random action against the vault in s. Failures
// the vault is expected to reject are returned as a no-op message; a non-nil
// error aborts the simulation.
type Operation func(r *rand.Rand, s *State) (simtypes.OperationMsg, error)

// WeightedOperation is an Operation picked with probability proportional to Weight.
type WeightedOperation struct {
	Weight int
	Op     Operation
}

// State is the vault under simulation and the accounts acting on it.
type State struct {
	App      *simulator.App
	Vault    string
	Config   types.Config
	Keeper   runner.Account
	Accounts []runner.Account
}

// WeightedOperations returns every operation, weighted by weights or the
// default weight of operations missing from it.
func WeightedOperations(weights map[string]int) []WeightedOperation {
	weight := func(key string, def int) int {
		if w, ok := weights[key]; ok {
			return w
		}
		return def
	}
	return []WeightedOperation{
		{Weight: weight(OpWeightDeposit, DefaultWeightDeposit), Op: SimulateDeposit},
		{Weight: weight(OpWeightRedeem, DefaultWeightRedeem), Op: SimulateRedeem},
		{Weight: weight(OpWeightDonate, DefaultWeightDonate), Op: SimulateDonate},
		{Weight: weight(OpWeightDepositUnaccounted, DefaultWeightDepositUnaccounted), Op: SimulateDepositUnaccounted},
		{Weight: weight(OpWeightCompound, DefaultWeightCompound), Op: SimulateCompound},
		{Weight: weight(OpWeightAdvanceTime, DefaultWeightAdvanceTime), Op: SimulateAdvanceTime},
	}
}

// SimulateDeposit deposits a random part of a random holder's base tokens.
func SimulateDeposit(r *rand.Rand, s *State) (simtypes.OperationMsg, error) {
	acc, balance, err := s.randomHolder(r, s.Config.BaseToken)
	if err != nil {
		return simtypes.NoOpMsg(Route, "deposit", "unable to get balance"), err
	}
	if !balance.IsPositive() {
		return simtypes.NoOpMsg(Route, "deposit", "no account holds base tokens"), nil
	}
	amount := randomPositiveAmount(r, balance)
	msg := types.NewDepositMsg(amount, "")
	return s.execute(msg, sdk.NewCoins(sdk.NewCoin(s.Config.BaseToken, amount)), acc, "deposit")
}

// SimulateRedeem redeems a random part of a random holder's vault tokens.
func SimulateRedeem(r *rand.Rand, s *State) (simtypes.OperationMsg, error) {
	acc, balance, err := s.randomHolder(r, s.Config.VaultToken)
	if err != nil {
		return simtypes.NoOpMsg(Route, "redeem", "unable to get balance"), err
	}
	if !balance.IsPositive() {
		return simtypes.NoOpMsg(Route, "redeem", "no account holds vault tokens"), nil
	}
	amount := randomPositiveAmount(r, balance)
	assets, err := s.queryAmount(types.QueryMsg{PreviewRedeem: &types.PreviewRedeemQuery{Amount: amount}})
	if err != nil {
		return simtypes.NoOpMsg(Route, "redeem", "unable to preview redeem"), err
	}
	// Dust redeems are rejected; redeem everything instead, which now and
	// then empties the vault.
	if assets.IsZero() || r.Intn(10) == 0 {
		amount = balance
	}
	msg := types.NewRedeemMsg(amount, "")
	return s.execute(msg, sdk.NewCoins(sdk.NewCoin(s.Config.VaultToken, amount)), acc, "redeem")
}

// SimulateDonate transfers base tokens to the vault outside of a deposit.
func SimulateDonate(r *rand.Rand, s *State) (simtypes.OperationMsg, error) {
	acc, balance, err := s.randomHolder(r, s.Config.BaseToken)
	if err != nil {
		return simtypes.NoOpMsg(Route, "donate", "unable to get balance"), err
	}
	if !balance.IsPositive() {
		return simtypes.NoOpMsg(Route, "donate", "no account holds base tokens"), nil
	}
	amount := randomPositiveAmount(r, balance.QuoRaw(100).AddRaw(1))
	if err := s.App.Bank.SendCoins(s.App.Context(), acc.Address, s.Vault, sdk.NewCoins(sdk.NewCoin(s.Config.BaseToken, amount))); err != nil {
		return simtypes.NoOpMsg(Route, "donate", err.Error()), nil
	}
	return simtypes.OperationMsg{Route: Route, Name: "donate", OK: true}, nil
}

// SimulateDepositUnaccounted deposits base tokens the vault holds but does
// not account for, without attaching funds.
func SimulateDepositUnaccounted(r *rand.Rand, s *State) (simtypes.OperationMsg, error) {
	unaccounted, err := s.unaccounted()
	if err != nil {
		return simtypes.NoOpMsg(Route, "deposit_unaccounted", "unable to get unaccounted assets"), err
	}
	if !unaccounted.IsPositive() {
		return simtypes.NoOpMsg(Route, "deposit_unaccounted", "vault holds no unaccounted base tokens"), nil
	}
	acc := randomAccount(r, s.Accounts)
	return s.execute(types.NewDepositMsg(randomPositiveAmount(r, unaccounted), ""), nil, acc, "deposit_unaccounted")
}

// SimulateCompound has the keeper fold unaccounted base tokens into the total assets.
func SimulateCompound(_ *rand.Rand, s *State) (simtypes.OperationMsg, error) {
	msg := types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		Keeper: &types.KeeperExecuteMsg{Compound: &types.CompoundMsg{}},
	}}
	return s.execute(msg, nil, s.Keeper, "compound")
}

// SimulateAdvanceTime moves to a later block.
func SimulateAdvanceTime(r *rand.Rand, s *State) (simtypes.OperationMsg, error) {
	s.App.IncreaseTime(time.Duration(randomInt63(r, 24*3600)+1) * time.Second)
	return simtypes.OperationMsg{Route: Route, Name: "advance_time", OK: true}, nil
}

func (s *State) execute(msg types.ExecuteMsg, funds sdk.Coins, signer runner.Account, name string) (simtypes.OperationMsg, error) {
	if _, err := s.App.Execute(context.Background(), s.Vault, msg, funds, signer); err != nil {
		return simtypes.NoOpMsg(Route, name, err.Error()), nil
	}
	return simtypes.OperationMsg{Route: Route, Name: name, OK: true}, nil
}

func (s *State) balance(addr, denom string) (math.Int, error) {
	coin, err := s.App.QueryBalance(context.Background(), addr, denom)
	if err != nil {
		return math.Int{}, err
	}
	return coin.Amount, nil
}

// randomHolder picks a random account holding denom, if any.
func (s *State) randomHolder(r *rand.Rand, denom string) (runner.Account, math.Int, error) {
	for _, i := range r.Perm(len(s.Accounts)) {
		balance, err := s.balance(s.Accounts[i].Address, denom)
		if err != nil {
			return runner.Account{}, math.Int{}, err
		}
		if balance.IsPositive() {
			return s.Accounts[i], balance, nil
		}
	}
	return runner.Account{}, math.ZeroInt(), nil
}

func (s *State) unaccounted() (math.Int, error) {
	held, err := s.balance(s.Vault, s.Config.BaseToken)
	if err != nil {
		return math.Int{}, err
	}
	totalAssets, err := s.queryAmount(types.QueryMsg{TotalAssets: &types.TotalAssetsQuery{}})
	if err != nil {
		return math.Int{}, err
	}
	if held.LT(totalAssets) {
		return math.Int{}, fmt.Errorf("vault holds %s%s but accounts for %s", held, s.Config.BaseToken, totalAssets)
	}
	return held.Sub(totalAssets), nil
}

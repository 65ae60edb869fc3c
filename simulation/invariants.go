package simulation

import (
	"context"
	"fmt"

	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/math"
)

// Invariant checks one property of the vault in s.
type Invariant func(s *State) error

// AllInvariants returns the invariants every vault state must satisfy.
func AllInvariants() []Invariant {
	return []Invariant{
		NoUnbackedFloatInvariant,
		BackedAssetsInvariant,
		SupplyInvariant,
		PreviewMatchesConvertInvariant,
	}
}

// CheckInvariants returns the first broken invariant.
func CheckInvariants(s *State) error {
	for _, invariant := range AllInvariants() {
		if err := invariant(s); err != nil {
			return err
		}
	}
	return nil
}

// NoUnbackedFloatInvariant fails when the vault accounts for assets while no
// vault tokens are outstanding.
func NoUnbackedFloatInvariant(s *State) error {
	totalAssets, supply, err := s.totals()
	if err != nil {
		return err
	}
	if supply.IsZero() && !totalAssets.IsZero() {
		return fmt.Errorf("vault accounts for %s%s without vault tokens", totalAssets, s.Config.BaseToken)
	}
	return nil
}

// BackedAssetsInvariant fails when the vault holds fewer base tokens than it accounts for.
func BackedAssetsInvariant(s *State) error {
	_, err := s.unaccounted()
	return err
}

// SupplyInvariant fails when the reported vault token supply differs from
// what the accounts hold.
func SupplyInvariant(s *State) error {
	_, supply, err := s.totals()
	if err != nil {
		return err
	}
	held := math.ZeroInt()
	for _, acc := range s.Accounts {
		balance, err := s.balance(acc.Address, s.Config.VaultToken)
		if err != nil {
			return err
		}
		held = held.Add(balance)
	}
	if !held.Equal(supply) {
		return fmt.Errorf("accounts hold %s%s, reported supply is %s", held, s.Config.VaultToken, supply)
	}
	return nil
}

// PreviewMatchesConvertInvariant fails when the fee-free vault previews
// differ from the conversions.
func PreviewMatchesConvertInvariant(s *State) error {
	sample := math.NewInt(1_000_000)
	pairs := []struct {
		name             string
		preview, convert types.QueryMsg
	}{
		{
			name:    "deposit",
			preview: types.QueryMsg{PreviewDeposit: &types.PreviewDepositQuery{Amount: sample}},
			convert: types.QueryMsg{ConvertToShares: &types.ConvertToSharesQuery{Amount: sample}},
		},
		{
			name:    "redeem",
			preview: types.QueryMsg{PreviewRedeem: &types.PreviewRedeemQuery{Amount: sample}},
			convert: types.QueryMsg{ConvertToAssets: &types.ConvertToAssetsQuery{Amount: sample}},
		},
	}
	for _, p := range pairs {
		preview, err := s.queryAmount(p.preview)
		if err != nil {
			return err
		}
		convert, err := s.queryAmount(p.convert)
		if err != nil {
			return err
		}
		if !preview.Equal(convert) {
			return fmt.Errorf("preview %s of %s is %s, conversion is %s", p.name, sample, preview, convert)
		}
	}
	return nil
}

func (s *State) totals() (totalAssets, supply math.Int, err error) {
	totalAssets, err = s.queryAmount(types.QueryMsg{TotalAssets: &types.TotalAssetsQuery{}})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	supply, err = s.queryAmount(types.QueryMsg{TotalVaultTokenSupply: &types.TotalVaultTokenSupplyQuery{}})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return totalAssets, supply, nil
}

func (s *State) queryAmount(msg types.QueryMsg) (math.Int, error) {
	var amount math.Int
	if err := s.App.QuerySmart(context.Background(), s.Vault, msg, &amount); err != nil {
		return math.Int{}, err
	}
	return amount, nil
}

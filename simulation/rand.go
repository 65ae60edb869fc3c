package simulation

import (
	"math/rand"

	"github.com/provlabs/vault-standard/runner"

	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"
)

// RandomAccounts derives n accounts with bech32 prefix from r.
func RandomAccounts(r *rand.Rand, n int, prefix string) ([]runner.Account, error) {
	accounts := make([]runner.Account, 0, n)
	for _, acc := range simtypes.RandomAccounts(r, n) {
		addr, err := sdk.Bech32ifyAddressBytes(prefix, acc.Address)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, runner.Account{Address: addr})
	}
	return accounts, nil
}

// randomInt63 generates a random int64 between 0 and maxVal.
func randomInt63(r *rand.Rand, maxVal int64) (result int64) {
	if maxVal == 0 {
		return 0
	}
	return r.Int63n(maxVal)
}

func randomAccount(r *rand.Rand, accs []runner.Account) runner.Account {
	return accs[r.Intn(len(accs))]
}

// randomPositiveAmount returns an amount in [1, maxVal]. maxVal must be positive.
func randomPositiveAmount(r *rand.Rand, maxVal math.Int) math.Int {
	amount := simtypes.RandomAmount(r, maxVal)
	if amount.IsZero() {
		return math.OneInt()
	}
	return amount
}

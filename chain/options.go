package chain

import (
	"fmt"
	"time"

	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Options configure the connection to a node and how transactions are paid for.
type Options struct {
	NodeURI        string        `mapstructure:"node"`
	ChainID        string        `mapstructure:"chain_id"`
	Bech32Prefix   string        `mapstructure:"bech32_prefix"`
	KeyringBackend string        `mapstructure:"keyring_backend"`
	KeyringDir     string        `mapstructure:"keyring_dir"`
	GasPrice       string        `mapstructure:"gas_price"`
	GasAdjustment  float64       `mapstructure:"gas_adjustment"`
	Gas            uint64        `mapstructure:"gas"`
	Simulate       bool          `mapstructure:"simulate"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// DefaultOptions targets a local osmosis node with a test keyring.
func DefaultOptions() Options {
	return Options{
		NodeURI:        "http://localhost:26657",
		ChainID:        "osmosis-1",
		Bech32Prefix:   "osmo",
		KeyringBackend: keyring.BackendTest,
		GasPrice:       "0.025uosmo",
		GasAdjustment:  1.2,
		Gas:            200_000,
		Simulate:       true,
		Timeout:        time.Minute,
	}
}

// Validate checks that the options can be used to connect and sign.
func (o Options) Validate() error {
	if o.NodeURI == "" {
		return fmt.Errorf("node uri must be set")
	}
	if o.ChainID == "" {
		return fmt.Errorf("chain id must be set")
	}
	if o.Bech32Prefix == "" {
		return fmt.Errorf("bech32 prefix must be set")
	}
	if _, err := sdk.ParseDecCoin(o.GasPrice); err != nil {
		return fmt.Errorf("invalid gas price %q: %w", o.GasPrice, err)
	}
	if o.GasAdjustment < 1 {
		return fmt.Errorf("gas adjustment must be at least 1, got %v", o.GasAdjustment)
	}
	if o.Gas == 0 {
		return fmt.Errorf("gas must be positive")
	}
	return nil
}

// WithGasPrice returns a copy of o with a different gas price.
func (o Options) WithGasPrice(gasPrice string) Options {
	o.GasPrice = gasPrice
	return o
}

// WithGas returns a copy of o with a different gas limit.
func (o Options) WithGas(gas uint64) Options {
	o.Gas = gas
	return o
}

// WithSimulate returns a copy of o that does or does not estimate gas
// before broadcasting.
func (o Options) WithSimulate(simulate bool) Options {
	o.Simulate = simulate
	return o
}

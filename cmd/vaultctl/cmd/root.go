// Package cmd implements vaultctl, a client for vault standard contracts
// deployed on a wasmd chain.
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/provlabs/vault-standard/chain"
	"github.com/provlabs/vault-standard/runner"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/cosmos/cosmos-sdk/client"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override flags,
// e.g. VAULTCTL_NODE.
const EnvPrefix = "VAULTCTL"

// Flag names. They double as config file keys.
const (
	flagConfig         = "config"
	flagNode           = "node"
	flagChainID        = "chain-id"
	flagBech32Prefix   = "bech32-prefix"
	flagKeyringBackend = "keyring-backend"
	flagKeyringDir     = "keyring-dir"
	flagFrom           = "from"
	flagGasPrice       = "gas-price"
	flagGas            = "gas"
	flagGasAdjustment  = "gas-adjustment"
	flagSimulate       = "simulate"
	flagVault          = "vault"
)

// NewRootCmd returns the vaultctl command tree. Each call has its own
// configuration.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "vaultctl",
		Short:        "Query and drive vault standard contracts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgFile := v.GetString(flagConfig)
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading config file: %w", err)
			}
			return nil
		},
	}

	defaults := chain.DefaultOptions()
	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to the config file, e.g. /path/to/config.yaml")
	flags.String(flagNode, defaults.NodeURI, "Node uri, endpoint to the node's RPC")
	flags.String(flagChainID, defaults.ChainID, "Chain id of the node")
	flags.String(flagBech32Prefix, defaults.Bech32Prefix, "Bech32 prefix of account addresses")
	flags.String(flagKeyringBackend, defaults.KeyringBackend, "Backend of the keyring to use, options: os, test, file")
	flags.String(flagKeyringDir, defaults.KeyringDir, "Directory of the keyring")
	flags.String(flagFrom, "", "Key to sign transactions with")
	flags.String(flagGasPrice, defaults.GasPrice, "Gas price, e.g. 0.025uosmo")
	flags.Uint64(flagGas, defaults.Gas, "Gas limit when not simulating")
	flags.Float64(flagGasAdjustment, defaults.GasAdjustment, "Multiplier applied to simulated gas")
	flags.Bool(flagSimulate, defaults.Simulate, "Estimate gas by simulating before broadcasting")
	flags.String(flagVault, "", "Address of the vault contract")
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})

	cfg := &config{v: v}
	rootCmd.AddCommand(
		queryCommand(cfg),
		txCommand(cfg),
	)
	return rootCmd
}

// config resolves flags, environment and config file into what commands need.
type config struct {
	v *viper.Viper
}

func (c *config) options() chain.Options {
	opts := chain.DefaultOptions()
	opts.NodeURI = c.v.GetString(flagNode)
	opts.ChainID = c.v.GetString(flagChainID)
	opts.Bech32Prefix = c.v.GetString(flagBech32Prefix)
	opts.KeyringBackend = c.v.GetString(flagKeyringBackend)
	opts.KeyringDir = c.v.GetString(flagKeyringDir)
	opts.GasPrice = c.v.GetString(flagGasPrice)
	opts.Gas = c.v.GetUint64(flagGas)
	opts.GasAdjustment = c.v.GetFloat64(flagGasAdjustment)
	opts.Simulate = c.v.GetBool(flagSimulate)
	return opts
}

func (c *config) chain(cmd *cobra.Command) (*chain.Chain, error) {
	return chain.New(c.options(), log.NewLogger(cmd.ErrOrStderr()).With("module", "vaultctl"))
}

func (c *config) vault() (string, error) {
	addr := c.v.GetString(flagVault)
	if addr == "" {
		return "", fmt.Errorf("--%s is required", flagVault)
	}
	return addr, nil
}

func (c *config) signer() (runner.Account, error) {
	from := c.v.GetString(flagFrom)
	if from == "" {
		return runner.Account{}, fmt.Errorf("--%s is required to sign transactions", flagFrom)
	}
	return runner.Account{KeyName: from}, nil
}

func parseAmount(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok || amount.IsNegative() {
		return math.Int{}, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}

func groupCommand(use, short string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:                        use,
		Aliases:                    aliases,
		Short:                      short,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
}

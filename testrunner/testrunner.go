// Package testrunner selects the runner a vault is tested against from
// configuration.
package testrunner

import (
	"fmt"
	"os"
	"strings"

	"github.com/provlabs/vault-standard/chain"
	"github.com/provlabs/vault-standard/keeper"
	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/simulator"
	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils"

	"cosmossdk.io/log"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding configuration values,
// e.g. VAULT_TEST_CHAIN_NODE overrides chain.node.
const EnvPrefix = "VAULT_TEST"

// RunnerType names a runner.
type RunnerType string

const (
	Simulator RunnerType = "simulator"
	Chain     RunnerType = "chain"
)

// ParseRunnerType matches s exactly against the known runner types.
func ParseRunnerType(s string) (RunnerType, error) {
	switch t := RunnerType(s); t {
	case Simulator, Chain:
		return t, nil
	}
	return "", fmt.Errorf("unknown runner type %q, expected %q or %q", s, Simulator, Chain)
}

// Config selects and configures a runner.
type Config struct {
	Runner       string        `mapstructure:"runner"`
	ArtifactsDir string        `mapstructure:"artifacts_dir"`
	Chain        chain.Options `mapstructure:"chain"`
}

// DefaultConfig runs against the simulator.
func DefaultConfig() Config {
	return Config{
		Runner:       string(Simulator),
		ArtifactsDir: utils.DefaultArtifactsDir,
		Chain:        chain.DefaultOptions(),
	}
}

// Type returns the configured runner type.
func (c Config) Type() (RunnerType, error) {
	return ParseRunnerType(c.Runner)
}

// LoadConfig reads the config file at path, if any, on top of DefaultConfig
// and applies VAULT_TEST_ environment overrides.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Type(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Every key needs a default so that AutomaticEnv picks it up on Unmarshal.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("runner", cfg.Runner)
	v.SetDefault("artifacts_dir", cfg.ArtifactsDir)
	v.SetDefault("chain.node", cfg.Chain.NodeURI)
	v.SetDefault("chain.chain_id", cfg.Chain.ChainID)
	v.SetDefault("chain.bech32_prefix", cfg.Chain.Bech32Prefix)
	v.SetDefault("chain.keyring_backend", cfg.Chain.KeyringBackend)
	v.SetDefault("chain.keyring_dir", cfg.Chain.KeyringDir)
	v.SetDefault("chain.gas_price", cfg.Chain.GasPrice)
	v.SetDefault("chain.gas_adjustment", cfg.Chain.GasAdjustment)
	v.SetDefault("chain.gas", cfg.Chain.Gas)
	v.SetDefault("chain.simulate", cfg.Chain.Simulate)
	v.SetDefault("chain.timeout", cfg.Chain.Timeout)
}

// New returns the runner cfg selects.
func New(cfg Config, logger log.Logger) (runner.Runner, error) {
	t, err := cfg.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case Chain:
		c, err := chain.New(cfg.Chain, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		simCfg := simulator.DefaultConfig()
		if cfg.Chain.Bech32Prefix != "" {
			simCfg.Bech32Prefix = cfg.Chain.Bech32Prefix
		}
		app, err := simulator.New(simCfg, logger)
		if err != nil {
			return nil, err
		}
		return app, nil
	}
}

// MockVaultContract returns the mock vault code the runner cfg selects can
// store: the in-process contract for the simulator, the wasm artifact for a
// chain.
func MockVaultContract(cfg Config) (runner.ContractType, error) {
	t, err := cfg.Type()
	if err != nil {
		return runner.ContractType{}, err
	}
	if t == Simulator {
		return runner.InProcess(keeper.Contract{}), nil
	}
	path := utils.GetWasmPath(cfg.ArtifactsDir, types.ContractName)
	if _, err := os.Stat(path); err != nil {
		return runner.ContractType{}, fmt.Errorf("mock vault artifact not found: %w", err)
	}
	return runner.Artifact(path), nil
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/provlabs/vault-standard/chain"
	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/spf13/cobra"
)

const (
	flagRecipient      = "recipient"
	flagNoFunds        = "no-funds"
	flagAdmin          = "admin"
	flagLabel          = "label"
	flagFee            = "fee"
	flagKeepers        = "keepers"
	flagLockupDuration = "lockup-duration"
	flagWhitelist      = "force-unlock-whitelist"
)

func txCommand(cfg *config) *cobra.Command {
	cmd := groupCommand("tx", "Sign and broadcast vault transactions")

	cmd.AddCommand(
		storeCmd(cfg),
		instantiateCmd(cfg),
		depositCmd(cfg),
		redeemCmd(cfg),
		executeCmd(cfg, "compound", "Fold unaccounted base tokens into the vault's total assets", func(*cobra.Command, []string) (types.ExecuteMsg, error) {
			return extensionExecute(types.ExtensionExecuteMsg{Keeper: &types.KeeperExecuteMsg{Compound: &types.CompoundMsg{}}}), nil
		}),
		unlockCmd(cfg),
		withdrawUnlockedCmd(cfg),
	)
	return cmd
}

// executeCmd builds a command executing the message its arguments describe
// on the vault without attached funds.
func executeCmd(cfg *config, use, short string, build func(cmd *cobra.Command, args []string) (types.ExecuteMsg, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(countArgs(use)),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := build(cmd, args)
			if err != nil {
				return err
			}
			return execute(cmd, cfg, msg, nil)
		},
	}
}

func execute(cmd *cobra.Command, cfg *config, msg types.ExecuteMsg, funds sdk.Coins) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	vault, err := cfg.vault()
	if err != nil {
		return err
	}
	signer, err := cfg.signer()
	if err != nil {
		return err
	}
	c, err := cfg.chain(cmd)
	if err != nil {
		return err
	}
	return executeOn(cmd, c, vault, msg, funds, signer)
}

func executeOn(cmd *cobra.Command, c *chain.Chain, vault string, msg types.ExecuteMsg, funds sdk.Coins, signer runner.Account) error {
	resp, err := c.Execute(cmd.Context(), vault, msg, funds, signer)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Transaction hash: %s\nGas used: %d\n", resp.TxHash, resp.GasUsed)
	return err
}

func storeCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "store <wasm-file>",
		Short: "Upload a vault contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.signer()
			if err != nil {
				return err
			}
			c, err := cfg.chain(cmd)
			if err != nil {
				return err
			}
			codeID, err := c.StoreCode(cmd.Context(), runner.Artifact(args[0]), signer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Code id: %d\n", codeID)
			return err
		},
	}
}

func instantiateCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instantiate <code-id> <base-token>",
		Short: "Instantiate a mock vault over a base token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codeID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid code id %q: %w", args[0], err)
			}
			msg, err := instantiateMsg(cmd, args[1])
			if err != nil {
				return err
			}
			fee, err := sdk.ParseCoinsNormalized(mustGetString(cmd, flagFee))
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", flagFee, err)
			}
			admin := mustGetString(cmd, flagAdmin)
			label := mustGetString(cmd, flagLabel)

			signer, err := cfg.signer()
			if err != nil {
				return err
			}
			c, err := cfg.chain(cmd)
			if err != nil {
				return err
			}
			addr, err := c.Instantiate(cmd.Context(), codeID, msg, admin, label, fee, signer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Vault address: %s\n", addr)
			return err
		},
	}
	cmd.Flags().String(flagAdmin, "", "Wasm admin of the contract")
	cmd.Flags().String(flagLabel, types.ContractLabel, "Contract label")
	cmd.Flags().String(flagFee, "10000000uosmo", "Token factory fee for creating the vault token")
	cmd.Flags().StringSlice(flagKeepers, nil, "Enable the keeper extension with these keepers")
	cmd.Flags().Uint64(flagLockupDuration, 0, "Enable the lockup extension with this duration in seconds")
	cmd.Flags().StringSlice(flagWhitelist, nil, "Enable the force-unlock extension with this whitelist")
	return cmd
}

func instantiateMsg(cmd *cobra.Command, baseToken string) (types.InstantiateMsg, error) {
	msg := types.InstantiateMsg{BaseToken: baseToken}
	exts := &types.InstantiateExtensions{}
	if cmd.Flags().Changed(flagKeepers) {
		keepers, _ := cmd.Flags().GetStringSlice(flagKeepers)
		exts.Keeper = &types.KeeperConfig{Keepers: keepers}
	}
	if cmd.Flags().Changed(flagLockupDuration) {
		duration, _ := cmd.Flags().GetUint64(flagLockupDuration)
		exts.Lockup = &types.LockupConfig{DurationSeconds: duration}
	}
	if cmd.Flags().Changed(flagWhitelist) {
		whitelist, _ := cmd.Flags().GetStringSlice(flagWhitelist)
		exts.ForceUnlock = &types.ForceUnlockConfig{Whitelist: whitelist}
	}
	if len(exts.Enabled()) > 0 {
		msg.Extensions = exts
	}
	return msg, msg.ValidateBasic()
}

func depositCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit base tokens and receive vault tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			msg := types.NewDepositMsg(amount, mustGetString(cmd, flagRecipient))
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			noFunds, _ := cmd.Flags().GetBool(flagNoFunds)

			return withVault(cmd, cfg, func(c *chain.Chain, vault string, info types.VaultInfoResponse, signer runner.Account) error {
				var funds sdk.Coins
				if !noFunds {
					funds = sdk.NewCoins(sdk.NewCoin(info.BaseToken, amount))
				}
				return executeOn(cmd, c, vault, msg, funds, signer)
			})
		},
	}
	cmd.Flags().String(flagRecipient, "", "Account receiving the vault tokens, the signer when empty")
	cmd.Flags().Bool(flagNoFunds, false, "Deposit base tokens already transferred to the vault")
	return cmd
}

func redeemCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem <amount>",
		Short: "Redeem vault tokens for base tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			msg := types.NewRedeemMsg(amount, mustGetString(cmd, flagRecipient))
			if err := msg.ValidateBasic(); err != nil {
				return err
			}

			return withVault(cmd, cfg, func(c *chain.Chain, vault string, info types.VaultInfoResponse, signer runner.Account) error {
				var standard types.VaultStandardInfoResponse
				q := types.QueryMsg{VaultStandardInfo: &types.VaultStandardInfoQuery{}}
				if err := c.QuerySmart(cmd.Context(), vault, q, &standard); err != nil {
					return err
				}
				// Lockup vaults redeem from matured unlocking positions.
				var funds sdk.Coins
				if !standard.HasExtension(types.ExtensionLockup) {
					funds = sdk.NewCoins(sdk.NewCoin(info.VaultToken, amount))
				}
				return executeOn(cmd, c, vault, msg, funds, signer)
			})
		},
	}
	cmd.Flags().String(flagRecipient, "", "Account receiving the base tokens, the signer when empty")
	return cmd
}

func unlockCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <amount>",
		Short: "Escrow vault tokens and start an unlocking position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			msg := extensionExecute(types.ExtensionExecuteMsg{Lockup: &types.LockupExecuteMsg{Unlock: &types.UnlockMsg{Amount: amount}}})
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return withVault(cmd, cfg, func(c *chain.Chain, vault string, info types.VaultInfoResponse, signer runner.Account) error {
				return executeOn(cmd, c, vault, msg, sdk.NewCoins(sdk.NewCoin(info.VaultToken, amount)), signer)
			})
		},
	}
}

func withdrawUnlockedCmd(cfg *config) *cobra.Command {
	cmd := executeCmd(cfg, "withdraw-unlocked <lockup-id>", "Redeem a matured unlocking position", func(cmd *cobra.Command, args []string) (types.ExecuteMsg, error) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return types.ExecuteMsg{}, fmt.Errorf("invalid lockup id %q: %w", args[0], err)
		}
		withdraw := &types.WithdrawUnlockedMsg{LockupID: id}
		if recipient := mustGetString(cmd, flagRecipient); recipient != "" {
			withdraw.Recipient = &recipient
		}
		return extensionExecute(types.ExtensionExecuteMsg{Lockup: &types.LockupExecuteMsg{WithdrawUnlocked: withdraw}}), nil
	})
	cmd.Flags().String(flagRecipient, "", "Account receiving the base tokens, the signer when empty")
	return cmd
}

// withVault resolves the vault, its tokens and the signer before running fn.
func withVault(cmd *cobra.Command, cfg *config, fn func(c *chain.Chain, vault string, info types.VaultInfoResponse, signer runner.Account) error) error {
	vault, err := cfg.vault()
	if err != nil {
		return err
	}
	signer, err := cfg.signer()
	if err != nil {
		return err
	}
	c, err := cfg.chain(cmd)
	if err != nil {
		return err
	}
	var info types.VaultInfoResponse
	if err := c.QuerySmart(cmd.Context(), vault, types.QueryMsg{Info: &types.InfoQuery{}}, &info); err != nil {
		return err
	}
	return fn(c, vault, info, signer)
}

func extensionExecute(ext types.ExtensionExecuteMsg) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &ext}
}

func mustGetString(cmd *cobra.Command, name string) string {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return s
}

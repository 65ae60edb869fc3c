package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/provlabs/vault-standard/types"

	"github.com/spf13/cobra"
)

func queryCommand(cfg *config) *cobra.Command {
	cmd := groupCommand("query", "Query a vault", "q")

	cmd.AddCommand(
		standardInfoCmd(cfg),
		smartQueryCmd(cfg, "info", "Base and vault token of the vault", func(*cobra.Command, []string) (types.QueryMsg, error) {
			return types.QueryMsg{Info: &types.InfoQuery{}}, nil
		}),
		smartQueryCmd(cfg, "total-assets", "Base tokens the vault accounts for", func(*cobra.Command, []string) (types.QueryMsg, error) {
			return types.QueryMsg{TotalAssets: &types.TotalAssetsQuery{}}, nil
		}),
		smartQueryCmd(cfg, "total-supply", "Outstanding vault tokens", func(*cobra.Command, []string) (types.QueryMsg, error) {
			return types.QueryMsg{TotalVaultTokenSupply: &types.TotalVaultTokenSupplyQuery{}}, nil
		}),
		smartQueryCmd(cfg, "preview-deposit <amount>", "Vault tokens a deposit would mint", func(_ *cobra.Command, args []string) (types.QueryMsg, error) {
			amount, err := parseAmount(args[0])
			return types.QueryMsg{PreviewDeposit: &types.PreviewDepositQuery{Amount: amount}}, err
		}),
		smartQueryCmd(cfg, "preview-redeem <amount>", "Base tokens a redeem would pay", func(_ *cobra.Command, args []string) (types.QueryMsg, error) {
			amount, err := parseAmount(args[0])
			return types.QueryMsg{PreviewRedeem: &types.PreviewRedeemQuery{Amount: amount}}, err
		}),
		smartQueryCmd(cfg, "convert-to-shares <amount>", "Fee-free conversion of base tokens to vault tokens", func(_ *cobra.Command, args []string) (types.QueryMsg, error) {
			amount, err := parseAmount(args[0])
			return types.QueryMsg{ConvertToShares: &types.ConvertToSharesQuery{Amount: amount}}, err
		}),
		smartQueryCmd(cfg, "convert-to-assets <amount>", "Fee-free conversion of vault tokens to base tokens", func(_ *cobra.Command, args []string) (types.QueryMsg, error) {
			amount, err := parseAmount(args[0])
			return types.QueryMsg{ConvertToAssets: &types.ConvertToAssetsQuery{Amount: amount}}, err
		}),
		smartQueryCmd(cfg, "keepers", "Keepers allowed to compound", func(*cobra.Command, []string) (types.QueryMsg, error) {
			return extensionQuery(types.ExtensionQueryMsg{Keeper: &types.KeeperQueryMsg{Keepers: &types.KeepersQuery{}}}), nil
		}),
		unlockingPositionsCmd(cfg),
		smartQueryCmd(cfg, "unlocking-position <lockup-id>", "An unlocking position by id", func(_ *cobra.Command, args []string) (types.QueryMsg, error) {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return types.QueryMsg{}, fmt.Errorf("invalid lockup id %q: %w", args[0], err)
			}
			return extensionQuery(types.ExtensionQueryMsg{Lockup: &types.LockupQueryMsg{
				UnlockingPosition: &types.UnlockingPositionQuery{LockupID: id},
			}}), nil
		}),
		smartQueryCmd(cfg, "lockup-duration", "How long unlocking positions are escrowed", func(*cobra.Command, []string) (types.QueryMsg, error) {
			return extensionQuery(types.ExtensionQueryMsg{Lockup: &types.LockupQueryMsg{LockupDuration: &types.LockupDurationQuery{}}}), nil
		}),
		balanceCmd(cfg),
	)
	return cmd
}

// smartQueryCmd builds a query command from the message its arguments
// describe and prints the raw JSON response.
func smartQueryCmd(cfg *config, use, short string, build func(cmd *cobra.Command, args []string) (types.QueryMsg, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(countArgs(use)),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := build(cmd, args)
			if err != nil {
				return err
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			vault, err := cfg.vault()
			if err != nil {
				return err
			}
			c, err := cfg.chain(cmd)
			if err != nil {
				return err
			}
			var resp json.RawMessage
			if err := c.QuerySmart(cmd.Context(), vault, msg, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func standardInfoCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standard-info",
		Short: "Vault standard version and enabled extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetBool("raw")
			vault, err := cfg.vault()
			if err != nil {
				return err
			}
			c, err := cfg.chain(cmd)
			if err != nil {
				return err
			}

			var info types.VaultStandardInfoResponse
			if !raw {
				if err := c.QuerySmart(cmd.Context(), vault, types.QueryMsg{VaultStandardInfo: &types.VaultStandardInfoQuery{}}, &info); err != nil {
					return err
				}
				return printJSON(cmd, info)
			}
			bz, err := c.QueryRaw(cmd.Context(), vault, types.VaultStandardInfoKey.Bytes())
			if err != nil {
				return err
			}
			if bz == nil {
				return fmt.Errorf("%s does not store %s", vault, types.VaultStandardInfoName)
			}
			if err := json.Unmarshal(bz, &info); err != nil {
				return fmt.Errorf("failed to decode %s: %w", types.VaultStandardInfoName, err)
			}
			return printJSON(cmd, info)
		},
	}
	cmd.Flags().Bool("raw", false, "Read the info from contract storage instead of the query entry point")
	return cmd
}

func unlockingPositionsCmd(cfg *config) *cobra.Command {
	cmd := smartQueryCmd(cfg, "unlocking-positions <owner>", "Unlocking positions of an owner", func(cmd *cobra.Command, args []string) (types.QueryMsg, error) {
		q := &types.UnlockingPositionsQuery{Owner: args[0]}
		if cmd.Flags().Changed("start-after") {
			startAfter, err := cmd.Flags().GetUint64("start-after")
			if err != nil {
				return types.QueryMsg{}, err
			}
			q.StartAfter = &startAfter
		}
		if cmd.Flags().Changed("limit") {
			limit, err := cmd.Flags().GetUint32("limit")
			if err != nil {
				return types.QueryMsg{}, err
			}
			q.Limit = &limit
		}
		return extensionQuery(types.ExtensionQueryMsg{Lockup: &types.LockupQueryMsg{UnlockingPositions: q}}), nil
	})
	cmd.Flags().Uint64("start-after", 0, "Only list positions with a greater id")
	cmd.Flags().Uint32("limit", 0, "Maximum number of positions")
	return cmd
}

func balanceCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address> [denom]",
		Short: "Balance of an account, the vault token when no denom is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfg.chain(cmd)
			if err != nil {
				return err
			}
			denom := ""
			if len(args) == 2 {
				denom = args[1]
			} else {
				vault, err := cfg.vault()
				if err != nil {
					return err
				}
				var info types.VaultInfoResponse
				if err := c.QuerySmart(cmd.Context(), vault, types.QueryMsg{Info: &types.InfoQuery{}}, &info); err != nil {
					return err
				}
				denom = info.VaultToken
			}
			coin, err := c.QueryBalance(cmd.Context(), args[0], denom)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), coin.String())
			return err
		},
	}
}

func extensionQuery(ext types.ExtensionQueryMsg) types.QueryMsg {
	return types.QueryMsg{VaultExtension: &ext}
}

// countArgs counts the <placeholders> in a command's use line.
func countArgs(use string) int {
	n := 0
	for _, r := range use {
		if r == '<' {
			n++
		}
	}
	return n
}

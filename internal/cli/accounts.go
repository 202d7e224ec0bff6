package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"certifyrpg/internal/services"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(bonusCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Number of transactions to show")
	historyCmd.Flags().Int("offset", 0, "Number of transactions to skip")
	bonusCmd.Flags().String("period", "", "Bonus period as YYYY-MM (default: current month)")
}

var balanceCmd = &cobra.Command{
	Use:   "balance ACCOUNT_ID",
	Short: "Show an account's balance and tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBalance(cmd, func(ctx context.Context, balance *services.BalanceService) error {
			summary, err := balance.GetAccount(ctx, args[0])
			if err != nil {
				return err
			}
			a := summary.Account
			fmt.Fprintf(cmd.OutOrStdout(), "Account:     %s\n", a.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Balance:     %d\n", a.Balance)
			fmt.Fprintf(cmd.OutOrStdout(), "Total spent: %d\n", a.TotalSpent)
			fmt.Fprintf(cmd.OutOrStdout(), "Tier:        %s (%d%% discount, +%d/month)\n",
				summary.Benefits.Name, summary.Benefits.DiscountPercent, summary.Benefits.MonthlyBonus)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history ACCOUNT_ID",
	Short: "List an account's ledger, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		return withBalance(cmd, func(ctx context.Context, balance *services.BalanceService) error {
			history, err := balance.GetHistory(ctx, args[0], limit, offset)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tKIND\tAMOUNT\tBALANCE\tDESCRIPTION")
			for _, t := range history {
				fmt.Fprintf(tw, "%s\t%s\t%+d\t%d\t%s\n",
					t.CreatedAt.Format(time.RFC3339), t.Kind, t.Amount, t.BalanceAfter, t.Description)
			}
			return tw.Flush()
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [ACCOUNT_ID]",
	Short: "Check balances against the ledger (all accounts when none given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBalance(cmd, func(ctx context.Context, balance *services.BalanceService) error {
			ids := args
			if len(ids) == 0 {
				var err error
				if ids, err = balance.ListAccountIDs(ctx); err != nil {
					return err
				}
			}

			mismatches := 0
			for _, id := range ids {
				err := balance.Reconcile(ctx, id)
				switch {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "ok        %s\n", id)
				case errors.Is(err, services.ErrBalanceMismatch):
					mismatches++
					fmt.Fprintf(cmd.OutOrStdout(), "MISMATCH  %s: %v\n", id, err)
				default:
					return err
				}
			}

			if mismatches > 0 {
				return fmt.Errorf("%d of %d accounts do not match their ledger", mismatches, len(ids))
			}
			return nil
		})
	},
}

var bonusCmd = &cobra.Command{
	Use:   "bonus",
	Short: "Grant the monthly tier bonus to every account",
	Long: `Grant each account the monthly credit bonus of its tier for one period.
Running it again for the same period grants nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		if period == "" {
			period = time.Now().UTC().Format("2006-01")
		}

		return withBalance(cmd, func(ctx context.Context, balance *services.BalanceService) error {
			ids, err := balance.ListAccountIDs(ctx)
			if err != nil {
				return err
			}

			granted := 0
			for _, id := range ids {
				tx, err := balance.GrantMonthlyBonus(ctx, id, period)
				if err != nil {
					return fmt.Errorf("account %s: %w", id, err)
				}
				if tx != nil {
					granted++
					fmt.Fprintf(cmd.OutOrStdout(), "%s  +%d\n", id, tx.Amount)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s bonus to %d of %d accounts\n", period, granted, len(ids))
			return nil
		})
	},
}

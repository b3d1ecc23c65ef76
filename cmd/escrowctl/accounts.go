package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/accounts"
	"github.com/spf13/cobra"
)

func accountsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and fund ledger accounts",
	}
	cmd.AddCommand(depositCmd(open), balanceCmd(open), historyCmd(open))
	return cmd
}

func depositCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit [account] [cents]",
		Short: "Credit an account with new funds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be an integer number of cents: %w", err)
			}
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			balance, err := accounts.NewAccountService(e.log, e.store).Deposit(cmd.Context(), domain.AccountID(args[0]), amount)
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "%s balance %s\n", args[0], cents(balance))
			return nil
		},
	}
}

func balanceCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Print an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			balance, err := accounts.NewAccountService(e.log, e.store).Balance(cmd.Context(), domain.AccountID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], cents(balance))
			return nil
		},
	}
}

func historyCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "history [account]",
		Short: "List transfers touching an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			account := domain.AccountID(args[0])
			transfers, err := accounts.NewAccountService(e.log, e.store).History(cmd.Context(), account)
			if err != nil {
				return err
			}
			for _, t := range transfers {
				amount := okColor.Sprint("+" + cents(t.AmountCents))
				if t.From == account {
					amount = errColor.Sprint("-" + cents(t.AmountCents))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s -> %s  %s\n",
					t.CreatedAt.Format(time.RFC3339), amount, t.From, t.To, t.Reason)
			}
			return nil
		},
	}
}

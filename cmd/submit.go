package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

func submitCmd() *cobra.Command {
	var (
		amount  string
		hour    string
		txType  string
		day     string
		forward bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Score one test transaction and print the result",
		Example: `  fraud-dashboard submit --amount 100.50 --hour 23 --type online --day 6
  fraud-dashboard submit --amount 4999 --hour 3 --type atm --day 1 --forward`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := initTelemetry(cfg); err != nil {
				return err
			}
			defer telemetry.Shutdown(context.Background())

			a, err := newApp(cmd.Context(), cfg, forward)
			if err != nil {
				return err
			}
			defer a.Close()

			in := models.TestTransactionInput{
				Amount: models.FormValue(amount),
				Hour:   models.FormValue(hour),
				Type:   models.FormValue(txType),
				Day:    models.FormValue(day),
			}
			submission, err := a.submitter.Submit(cmd.Context(), in)

			out := cmd.OutOrStdout()
			if submission.Transaction != nil {
				fmt.Fprintf(out, "Transaction: %s (%s, %s)\n",
					submission.Transaction.TransactionID,
					render.Currency(submission.Transaction.Amount),
					submission.Transaction.TransactionType)
			}
			fmt.Fprintln(out, render.TerminalBanner(submission.Banner))
			return err
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "100", "transaction amount in dollars")
	cmd.Flags().StringVar(&hour, "hour", "12", "hour of day (0-23)")
	cmd.Flags().StringVar(&txType, "type", "online", "transaction type (online, in-store, atm)")
	cmd.Flags().StringVar(&day, "day", "2", "day of week (0=Mon, 6=Sun)")
	cmd.Flags().BoolVar(&forward, "forward", false, "forward a fraud result to the alert service")
	return cmd
}

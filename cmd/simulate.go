package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/clients"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

func simulateCmd() *cobra.Command {
	var (
		count   int
		delay   time.Duration
		seed    int64
		forward bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Score a stream of random test transactions",
		Long: `simulate draws random transactions (mostly small daytime purchases, some large
night-time ones), scores each one and forwards fraud results to the alert service.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := initTelemetry(cfg); err != nil {
				return err
			}
			defer telemetry.Shutdown(context.Background())

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			scoring := clients.NewScoringClient(cfg.ScoringURL, cfg.HTTPTimeout)
			if err := scoring.Health(ctx); err != nil {
				return fmt.Errorf("ML service is not running at %s: %w", cfg.ScoringURL, err)
			}
			if forward {
				if err := clients.NewAlertClient(cfg.AlertsURL, cfg.HTTPTimeout).Health(ctx); err != nil {
					telemetry.Logger.Warn("Alert service not running, alerts will be skipped", zap.Error(err))
					fmt.Fprintln(out, "⚠️  Alert service not running (alerts will be skipped)")
					forward = false
				}
			}

			a, err := newApp(ctx, cfg, forward)
			if err != nil {
				return err
			}
			defer a.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			fmt.Fprintf(out, "Simulating %d transactions (delay %s)\n%s\n", count, delay, strings.Repeat("=", 60))

			sim := service.NewSimulator(a.submitter, seed)
			res := sim.Run(ctx, count, delay, func(n int, sub *service.Submission, err error) {
				if err != nil {
					fmt.Fprintf(out, "[%d] ❌ %s\n\n", n, sub.Banner.Message)
					return
				}
				prediction := "✅ NORMAL"
				if sub.Result.IsFraud {
					prediction = "🚨 FRAUD"
				}
				fmt.Fprintf(out, "[%d] %s\n", n, sub.Transaction.TransactionID)
				fmt.Fprintf(out, "     Amount: %s\n", render.Currency(sub.Transaction.Amount))
				fmt.Fprintf(out, "     Fraud Probability: %.4f\n", sub.Result.FraudProbability)
				fmt.Fprintf(out, "     Prediction: %s\n", prediction)
				fmt.Fprintf(out, "     Risk Level: %s\n\n", sub.Result.RiskLevel)
			})

			fmt.Fprintln(out, strings.Repeat("=", 60))
			fmt.Fprintf(out, "Total: %d  Fraud: %d  Failed: %d  Fraud Rate: %.2f%%\n",
				res.Total, res.Fraud, res.Failed, res.FraudRate())
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of transactions to send")
	cmd.Flags().DurationVar(&delay, "delay", 2*time.Second, "pause between transactions")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&forward, "forward", true, "forward fraud results to the alert service")
	return cmd
}

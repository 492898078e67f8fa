package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/api"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server and the background pollers",
		RunE:  runServe,
	}

	cmd.Flags().String("port", "", "HTTP listen port")
	cmd.Flags().Int("alert-limit", 0, "number of recent alerts shown")
	cmd.Flags().Bool("forward-alerts", false, "forward fraud results to the alert service")
	cmd.Flags().Duration("health-interval", 0, "health poll interval")
	cmd.Flags().Duration("alerts-interval", 0, "alert feed poll interval")

	bindFlags(cmd.Flags(), map[string]string{
		"port":                 "port",
		"alerts.limit":         "alert-limit",
		"alerts.forward":       "forward-alerts",
		"poll.health_interval": "health-interval",
		"poll.alerts_interval": "alerts-interval",
	})
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initTelemetry(cfg); err != nil {
		return err
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Fraud Dashboard",
		zap.String("scoring_url", cfg.ScoringURL),
		zap.String("alerts_url", cfg.AlertsURL),
	)

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, cfg.ForwardAlerts)
	if err != nil {
		return err
	}
	defer a.Close()

	// Start pollers
	runner := service.NewRunner(a.state, a.scoring, a.alerts, cfg.AlertLimit, service.Intervals{
		Health: cfg.HealthInterval,
		Alerts: cfg.AlertsInterval,
	})
	pollCtx, stopPollers := context.WithCancel(ctx)
	pollersDone := make(chan struct{})
	go func() {
		runner.Run(pollCtx)
		close(pollersDone)
	}()
	defer func() {
		stopPollers()
		<-pollersDone
	}()

	// Setup HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(a.state, a.submitter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		telemetry.Logger.Info("Fraud Dashboard starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	telemetry.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
	return nil
}

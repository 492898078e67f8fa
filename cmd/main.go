package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/config"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

const serviceName = "fraud-dashboard"

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   serviceName,
		Short: "Fraud monitoring dashboard",
		Long: `fraud-dashboard polls the ML scoring service and the alert service, submits
synthetic test transactions and shows a live fraud-rate trend in the browser or the terminal.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./fraud-dashboard.yaml or $HOME/.config/fraud-dashboard/fraud-dashboard.yaml)")
	flags.String("scoring-url", "", "ML scoring service base URL")
	flags.String("alerts-url", "", "alert service base URL")
	flags.Duration("timeout", 0, "timeout of every upstream HTTP call")
	flags.String("redis-url", "", "Redis address for the submission lock (disabled when empty)")
	flags.String("kafka-brokers", "", "comma separated Kafka brokers for classification events (disabled when empty)")
	flags.String("nats-url", "", "NATS URL for stats notifications (disabled when empty)")
	flags.String("tracing-endpoint", "", "OTLP/HTTP endpoint for traces (disabled when empty)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")

	bindFlags(flags, map[string]string{
		"scoring.url":      "scoring-url",
		"alerts.url":       "alerts-url",
		"http.timeout":     "timeout",
		"redis.url":        "redis-url",
		"kafka.brokers":    "kafka-brokers",
		"nats.url":         "nats-url",
		"tracing.endpoint": "tracing-endpoint",
		"logging.level":    "log-level",
		"logging.format":   "log-format",
	})

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		telemetry.Logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/%s", home, serviceName))
		}
		v.SetConfigName(serviceName)
		v.SetConfigType("yaml")
	}

	config.BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// loadConfig resolves flags, env, file and defaults into a Config.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initTelemetry sets up the global logger and tracer for a command.
func initTelemetry(cfg *config.Config) error {
	if err := telemetry.InitTelemetry(serviceName, telemetry.Options{
		Version:    version,
		TracingURL: cfg.TracingEndpoint,
		LogLevel:   cfg.LogLevel,
		LogFormat:  cfg.LogFormat,
	}); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return nil
}

// bindFlags binds config keys to flags so a flag set on the command line wins.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

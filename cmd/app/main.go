package main

import (
	"context"
	"fmt"
	"os"

	"FinPulse/internal/di"
	"FinPulse/pkg/config"
	"FinPulse/pkg/server"

	"github.com/spf13/cobra"
)

type injector func(cfg *config.Config) (*server.App, func(), error)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "app",
		Short: "FinPulse market data harvester and analyzer",
		Long: `FinPulse collects equity, crypto and news data on a schedule,
detects cross-exchange arbitrage, scores headline sentiment, forecasts prices
and serves the results to a dashboard.

Each subcommand runs one long-lived process.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")

	root.AddCommand(
		processCmd("harvest", "Collect prices and headlines every harvest interval", &configPath, di.InitializeHarvester),
		processCmd("analyze", "Detect arbitrage, score sentiment and forecast every analysis interval", &configPath, di.InitializeAnalyzer),
		processCmd("dashboard", "Serve the dashboard API", &configPath, di.InitializeDashboard),
		processCmd("archive", "Archive price events from Kafka into ClickHouse", &configPath, di.InitializeArchiver),
	)
	return root
}

func processCmd(use, short string, configPath *string, initialize injector) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(*configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			app, cleanup, err := initialize(cfg)
			if err != nil {
				return fmt.Errorf("%s initialization failed: %w", use, err)
			}
			defer cleanup()
			return app.Run(cmd.Context())
		},
	}
}

package main

import (
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/bootstrap"
	"github.com/ashwin-iyer1/portfolio_backend/internal/config"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
)

var (
	configPath string

	cfg    *config.Config
	logger *slog.Logger
	app    *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Operator commands for the portfolio backend",
	Long: `Portfolio runs the maintenance jobs of the portfolio site backend.

SNAPSHOTS:

  $ portfolio refresh projects        # Sync GitHub repos into the database and repos.json
  $ portfolio refresh songs --force   # Dump the songs table to songs.json
  $ portfolio refresh clash           # Save the Clash of Clans player to COC.json

OURA:

  $ portfolio oura import sleep.json --type sleep_daily
  $ portfolio dashboard --subset activity,heart_rate
  $ portfolio dashboard --url http://localhost:8080 --json

ADMIN:

  $ portfolio admin-token             # Mint a bearer token for /admin routes
  $ portfolio migrate                 # Apply the database schema`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		logger = bootstrap.NewLogger(cfg.App.Env, os.Stderr)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		err := app.Close()
		app = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config file")
}

// openApp connects to the database on first use.
func openApp(cmd *cobra.Command) (*bootstrap.App, error) {
	if app != nil {
		return app, nil
	}

	var err error
	if app, err = bootstrap.New(cmd.Context(), cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return app, nil
}

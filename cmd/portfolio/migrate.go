package main

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Create the oura_data, repos and songs tables for the configured
driver. Every statement is idempotent, so running it twice is harmless.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		if err := a.DB.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s schema applied\n", a.DB.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

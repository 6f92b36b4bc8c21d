package main

import (
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"os"
)

var (
	importType string
)

var ouraCmd = &cobra.Command{
	Use:   "oura",
	Short: "Manage stored Oura data",
}

var ouraImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an Oura API response",
	Long: `Import a file holding an Oura API response ({"data": [...]}) for one
metric type. Each item is stored under its "day", or the date of its
"timestamp" or "start_datetime". Heart-rate samples are grouped per day.
Days already stored for the type are overwritten.

EXAMPLES:

  portfolio oura import daily_sleep.json --type sleep_daily
  portfolio oura import heartrate.json -t heart_rate`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mt, err := oura.ParseMetricType(importType)
		if err != nil {
			return err
		}

		body, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		records, err := oura.DayRecordsFromAPI(mt, body)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No days found.")
			return nil
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		if err := a.Oura.Import(cmd.Context(), a.OuraUoW(), records); err != nil {
			return fmt.Errorf("failed to import %s: %w", mt, err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ imported %d %s days (%s to %s)\n",
			len(records), mt, records[0].Day, records[len(records)-1].Day)
		return nil
	},
}

func init() {
	ouraImportCmd.Flags().StringVarP(&importType, "type", "t", "", "metric type of the file")
	_ = ouraImportCmd.MarkFlagRequired("type")
	ouraCmd.AddCommand(ouraImportCmd)
	rootCmd.AddCommand(ouraCmd)
}

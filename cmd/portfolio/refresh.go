package main

import (
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/snapshot"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	refreshForce bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <projects|songs|clash>",
	Short: "Refresh a JSON snapshot",
	Long: `Refresh one of the snapshots the site falls back to when the
database is unreachable.

SNAPSHOTS:

  projects   fetch the GitHub repositories, reconcile the repos table and
             write repos.json
  songs      write the songs table to songs.json (Saturdays only unless
             --force is given)
  clash      fetch the Clash of Clans player and write COC.json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(snapshot.Projects), string(snapshot.Songs), string(snapshot.Clash)},
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := snapshot.ParseName(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}

		report, err := a.Refresher.Refresh(cmd.Context(), name, refreshForce)
		if err != nil {
			return fmt.Errorf("failed to refresh %s: %w", name, err)
		}
		printReport(cmd, report)
		return nil
	},
}

func printReport(cmd *cobra.Command, report snapshot.Report) {
	out := cmd.OutOrStdout()
	if report.Skipped {
		color.New(color.FgYellow).Fprintf(out, "%s skipped: %s\n", report.Name, report.Reason)
		return
	}

	color.New(color.FgGreen).Fprintf(out, "✓ %s snapshot refreshed (%d)\n", report.Name, report.Count)
	if report.Plan == nil {
		return
	}

	faint := color.New(color.Faint)
	for _, p := range report.Plan.Added {
		faint.Fprintf(out, "  + %s\n", p.Name)
	}
	for _, c := range report.Plan.Changed {
		faint.Fprintf(out, "  ~ %s\n", c.Project.Name)
	}
	for _, name := range report.Plan.Removed {
		faint.Fprintf(out, "  - %s\n", name)
	}
}

func init() {
	refreshCmd.Flags().BoolVarP(&refreshForce, "force", "f", false, "refresh even when the schedule says otherwise")
	rootCmd.AddCommand(refreshCmd)
}

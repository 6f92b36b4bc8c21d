package main

import (
	"encoding/json"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/ouraclient"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"io"
	"time"
)

var (
	dashboardURL    string
	dashboardStart  string
	dashboardEnd    string
	dashboardSubset []string
	dashboardDark   bool
	dashboardJSON   bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the Oura dashboard",
	Long: `Aggregate the Oura metrics for a date range and print the dashboard
widgets. Metrics are read from the database, or from a running server's
/api/oura route when --url is given.

EXAMPLES:

  portfolio dashboard                                  # Last 30 days, every widget
  portfolio dashboard --subset activity,readiness      # Only some widgets
  portfolio dashboard --start 2026-10-01 --end 2026-10-07
  portfolio dashboard --url http://localhost:8080 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := dashboard.DateRangeFor(time.Now(), cfg.Oura.DashboardDays)
		if dashboardStart != "" {
			d, err := oura.ParseDay(dashboardStart)
			if err != nil {
				return err
			}
			r.Start = &d
		}
		if dashboardEnd != "" {
			d, err := oura.ParseDay(dashboardEnd)
			if err != nil {
				return err
			}
			r.End = &d
		}

		subset, err := dashboard.DefaultCatalog.ParseKeys(dashboardSubset)
		if err != nil {
			return err
		}

		var fetcher dashboard.Fetcher
		if dashboardURL != "" {
			fetcher = ouraclient.New(dashboardURL, 30*time.Second)
		} else {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			fetcher = dashboard.NewServiceFetcher(a.Oura, a.OuraUoW())
		}

		aggregator := dashboard.NewAggregator(dashboard.DefaultCatalog, fetcher, logger,
			dashboard.WithHeartRateWindow(cfg.Oura.HeartRateWindow))
		vm, err := aggregator.Aggregate(cmd.Context(), dashboard.Request{Range: r, Subset: subset})
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		widgets := dashboard.Render(vm, subset, dashboardDark)
		if dashboardJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(widgets)
		}
		printWidgets(cmd.OutOrStdout(), widgets)
		return nil
	},
}

func printWidgets(out io.Writer, widgets []dashboard.Widget) {
	title := color.New(color.FgCyan, color.Bold)
	faint := color.New(color.Faint)

	for _, w := range widgets {
		title.Fprintln(out, w.Title)
		if w.Empty {
			faint.Fprintf(out, "  %s\n", w.EmptyText)
			continue
		}

		for _, s := range w.Series {
			if len(s.Points) == 0 {
				faint.Fprintf(out, "  %s: no points\n", s.Label)
				continue
			}
			last := s.Points[len(s.Points)-1]
			fmt.Fprintf(out, "  %s: %d points, latest %s = %.1f\n", s.Label, len(s.Points), last.X, last.Y)
		}
		for _, item := range w.Items {
			fmt.Fprintf(out, "  %s\n", item.Heading)
			for _, line := range item.Lines {
				faint.Fprintf(out, "    %s\n", line)
			}
		}
	}
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardURL, "url", "", "base URL of a running server to read metrics from")
	dashboardCmd.Flags().StringVar(&dashboardStart, "start", "", "first day (YYYY-MM-DD)")
	dashboardCmd.Flags().StringVar(&dashboardEnd, "end", "", "last day (YYYY-MM-DD)")
	dashboardCmd.Flags().StringSliceVarP(&dashboardSubset, "subset", "s", nil, "metric keys to show")
	dashboardCmd.Flags().BoolVar(&dashboardDark, "dark", false, "use the dark theme")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "print widgets as JSON")
	rootCmd.AddCommand(dashboardCmd)
}

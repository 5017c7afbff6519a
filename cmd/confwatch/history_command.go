package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"confwatch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs, or the deliveries of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return printDeliveries(cmd, store, runID)
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					humanize.Time(run.StartedAt),
					run.Mode,
					string(run.Status),
					strconv.Itoa(run.EditionsUpdated),
					strconv.Itoa(run.AnalysesStored),
					strconv.Itoa(run.NotificationsSent),
					formatRunDuration(run),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Mode", "Status", "Updated", "Analyses", "Notified", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show deliveries recorded for this run id")
	return cmd
}

func printDeliveries(cmd *cobra.Command, store *history.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %q not found", runID)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s, %s) started %s\n", run.RunID, run.Mode, run.Status, humanize.Time(run.StartedAt))
	if run.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", run.Error)
	}

	deliveries, err := store.Deliveries(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(deliveries) == 0 {
		fmt.Fprintln(out, "No deliveries recorded")
		return nil
	}
	rows := make([][]string, 0, len(deliveries))
	for _, d := range deliveries {
		rows = append(rows, []string{d.Venue, d.EditionID, d.Channel, string(d.Status), dash(d.Error)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Venue", "Edition", "Channel", "Status", "Error"},
		rows,
		nil,
	))
	return nil
}

func formatRunDuration(run history.Run) string {
	d := run.Duration()
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

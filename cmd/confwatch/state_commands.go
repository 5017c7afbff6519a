package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"confwatch/internal/state"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect stored edition fingerprints",
	}

	stateCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tracked editions and their recorded first deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := state.Open(cfg.StatePath(), nil)
			if err != nil {
				return err
			}
			records := store.Records()
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No editions tracked yet")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				tl := record.Fingerprint.Timeline
				rows = append(rows, []string{
					record.ID,
					strconv.Itoa(record.Fingerprint.Year),
					dash(tl.Deadline),
					dash(tl.AbstractDeadline),
					dash(tl.Comment),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Edition", "Year", "Deadline", "Abstract", "Comment"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d editions tracked\n", len(records))
			return nil
		},
	})

	return stateCmd
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

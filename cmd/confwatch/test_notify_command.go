package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"confwatch/internal/dataset"
	"confwatch/internal/knowledge"
	"confwatch/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var venue string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a sample notification to every configured channel",
		Long: `Render a sample update notification and send it to every configured channel.

With --venue, the stored analyses of that venue are used as the trend section.
With --dry-run, the rendered markdown is printed and nothing is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var recent []knowledge.YearEntry
			key := strings.TrimSpace(venue)
			if key != "" {
				kb, err := knowledge.Open(cfg.KnowledgeBasePath(), logger)
				if err != nil {
					return err
				}
				recent = kb.Recent(key, notifications.HistoryDepth)
			}
			msg := notifications.Compose(sampleInfo(key, time.Now()), recent)

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprint(out, msg.Markdown)
				return nil
			}

			svc := notifications.NewService(cfg, logger)
			deliveries := svc.Dispatch(cmd.Context(), msg)
			if len(deliveries) == 0 {
				fmt.Fprintln(out, "No notification channels configured")
				return nil
			}
			failed := 0
			for _, d := range deliveries {
				if d.Delivered() {
					fmt.Fprintf(out, "%s: sent (%s)\n", d.Channel, d.Elapsed.Round(time.Millisecond))
					continue
				}
				failed++
				fmt.Fprintf(out, "%s: failed: %v\n", d.Channel, d.Err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d channels failed", failed, len(deliveries))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&venue, "venue", "", "Venue key whose stored analyses fill the trend section")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rendered message without sending it")
	return cmd
}

// sampleInfo builds a display record for an edition whose deadline is a month
// after now.
func sampleInfo(venue string, now time.Time) notifications.Info {
	title := "ConfWatch Test"
	if venue != "" {
		title = strings.ToUpper(venue)
	}
	deadlineAt := now.AddDate(0, 1, 0).UTC().Format("2006-01-02 15:04:05")
	series := dataset.Series{
		Title:       title,
		Description: "Sample notification sent by confwatch test-notify",
		Subject:     "AI",
		Rank:        dataset.Rank{CCF: "A"},
		DBLP:        venue,
	}
	edition := dataset.Edition{
		ID:       dataset.EditionID("sample"),
		Year:     now.Year(),
		Timezone: "UTC",
		Date:     "TBD",
		Place:    "Online",
		Timeline: []dataset.TimelineEntry{{Deadline: deadlineAt}},
	}
	return notifications.BuildInfo(series, edition, now)
}

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"confwatch/internal/knowledge"
	"confwatch/internal/logging"
	"confwatch/internal/notifications"
	"confwatch/internal/pipeline"
)

func newKnowledgeCommand(ctx *commandContext) *cobra.Command {
	kbCmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"knowledge"},
		Short:   "Inspect and correct the knowledge base",
	}

	kbCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List analyzed venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := openKnowledge(ctx)
			if err != nil {
				return err
			}
			venues := kb.Venues()
			if len(venues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base is empty")
				return nil
			}
			rows := make([][]string, 0, len(venues))
			for _, venue := range venues {
				entries := kb.Recent(venue, 0)
				latest := "-"
				titles := 0
				var usage knowledge.TokenUsage
				for i, entry := range entries {
					if i == 0 {
						latest = entry.Year
					}
					titles += entry.Analysis.TitlesCount
					usage = usage.Add(entry.Analysis.TokenUsage)
				}
				rows = append(rows, []string{
					venue,
					strconv.Itoa(len(entries)),
					latest,
					strconv.Itoa(titles),
					formatTokens(usage.TotalTokens),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Venue", "Years", "Latest", "Titles", "Tokens"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	})

	kbCmd.AddCommand(&cobra.Command{
		Use:   "show <venue>",
		Short: "Show stored themes for a venue, newest year first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := openKnowledge(ctx)
			if err != nil {
				return err
			}
			venue := strings.TrimSpace(args[0])
			entries := kb.Recent(venue, 0)
			if len(entries) == 0 {
				return fmt.Errorf("no analyses stored for %q", venue)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, entry := range entries {
				a := entry.Analysis
				title := fmt.Sprintf("%s %s - %d titles - %s tokens - %s",
					venue, entry.Year, a.TitlesCount, formatTokens(a.TokenUsage.TotalTokens), a.UpdatedAt)
				for _, line := range renderSectionHeader(title, colorize) {
					fmt.Fprintln(out, line)
				}
				themes := notifications.SortThemes(a.Summary)
				if len(themes) == 0 {
					fmt.Fprint(out, "  (no themes)\n\n")
					continue
				}
				rows := make([][]string, 0, len(themes))
				for _, theme := range themes {
					rows = append(rows, []string{theme.Name, string(theme.Ratio), theme.Description})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Theme", "Ratio", "Description"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintln(out)
			}
			return nil
		},
	})

	kbCmd.AddCommand(&cobra.Command{
		Use:   "recompute <venue> <year>",
		Short: "Re-run the analysis for one venue year and replace the stored entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			venue := strings.TrimSpace(args[0])
			year, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || year <= 0 {
				return fmt.Errorf("invalid year %q", args[1])
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctrl := pipeline.NewController(cfg, newAnalyzer(cfg, logger), notifications.NewServiceWithChannels(logger), logger)
			analysis, err := ctrl.Recompute(cmd.Context(), venue, year)
			if err != nil {
				if errors.Is(err, pipeline.ErrNoPapers) {
					logger.Warn("stored analysis left unchanged", logging.String(logging.FieldVenue, venue), logging.Int(logging.FieldYear, year))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recomputed %s %s: %d titles, %d themes, %s tokens\n",
				venue, formatYear(year), analysis.TitlesCount, len(analysis.Summary), formatTokens(analysis.TokenUsage.TotalTokens))
			return nil
		},
	})

	return kbCmd
}

func openKnowledge(ctx *commandContext) (*knowledge.Base, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return knowledge.Open(cfg.KnowledgeBasePath(), nil)
}

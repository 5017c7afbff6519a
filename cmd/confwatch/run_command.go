package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"confwatch/internal/config"
	"confwatch/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var testFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one tracking pass over the dataset",
		Long: `Run one tracking pass: detect changed editions, analyze prior years of each
updated venue, and notify the configured channels.

With --test, only the given dataset file is read and every edition in it is
treated as updated. State and knowledge base are still written.`,
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

			opts := pipeline.Options{}
			if path := strings.TrimSpace(testFile); path != "" {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return fmt.Errorf("resolve test file: %w", err)
				}
				opts.TestFile = expanded
			}

			ctrl, closeFn := newController(cfg, logger)
			defer closeFn()

			summary, err := ctrl.Run(cmd.Context(), opts)
			if summary != nil {
				fmt.Fprint(cmd.OutOrStdout(), renderRunSummary(summary, shouldColorize(cmd.OutOrStdout())))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&testFile, "test", "", "Process a single dataset file and force notifications for its editions")
	return cmd
}

package main

import (
	"log/slog"
	"time"

	"confwatch/internal/analysis"
	"confwatch/internal/config"
	"confwatch/internal/dblp"
	"confwatch/internal/history"
	"confwatch/internal/logging"
	"confwatch/internal/notifications"
	"confwatch/internal/pipeline"
	"confwatch/internal/services/llm"
)

func newAnalyzer(cfg *config.Config, logger *slog.Logger) *analysis.Analyzer {
	fetcher := dblp.New(
		cfg.DBLP.BaseURL,
		time.Duration(cfg.DBLP.TimeoutSeconds)*time.Second,
		dblp.WithPace(time.Duration(cfg.DBLP.PaceMillis)*time.Millisecond),
		dblp.WithLogger(logger),
	)

	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	},
		llm.WithRetryMaxAttempts(llmCfg.RetryAttempts),
		llm.WithRetryDelay(llmCfg.RetryDelay),
	)

	tagger := analysis.NewTagger(client, cfg.LLM.TagTemperature, logger)
	summarizer := analysis.NewSummarizer(client, cfg.LLM.ThemeTemperature, logger)
	return analysis.NewAnalyzer(fetcher, tagger, summarizer, logger,
		analysis.WithBatchSize(cfg.Pipeline.BatchSize))
}

// newController wires the production collaborators. The returned close
// function releases the history ledger when one was opened.
func newController(cfg *config.Config, logger *slog.Logger) (*pipeline.Controller, func()) {
	opts := []pipeline.Option{}
	closeFn := func() {}

	ledger, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history ledger unavailable", "ledger_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history is not recorded"),
			logging.String(logging.FieldErrorHint, "remove or migrate the history database"),
		)
	} else {
		opts = append(opts, pipeline.WithLedger(ledger))
		closeFn = func() { _ = ledger.Close() }
	}

	ctrl := pipeline.NewController(cfg, newAnalyzer(cfg, logger), notifications.NewService(cfg, logger), logger, opts...)
	return ctrl, closeFn
}

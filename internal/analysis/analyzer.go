package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"confwatch/internal/dblp"
	"confwatch/internal/knowledge"
	"confwatch/internal/logging"
	"confwatch/internal/services/llm"
)

const (
	// DefaultBatchSize is the number of titles sent per stage-one call.
	DefaultBatchSize = 10
	updatedAtLayout  = "2006-01-02"
)

// PaperFetcher is the bibliographic collaborator.
type PaperFetcher interface {
	FetchPapers(ctx context.Context, venue string, year, limit int) []dblp.Paper
}

// Analyzer produces a YearAnalysis from a venue's papers for one year.
type Analyzer struct {
	fetcher    PaperFetcher
	tagger     *Tagger
	summarizer *Summarizer
	batchSize  int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBatchSize overrides the stage-one batch size.
func WithBatchSize(size int) Option {
	return func(a *Analyzer) {
		if size > 0 {
			a.batchSize = size
		}
	}
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer wires the fetcher and both model stages together.
func NewAnalyzer(fetcher PaperFetcher, tagger *Tagger, summarizer *Summarizer, logger *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:    fetcher,
		tagger:     tagger,
		summarizer: summarizer,
		batchSize:  DefaultBatchSize,
		now:        time.Now,
		logger:     logging.NewComponentLogger(logger, "analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeYear fetches up to maxPapers papers of venue in year, tags them in
// batches, and summarizes the tag histogram. It returns nil without error when
// there are no papers or no tags. A stage-one batch failure is logged and the
// batch skipped; a stage-two failure is returned.
func (a *Analyzer) AnalyzeYear(ctx context.Context, venue string, year int, displayName string, maxPapers int) (*knowledge.YearAnalysis, error) {
	logger := logging.WithContext(ctx, a.logger).With(
		logging.String(logging.FieldVenue, venue),
		logging.Int(logging.FieldYear, year),
	)

	papers := a.fetcher.FetchPapers(ctx, venue, year, maxPapers)
	if len(papers) == 0 {
		logger.Info("no papers found, skipping year")
		return nil, nil
	}

	logger.Info("tagging papers",
		logging.Int("papers", len(papers)),
		logging.Int("batch_size", a.batchSize))

	histogram := make(map[string]int)
	var usage llm.Usage
	batches := 0
	for start := 0; start < len(papers); start += a.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+a.batchSize, len(papers))
		batch := papers[start:end]
		batchNumber := start/a.batchSize + 1

		if logger.Enabled(ctx, slog.LevelDebug) {
			titles := make([]string, 0, len(batch))
			for _, paper := range batch {
				titles = append(titles, paper.Title)
			}
			logger.Debug("tag batch input", logging.Int("batch", batchNumber), logging.Any("titles", titles))
		}

		result, err := a.tagger.ExtractTags(ctx, batch)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logging.WarnWithContext(logger, "tag batch failed", "tag_batch_failed",
				logging.Int("batch", batchNumber),
				logging.Error(err),
				logging.String(logging.FieldImpact, "batch titles are excluded from the histogram"),
				logging.String(logging.FieldErrorHint, "check LLM endpoint availability and quota"),
			)
			continue
		}
		batches++
		usage = usage.Add(result.Usage)
		for _, tag := range result.Tags {
			histogram[tag]++
		}
		logger.Debug("tag batch output",
			logging.Int("batch", batchNumber),
			logging.Any("tags", result.Tags),
			logging.String("parse_mode", string(result.Mode)),
			logging.Int("total_tokens", result.Usage.TotalTokens))
	}

	if len(histogram) == 0 {
		logger.Info("no tags extracted, skipping year", logging.Int("successful_batches", batches))
		return nil, nil
	}

	logger.Info("summarizing tags", logging.Int("distinct_tags", len(histogram)))
	summary, err := a.summarizer.Summarize(ctx, histogram, displayName, year, len(papers))
	if err != nil {
		return nil, fmt.Errorf("analyze %s %d: %w", venue, year, err)
	}
	usage = usage.Add(summary.Usage)

	logger.Debug("year analysis complete",
		logging.Int("themes", len(summary.Themes)),
		logging.String("parse_mode", string(summary.Mode)),
		logging.Int("total_tokens", usage.TotalTokens))

	return &knowledge.YearAnalysis{
		TitlesCount: len(papers),
		Summary:     summary.Themes,
		TokenUsage: knowledge.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
		UpdatedAt: a.now().Format(updatedAtLayout),
	}, nil
}

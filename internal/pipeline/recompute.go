package pipeline

import (
	"context"
	"errors"
	"fmt"

	"confwatch/internal/knowledge"
	"confwatch/internal/logging"
)

// ErrNoPapers is returned by Recompute when the venue-year produced no analysis.
var ErrNoPapers = errors.New("no papers found")

// Recompute replaces the stored analysis for one venue-year. The existing entry
// is kept when the new analysis fails or finds nothing.
func (c *Controller) Recompute(ctx context.Context, venue string, year int) (*knowledge.YearAnalysis, error) {
	unlock, err := c.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	logger := c.logger.With(logging.String(logging.FieldVenue, venue), logging.Int(logging.FieldYear, year))
	kb, err := knowledge.Open(c.cfg.KnowledgeBasePath(), logger)
	if err != nil {
		return nil, err
	}

	analysis, err := c.analyzer.AnalyzeYear(ctx, venue, year, c.displayName(venue), c.cfg.Pipeline.MaxPapersPerYear)
	if err != nil {
		return nil, fmt.Errorf("analyze %s %d: %w", venue, year, err)
	}
	if analysis == nil {
		return nil, fmt.Errorf("%s %d: %w", venue, year, ErrNoPapers)
	}

	replaced := kb.Forget(venue, year)
	if err := kb.Store(venue, year, *analysis); err != nil {
		return nil, err
	}
	if err := kb.Save(); err != nil {
		return nil, err
	}
	logger.Info("year analysis recomputed",
		logging.Bool("replaced", replaced),
		logging.Int("titles", analysis.TitlesCount))
	return analysis, nil
}

// displayName resolves the series title for a venue key, falling back to the key.
func (c *Controller) displayName(venue string) string {
	series, err := c.loader.LoadDir(c.cfg.Paths.DatasetDir)
	if err != nil {
		c.logger.Debug("dataset unavailable for display name", logging.Error(err))
		return venue
	}
	for _, s := range series {
		if s.VenueKey() == venue {
			return s.Title
		}
	}
	return venue
}

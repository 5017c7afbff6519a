package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"confwatch/internal/knowledge"
	"confwatch/internal/logging"
	"confwatch/internal/services/llm"
)

// SummaryResult is the outcome of stage two.
type SummaryResult struct {
	Themes []knowledge.Theme
	Usage  llm.Usage
	Mode   ParseMode
}

// Summarizer clusters a tag histogram into a handful of research themes.
type Summarizer struct {
	client      Completer
	temperature float64
	logger      *slog.Logger
}

// NewSummarizer constructs a Summarizer.
func NewSummarizer(client Completer, temperature float64, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		client:      client,
		temperature: temperature,
		logger:      logging.NewComponentLogger(logger, "summarizer"),
	}
}

// Summarize sends the histogram to the model. A response without a decodable
// theme array degrades to an empty list; only transport failures are errors.
func (s *Summarizer) Summarize(ctx context.Context, histogram map[string]int, venueName string, year, totalPapers int) (SummaryResult, error) {
	prompt, err := ThemePrompt(histogram, venueName, year, totalPapers)
	if err != nil {
		return SummaryResult{}, err
	}
	completion, err := s.client.Complete(ctx, prompt, s.temperature)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("summarize themes: %w", err)
	}
	themes, mode := ParseThemes(completion.Content)
	if mode == ParseDegraded {
		logging.WarnWithContext(s.logger, "theme response unparseable", "theme_parse_degraded",
			logging.Int(logging.FieldYear, year),
			logging.String(logging.FieldImpact, "year is stored without themes"),
			logging.String(logging.FieldErrorHint, "use kb recompute to retry the analysis"),
		)
	}
	return SummaryResult{Themes: themes, Usage: completion.Usage, Mode: mode}, nil
}

// ParseThemes decodes the bracketed theme array in content.
func ParseThemes(content string) ([]knowledge.Theme, ParseMode) {
	var themes []knowledge.Theme
	if err := llm.DecodeJSONArray(content, &themes); err != nil {
		return []knowledge.Theme{}, ParseDegraded
	}
	if themes == nil {
		themes = []knowledge.Theme{}
	}
	return themes, ParseStrict
}

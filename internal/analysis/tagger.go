package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"confwatch/internal/dblp"
	"confwatch/internal/logging"
	"confwatch/internal/services/llm"
)

// ParseMode records which path produced a parsed model response.
type ParseMode string

const (
	// ParseStrict means the bracketed JSON array decoded cleanly.
	ParseStrict ParseMode = "strict"
	// ParseSalvaged means tags were recovered from quoted substrings.
	ParseSalvaged ParseMode = "salvaged"
	// ParseDegraded means nothing usable was recovered.
	ParseDegraded ParseMode = "degraded"
)

// Completer is the text-generation collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (llm.Completion, error)
}

// TagResult is the outcome of one stage-one batch.
type TagResult struct {
	Tags  []string
	Usage llm.Usage
	Mode  ParseMode
}

// Tagger extracts short topic tags from batches of paper titles.
type Tagger struct {
	client      Completer
	temperature float64
	logger      *slog.Logger
}

// NewTagger constructs a Tagger.
func NewTagger(client Completer, temperature float64, logger *slog.Logger) *Tagger {
	return &Tagger{
		client:      client,
		temperature: temperature,
		logger:      logging.NewComponentLogger(logger, "tagger"),
	}
}

// ExtractTags asks the model for tags describing papers. Retries live in the
// client; an error here means every attempt failed.
func (t *Tagger) ExtractTags(ctx context.Context, papers []dblp.Paper) (TagResult, error) {
	completion, err := t.client.Complete(ctx, TagPrompt(papers), t.temperature)
	if err != nil {
		return TagResult{}, fmt.Errorf("extract tags: %w", err)
	}
	tags, mode := ParseTags(completion.Content)
	if mode != ParseStrict {
		t.logger.Debug("tag response not strict json",
			logging.String("parse_mode", string(mode)),
			logging.Int("tags", len(tags)))
	}
	return TagResult{Tags: tags, Usage: completion.Usage, Mode: mode}, nil
}

var quotedPattern = regexp.MustCompile(`"([^"]+)"`)

// ParseTags decodes the bracketed JSON array in content. Nested arrays are
// flattened. When the array cannot be decoded, every double-quoted substring is
// taken as a tag instead.
func ParseTags(content string) ([]string, ParseMode) {
	var raw []any
	if err := llm.DecodeJSONArray(content, &raw); err == nil {
		tags := make([]string, 0, len(raw))
		flattenTags(&tags, raw)
		return tags, ParseStrict
	}

	matches := quotedPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil, ParseDegraded
	}
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		if tag := strings.TrimSpace(match[1]); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, ParseSalvaged
}

func flattenTags(dst *[]string, values []any) {
	for _, value := range values {
		switch v := value.(type) {
		case nil:
		case string:
			if tag := strings.TrimSpace(v); tag != "" {
				*dst = append(*dst, tag)
			}
		case []any:
			flattenTags(dst, v)
		case map[string]any:
			encoded, err := json.Marshal(v)
			if err == nil {
				*dst = append(*dst, string(encoded))
			}
		default:
			if tag := strings.TrimSpace(fmt.Sprint(v)); tag != "" {
				*dst = append(*dst, tag)
			}
		}
	}
}

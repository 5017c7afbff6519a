package knowledge

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TokenUsage holds cumulative token counters for an analysis.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add returns the element-wise sum of two usage records.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// Ratio is an approximate share such as "15%". Models occasionally emit a bare
// number, so it also decodes from JSON numbers.
type Ratio string

// UnmarshalJSON implements json.Unmarshaler for Ratio.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ratio(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = Ratio(n.String() + "%")
	return nil
}

// Percent parses the numeric part of the ratio. Missing or malformed ratios are 0.
func (r Ratio) Percent() float64 {
	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(string(r)), "%"))
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// Theme is a named cluster of paper tags with its approximate share.
type Theme struct {
	Name        string `json:"name"`
	Ratio       Ratio  `json:"ratio"`
	Description string `json:"description"`
}

// YearAnalysis is the stored trend summary for one venue and year.
type YearAnalysis struct {
	TitlesCount int        `json:"titles_count"`
	Summary     []Theme    `json:"summary"`
	TokenUsage  TokenUsage `json:"token_usage"`
	UpdatedAt   string     `json:"updated_at"`
}

// YearEntry pairs a year key with its analysis.
type YearEntry struct {
	Year     string
	Analysis YearAnalysis
}

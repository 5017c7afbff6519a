package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONArray reports that a response contained no bracketed JSON array.
var ErrNoJSONArray = errors.New("no json array in response")

// ExtractJSONArray returns the span from the first '[' to the last ']' in
// content. Models often wrap the array in prose or code fences.
func ExtractJSONArray(content string) (string, bool) {
	start := strings.Index(content, "[")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(content, "]")
	if end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// DecodeJSONArray locates the bracketed array in content and decodes it into target.
func DecodeJSONArray(content string, target any) error {
	span, ok := ExtractJSONArray(content)
	if !ok {
		return fmt.Errorf("%w (payload snippet: %s)", ErrNoJSONArray, summarizePayloadSnippet(content))
	}
	if err := json.Unmarshal([]byte(span), target); err != nil {
		return fmt.Errorf("%w (payload snippet: %s)", err, summarizePayloadSnippet(span))
	}
	return nil
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

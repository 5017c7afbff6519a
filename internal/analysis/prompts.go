package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"confwatch/internal/dblp"
)

const tagPromptTemplate = `# Context: Senior CS Taxonomist analyzing conference papers.
# Objective: Extract 1-5 academic tags per paper.
# Constraints:
- Focus: 'Problem/Task' and 'Context/Domain' (e.g., "Encrypted Traffic Classification", "BGP Security").
- Exclude: Generic methods like GNN, CNN, RL, Transformer.
- Style: Professional English.
# Example:
Title: "Graph-based Anomaly Detection in SDN" -> Tags: ["Software-Defined Networking", "Network Anomaly Detection"]

# Input:
%s
# Response: Strict JSON array of strings.`

const themePromptTemplate = `# Context: TPC Chair of %s (%d).
# Objective: Cluster tags into 5-10 high-level "Research Themes".
# Guidelines:
1. Taxonomy: Use broad categories (e.g., "Network Infrastructure & Protocol Security" instead of "NIDS").
2. Format: Return a JSON list of objects: {"name": "Chinese(English)", "ratio": "X%%", "description": "..."}.
3. Mandatory Single Field: The "description" MUST include both the intro and sub-tags in this format:
   "本主题研究[简短介绍]。涵盖：[细分方向1]、[细分方向2]等。"
# Example:
{
  "name": "可信计算与系统安全 (Trustworthy Computing & System Security)",
  "ratio": "15%%",
  "description": "探讨构建软硬件一体化的安全运行环境。涵盖：机密计算、侧信道分析、固件安全等。"
}

# Data: %s
# Total Sample Size: %d
# Response: JSON only.`

// TagPrompt renders the stage-one prompt for a batch of papers.
func TagPrompt(papers []dblp.Paper) string {
	var b strings.Builder
	for i, paper := range papers {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, paper.Title)
	}
	return fmt.Sprintf(tagPromptTemplate, b.String())
}

// ThemePrompt renders the stage-two prompt for a tag histogram.
func ThemePrompt(histogram map[string]int, venueName string, year, totalPapers int) (string, error) {
	stats, err := json.MarshalIndent(histogram, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode tag histogram: %w", err)
	}
	return fmt.Sprintf(themePromptTemplate, venueName, year, stats, totalPapers), nil
}

package notifications

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"confwatch/internal/dataset"
	"confwatch/internal/deadline"
	"confwatch/internal/knowledge"
)

const (
	// HistoryDepth is the number of analyzed years shown in a notification.
	HistoryDepth = 3
	// ExpiredMarker is appended to the main deadline when every milestone has passed.
	ExpiredMarker = " (已过)"

	unknownThemeName = "Unknown"
	missingRatio     = "0%"
)

var rankColors = map[string]string{
	"A": "#FF0000",
	"B": "#FFA500",
	"C": "#008000",
	"N": "#808080",
}

const defaultRankColor = "#000000"

// Info is the display record for one conference edition.
type Info struct {
	Venue            string
	Title            string
	Description      string
	Subject          string
	Rank             string
	Year             int
	Date             string
	Place            string
	Link             string
	AbstractDeadline string
	MainDeadline     string
	Status           deadline.Status
}

// BuildInfo assembles the display record for edition, converting the active
// timeline's deadlines to the reference timezone.
func BuildInfo(series dataset.Series, edition dataset.Edition, now time.Time) Info {
	entry, status := deadline.SelectActive(edition.Timeline, edition.Timezone, now)
	main := deadline.ToReferenceTime(entry.Deadline, edition.Timezone)
	if status == deadline.StatusExpired {
		main += ExpiredMarker
	}
	return Info{
		Venue:            series.VenueKey(),
		Title:            series.Title,
		Description:      series.Description,
		Subject:          dataset.SubjectLabel(series.Subject),
		Rank:             series.Rank.CCF,
		Year:             edition.Year,
		Date:             edition.Date,
		Place:            edition.Place,
		Link:             edition.Link,
		AbstractDeadline: deadline.ToReferenceTime(entry.AbstractDeadline, edition.Timezone),
		MainDeadline:     main,
		Status:           status,
	}
}

// Message is a rendered notification in both formats.
type Message struct {
	Title     string
	Markdown  string
	PlainText string
}

// Compose renders the notification for info using the given analyzed years,
// which are expected newest first.
func Compose(info Info, history []knowledge.YearEntry) Message {
	if len(history) > HistoryDepth {
		history = history[:HistoryDepth]
	}
	return Message{
		Title:     MessageTitle(info),
		Markdown:  RenderMarkdown(info, history),
		PlainText: RenderPlainText(info, history),
	}
}

// MessageTitle returns the notification subject line.
func MessageTitle(info Info) string {
	return info.Title + " 更新提醒"
}

// SortThemes returns themes ordered by descending ratio. Missing or malformed
// ratios sort as 0 and ties keep their original order.
func SortThemes(themes []knowledge.Theme) []knowledge.Theme {
	sorted := make([]knowledge.Theme, len(themes))
	copy(sorted, themes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ratio.Percent() > sorted[j].Ratio.Percent()
	})
	return sorted
}

func totalTokens(history []knowledge.YearEntry) int {
	total := 0
	for _, entry := range history {
		total += entry.Analysis.TokenUsage.TotalTokens
	}
	return total
}

func themeName(theme knowledge.Theme) string {
	if name := strings.TrimSpace(theme.Name); name != "" {
		return name
	}
	return unknownThemeName
}

func themeRatio(theme knowledge.Theme) string {
	if ratio := strings.TrimSpace(string(theme.Ratio)); ratio != "" {
		return ratio
	}
	return missingRatio
}

func rankColor(rank string) string {
	if color, ok := rankColors[rank]; ok {
		return color
	}
	return defaultRankColor
}

// RenderMarkdown renders the rich summary used by the push channel. Years
// without themes are left out of the trend section.
func RenderMarkdown(info Info, history []knowledge.YearEntry) string {
	var analysis strings.Builder
	if len(history) == 0 {
		analysis.WriteString("⚠️ **暂无历史论文趋势分析**")
	} else {
		analysis.WriteString("🧠 **近 3 年学术趋势分析**\n")
		for _, entry := range history {
			if len(entry.Analysis.Summary) == 0 {
				continue
			}
			fmt.Fprintf(&analysis, "\n#### 📅 %s 年 (样本量: %d 篇)\n", entry.Year, entry.Analysis.TitlesCount)
			for _, theme := range SortThemes(entry.Analysis.Summary) {
				fmt.Fprintf(&analysis, "- **%s** `(%s)`\n  - %s\n", themeName(theme), themeRatio(theme), theme.Description)
			}
		}
	}

	footer := ""
	if tokens := totalTokens(history); tokens > 0 {
		footer = fmt.Sprintf("\n---\n###### 💎 LLM Token Cost: %d (Analysis Session)", tokens)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 📢 %s %d 更新提醒\n", info.Title, info.Year)
	fmt.Fprintf(&b, "> %s\n\n", info.Description)
	fmt.Fprintf(&b, "- **领域**: %s | **等级**: <font color=\"%s\">CCF-%s</font>\n", info.Subject, rankColor(info.Rank), info.Rank)
	fmt.Fprintf(&b, "- **时间**: %s | **地点**: %s\n", info.Date, info.Place)
	fmt.Fprintf(&b, "- **官网**: [点击跳转](%s)\n\n", info.Link)
	b.WriteString("---\n### ⏰ 关键截稿 (北京时间)\n")
	fmt.Fprintf(&b, "- **摘要截止**: %s\n", info.AbstractDeadline)
	fmt.Fprintf(&b, "- **全文截止**: %s\n\n", info.MainDeadline)
	b.WriteString("---\n")
	b.WriteString(analysis.String())
	b.WriteString("\n")
	b.WriteString(footer)
	return strings.TrimSpace(b.String()) + "\n"
}

// RenderPlainText renders the markup-free summary used by email.
func RenderPlainText(info Info, history []knowledge.YearEntry) string {
	var analysis strings.Builder
	if len(history) == 0 {
		analysis.WriteString("暂无历史论文趋势分析数据。\n")
	} else {
		for _, entry := range history {
			fmt.Fprintf(&analysis, "\n【%s 年趋势 (样本量: %d 篇)】\n", entry.Year, entry.Analysis.TitlesCount)
			for _, theme := range SortThemes(entry.Analysis.Summary) {
				fmt.Fprintf(&analysis, "- %s (比例: %s)\n", themeName(theme), themeRatio(theme))
				fmt.Fprintf(&analysis, "  详情: %s\n", theme.Description)
			}
		}
	}

	const rule = "--------------------------------------------------"
	var b strings.Builder
	fmt.Fprintf(&b, "会议更新提醒：%s %d\n\n", info.Title, info.Year)
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "会议描述：%s\n\n", info.Description)
	b.WriteString("[基本信息]\n")
	fmt.Fprintf(&b, "- 领域：%s\n", info.Subject)
	fmt.Fprintf(&b, "- 等级：CCF-%s\n", info.Rank)
	fmt.Fprintf(&b, "- 时间：%s\n", info.Date)
	fmt.Fprintf(&b, "- 地点：%s\n", info.Place)
	fmt.Fprintf(&b, "- 官网：%s\n\n", info.Link)
	b.WriteString("[重要截稿时间 (北京时间)]\n")
	fmt.Fprintf(&b, "- 摘要截止：%s\n", info.AbstractDeadline)
	fmt.Fprintf(&b, "- 全文截止：%s\n\n", info.MainDeadline)
	b.WriteString("[近3年学术趋势深度分析]\n")
	b.WriteString(analysis.String())
	if tokens := totalTokens(history); tokens > 0 {
		fmt.Fprintf(&b, "\nLLM Token Cost: %d (Analysis Session)\n", tokens)
	}
	b.WriteString(rule + "\n")
	b.WriteString("提示：本邮件由 AI 自动生成，历史分析基于 DBLP 数据。\n")
	return b.String()
}

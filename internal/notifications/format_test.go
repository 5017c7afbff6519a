package notifications_test

import (
	"strings"
	"testing"
	"time"

	"confwatch/internal/dataset"
	"confwatch/internal/deadline"
	"confwatch/internal/knowledge"
	"confwatch/internal/notifications"
)

func sampleInfo() notifications.Info {
	return notifications.Info{
		Venue:            "infocom",
		Title:            "INFOCOM",
		Description:      "IEEE International Conference on Computer Communications",
		Subject:          dataset.SubjectLabel("NW"),
		Rank:             "A",
		Year:             2025,
		Date:             "May 19-22, 2025",
		Place:            "London, UK",
		Link:             "https://infocom2025.ieee-infocom.org",
		AbstractDeadline: "2024-07-25 19:59:00 (CST)",
		MainDeadline:     "2024-08-01 19:59:00 (CST)",
	}
}

func sampleHistory() []knowledge.YearEntry {
	return []knowledge.YearEntry{
		{Year: "2024", Analysis: knowledge.YearAnalysis{
			TitlesCount: 120,
			Summary: []knowledge.Theme{
				{Name: "边缘计算 (Edge Computing)", Ratio: "15%", Description: "edge"},
				{Name: "网络安全 (Network Security)", Ratio: "30%", Description: "security"},
				{Name: "", Ratio: "", Description: "unnamed"},
			},
			TokenUsage: knowledge.TokenUsage{TotalTokens: 1000},
		}},
		{Year: "2023", Analysis: knowledge.YearAnalysis{
			TitlesCount: 80,
			Summary:     nil,
			TokenUsage:  knowledge.TokenUsage{TotalTokens: 500},
		}},
	}
}

func TestSortThemesDescendingWithMissingAsZero(t *testing.T) {
	themes := []knowledge.Theme{
		{Name: "low", Ratio: "5%"},
		{Name: "missing"},
		{Name: "high", Ratio: "40%"},
		{Name: "garbage", Ratio: "about ten"},
		{Name: "mid", Ratio: "12.5%"},
	}
	sorted := notifications.SortThemes(themes)
	var names []string
	for _, theme := range sorted {
		names = append(names, theme.Name)
	}
	want := "high,mid,low,missing,garbage"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("order = %s, want %s", got, want)
	}
	if themes[0].Name != "low" {
		t.Fatal("SortThemes must not reorder its input")
	}
}

func TestRenderMarkdown(t *testing.T) {
	body := notifications.RenderMarkdown(sampleInfo(), sampleHistory())

	for _, want := range []string{
		"## 📢 INFOCOM 2025 更新提醒",
		`<font color="#FF0000">CCF-A</font>`,
		"计算机网络 (NW)",
		"[点击跳转](https://infocom2025.ieee-infocom.org)",
		"- **全文截止**: 2024-08-01 19:59:00 (CST)",
		"🧠 **近 3 年学术趋势分析**",
		"#### 📅 2024 年 (样本量: 120 篇)",
		"- **Unknown** `(0%)`",
		"###### 💎 LLM Token Cost: 1500 (Analysis Session)",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("markdown missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "2023 年") {
		t.Fatalf("year without themes should be omitted from markdown:\n%s", body)
	}
	if strings.Index(body, "Network Security") > strings.Index(body, "Edge Computing") {
		t.Fatalf("themes not sorted by ratio:\n%s", body)
	}
}

func TestRenderPlainText(t *testing.T) {
	body := notifications.RenderPlainText(sampleInfo(), sampleHistory())
	for _, want := range []string{
		"会议更新提醒：INFOCOM 2025",
		"- 等级：CCF-A",
		"【2024 年趋势 (样本量: 120 篇)】",
		"【2023 年趋势 (样本量: 80 篇)】",
		"- 网络安全 (Network Security) (比例: 30%)",
		"LLM Token Cost: 1500 (Analysis Session)",
		"提示：本邮件由 AI 自动生成",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("plain text missing %q:\n%s", want, body)
		}
	}
	if strings.ContainsAny(body, "*#`") {
		t.Fatalf("plain text contains markup:\n%s", body)
	}
}

func TestRenderWithoutHistory(t *testing.T) {
	info := sampleInfo()
	info.Rank = "Z"
	md := notifications.RenderMarkdown(info, nil)
	if !strings.Contains(md, "⚠️ **暂无历史论文趋势分析**") {
		t.Fatalf("missing markdown placeholder:\n%s", md)
	}
	if !strings.Contains(md, `<font color="#000000">CCF-Z</font>`) {
		t.Fatalf("unknown rank should render black:\n%s", md)
	}
	if strings.Contains(md, "Token Cost") {
		t.Fatalf("footer should be omitted without usage:\n%s", md)
	}
	text := notifications.RenderPlainText(info, nil)
	if !strings.Contains(text, "暂无历史论文趋势分析数据。") {
		t.Fatalf("missing plain-text placeholder:\n%s", text)
	}
}

func TestComposeLimitsHistoryDepth(t *testing.T) {
	history := []knowledge.YearEntry{
		{Year: "2024", Analysis: knowledge.YearAnalysis{TitlesCount: 1}},
		{Year: "2023", Analysis: knowledge.YearAnalysis{TitlesCount: 1}},
		{Year: "2022", Analysis: knowledge.YearAnalysis{TitlesCount: 1}},
		{Year: "2021", Analysis: knowledge.YearAnalysis{TitlesCount: 1}},
	}
	msg := notifications.Compose(sampleInfo(), history)
	if msg.Title != "INFOCOM 更新提醒" {
		t.Fatalf("title = %q", msg.Title)
	}
	if strings.Contains(msg.PlainText, "2021 年") {
		t.Fatalf("only %d years should render:\n%s", notifications.HistoryDepth, msg.PlainText)
	}
}

func TestBuildInfoMarksExpiredDeadline(t *testing.T) {
	series := dataset.Series{Title: "SIGCOMM", Subject: "NW", Rank: dataset.Rank{CCF: "A"}, DBLP: "sigcomm"}
	edition := dataset.Edition{
		ID:       "sigcomm2024",
		Year:     2024,
		Timezone: "UTC",
		Timeline: []dataset.TimelineEntry{{Deadline: "2024-01-31 23:59:59", AbstractDeadline: "TBD"}},
	}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	info := notifications.BuildInfo(series, edition, now)
	if info.Status != deadline.StatusExpired {
		t.Fatalf("status = %v", info.Status)
	}
	if info.MainDeadline != "2024-02-01 07:59:59 (CST)"+notifications.ExpiredMarker {
		t.Fatalf("main deadline = %q", info.MainDeadline)
	}
	if info.AbstractDeadline != "TBD" {
		t.Fatalf("abstract deadline = %q", info.AbstractDeadline)
	}
	if info.Venue != "sigcomm" || info.Subject != "计算机网络 (NW)" {
		t.Fatalf("unexpected info %+v", info)
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"confwatch/internal/pipeline"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// renderRunSummary formats the outcome of a tracking pass.
func renderRunSummary(summary *pipeline.Summary, colorize bool) string {
	lines := renderSectionHeader(fmt.Sprintf("Run %s (%s)", summary.RunID, summary.Mode), colorize)

	count := func(n int) string { return humanize.Comma(int64(n)) }
	failures := func(label string, n int) string {
		kind := statusOK
		if n > 0 {
			kind = statusWarn
		}
		return renderStatusLine(label, kind, count(n), colorize)
	}

	lines = append(lines,
		renderStatusLine("Initial run", statusInfo, yesNo(summary.InitialRun), colorize),
		renderStatusLine("Series tracked", statusInfo, count(summary.SeriesSeen), colorize),
		renderStatusLine("Editions seen", statusInfo, count(summary.EditionsSeen), colorize),
		renderStatusLine("Editions updated", statusInfo, count(summary.EditionsUpdated), colorize),
		renderStatusLine("Latest processed", statusInfo, count(summary.LatestProcessed), colorize),
		renderStatusLine("Analyses stored", statusInfo, count(summary.AnalysesStored), colorize),
		failures("Analysis failures", summary.AnalysisFailures),
		renderStatusLine("Notifications", statusInfo, count(summary.Notifications), colorize),
		failures("Delivery failures", summary.DeliveriesFailed),
		renderStatusLine("Files written", statusInfo, yesNo(summary.Saved), colorize),
		renderStatusLine("Duration", statusInfo, summary.Duration.Round(time.Millisecond).String(), colorize),
	)
	return strings.Join(lines, "\n") + "\n"
}

func formatTokens(total int) string {
	if total <= 0 {
		return "-"
	}
	return humanize.Comma(int64(total))
}

func formatYear(year int) string {
	if year <= 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"letterbox/internal/batch"
)

const maxMessageWidth = 72

// renderReport prints the counts of a pass followed by every item that did
// not succeed.
func renderReport(report batch.Report, colorize bool) string {
	counts := report.Counts()
	var b strings.Builder

	heading := fmt.Sprintf("%s pass %s", titleLabel(string(report.Pass)), shortID(report.RunID))
	b.WriteString(sectionHeader(heading, colorize))
	b.WriteString("\n")

	summary := tableView{
		headers: []string{"Status", "Items"},
		rows: [][]string{
			{titleLabel(string(batch.StatusSucceeded)), strconv.Itoa(counts.Succeeded)},
			{titleLabel(string(batch.StatusFailed)), strconv.Itoa(counts.Failed)},
			{titleLabel(string(batch.StatusSkipped)), strconv.Itoa(counts.Skipped)},
		},
		numeric: map[int]bool{1: true},
		footer:  []string{"Total", strconv.Itoa(counts.Total)},
	}
	b.WriteString(summary.render())
	b.WriteString("\n")

	kind := statusOK
	switch {
	case report.Canceled:
		kind = statusWarn
	case counts.Failed > 0:
		kind = statusError
	}
	outcome := fmt.Sprintf("%d workers, %s", report.Workers, formatElapsed(report.Duration()))
	if report.Canceled {
		outcome += ", interrupted"
	}
	b.WriteString(statusLine("Result", kind, outcome, colorize))

	if counts.Failed > 0 {
		rows := make([][]string, 0, counts.Failed)
		for _, item := range report.Items {
			if item.Status != batch.StatusFailed {
				continue
			}
			rows = append(rows, []string{item.ClipID, item.Crop, truncate(item.Message, maxMessageWidth)})
		}
		failures := tableView{title: "Failures", headers: []string{"Clip", "Crop", "Error"}, rows: rows}
		b.WriteString("\n")
		b.WriteString(failures.render())
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func truncate(value string, width int) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), "\n", " ")
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/anggasct/junction"
)

type summaryStyles struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	box    lipgloss.Style
}

func newSummaryStyles(styled bool) summaryStyles {
	cell := lipgloss.NewStyle().Width(12)
	if !styled {
		return summaryStyles{
			title:  lipgloss.NewStyle(),
			header: cell,
			cell:   cell,
			box:    lipgloss.NewStyle(),
		}
	}
	return summaryStyles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header: cell.Bold(true).Foreground(lipgloss.Color("241")),
		cell:   cell,
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
	}
}

func (s summaryStyles) row(style lipgloss.Style, cells ...string) string {
	rendered := make([]string, len(cells))
	for i, c := range cells {
		rendered[i] = style.Render(c)
	}
	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " ")
}

// renderSummary formats per-lane and per-quadrant statistics of a run
func renderSummary(summary junction.RunSummary, styled bool) string {
	s := newSummaryStyles(styled)

	lines := []string{
		s.title.Render(fmt.Sprintf("run %s: %d cars in %s",
			summary.RunID, summary.TotalCrossed(), summary.Duration().Round(time.Microsecond))),
		"",
		s.row(s.header, "LANE", "CAPACITY", "CROSSED", "PEAK"),
	}
	for _, l := range summary.Lanes {
		lines = append(lines, s.row(s.cell,
			l.Direction.String(),
			fmt.Sprint(l.Capacity),
			fmt.Sprintf("%d/%d", l.Crossed, l.Expected),
			fmt.Sprint(l.PeakOccupancy),
		))
	}

	lines = append(lines, "", s.row(s.header, "QUADRANT", "CROSSINGS", "MAX HELD", "WAIT"))
	for _, q := range summary.Quadrants {
		lines = append(lines, s.row(s.cell,
			q.Quadrant.String(),
			fmt.Sprint(q.Crossings),
			fmt.Sprint(q.MaxOccupants),
			q.TotalWait.Round(time.Microsecond).String(),
		))
	}

	return s.box.Render(strings.Join(lines, "\n")) + "\n"
}

package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/progress"
)

const barWidth = 20

// DayRings lists the ringed habits of one day with a progress bar each.
func DayRings(habits []models.Habit, idx progress.Index, date string) string {
	visible := Visible(habits)
	if len(visible) == 0 {
		return labelStyle.Render("No habits yet.")
	}
	nameWidth := 0
	for _, h := range visible {
		nameWidth = max(nameWidth, lipgloss.Width(h.Name))
	}

	lines := make([]string, 0, len(visible))
	for _, h := range visible {
		p := idx.Progress(h, date)
		icon := h.Icon
		if icon == "" {
			icon = Glyph(p)
		}
		name := h.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(h.Name))
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			icon, name, colorStyle(h.Color).Render(Bar(p, barWidth)), Percent(p)))
	}
	return strings.Join(lines, "\n")
}

// dayGlyphs stacks one coloured glyph per ringed habit.
func dayGlyphs(habits []models.Habit, idx progress.Index, date string) string {
	var b strings.Builder
	for _, h := range Visible(habits) {
		b.WriteString(colorStyle(h.Color).Render(Glyph(idx.Progress(h, date))))
	}
	return b.String()
}

// WeekStrip draws the seven days around selected as columns of weekday,
// day number and one glyph per ringed habit.
func WeekStrip(selected, today time.Time, habits []models.Habit, idx progress.Index) string {
	days := calendar.WeekStrip(selected)
	width := max(4, len(Visible(habits))+1)

	cols := make([]string, len(days))
	for i, d := range days {
		key := calendar.DateKey(d)
		day := fmt.Sprintf("%d", d.Day())
		if calendar.SameDay(d, today) {
			day = todayStyle.Render(day)
		}
		glyphs := dayGlyphs(habits, idx, key)
		if glyphs == "" {
			glyphs = emptyStyle.Render("·")
		}
		col := lipgloss.JoinVertical(lipgloss.Center,
			labelStyle.Render(d.Weekday().String()[:2]),
			day,
			glyphs,
		)
		style := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
		if calendar.SameDay(d, selected) {
			style = style.Inherit(selectedStyle)
		}
		cols[i] = style.Render(col)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// MonthCalendar draws the month of ref with the combined ring progress of
// each day. The selected day is highlighted.
func MonthCalendar(ref, selected time.Time, start calendar.WeekStart, habits []models.Habit, idx progress.Index) string {
	grid := calendar.Month(ref, start)
	visible := Visible(habits)

	cell := func(c calendar.Cell) string {
		if c.Blank {
			return "    "
		}
		mark := emptyStyle.Render("·")
		if len(visible) > 0 {
			mark = Glyph(combined(visible, idx, calendar.DateKey(c.Date)))
		}
		text := fmt.Sprintf("%2d%s ", c.Date.Day(), mark)
		if calendar.SameDay(c.Date, selected) {
			return selectedStyle.Render(text)
		}
		return text
	}
	return monthFrame(grid, cell)
}

// combined averages the ringed habits with each capped at 100.
func combined(habits []models.Habit, idx progress.Index, date string) float64 {
	if len(habits) == 0 {
		return 0
	}
	total := 0.0
	for _, h := range habits {
		total += min(idx.Progress(h, date), 100)
	}
	return total / float64(len(habits))
}

func monthFrame(grid calendar.Grid, cell func(calendar.Cell) string) string {
	first := time.Date(grid.Year, grid.Month, 1, 0, 0, 0, 0, time.Local)

	var b strings.Builder
	b.WriteString(titleStyle.Render(first.Format("January 2006")))
	b.WriteString("\n")
	labels := grid.Start.Labels()
	for i, l := range labels {
		labels[i] = fmt.Sprintf("%-4s", l)
	}
	b.WriteString(labelStyle.Render(strings.TrimRight(strings.Join(labels, ""), " ")))
	for _, week := range grid.Weeks() {
		b.WriteString("\n")
		for _, c := range week {
			b.WriteString(cell(c))
		}
	}
	return b.String()
}

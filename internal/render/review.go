package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/datastore"
)

var heatStyles = []lipgloss.Style{
	emptyStyle,
	lipgloss.NewStyle().Foreground(lipgloss.Color("#fdba74")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#fb923c")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#ea580c")),
}

// Heat maps a record count to a shade glyph.
func Heat(count int) string {
	switch {
	case count <= 0:
		return heatStyles[0].Render("·")
	case count == 1:
		return heatStyles[1].Render("░")
	case count <= 3:
		return heatStyles[2].Render("▒")
	default:
		return heatStyles[3].Render("▓")
	}
}

// ReviewCalendar draws the month of ref shaded by records per day.
func ReviewCalendar(ref time.Time, start calendar.WeekStart, counts map[string]int) string {
	return monthFrame(calendar.Month(ref, start), func(c calendar.Cell) string {
		if c.Blank {
			return "    "
		}
		return fmt.Sprintf("%2d%s ", c.Date.Day(), Heat(counts[calendar.DateKey(c.Date)]))
	})
}

// TagCloud lists tags with their counts, largest first.
func TagCloud(tags []datastore.TagCount) string {
	if len(tags) == 0 {
		return labelStyle.Render("No tags yet.")
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = fmt.Sprintf("#%s %s", t.Tag, labelStyle.Render(fmt.Sprintf("(%d)", t.Count)))
	}
	return strings.Join(parts, "  ")
}

// CompletionRates draws one bar per habit completion rate.
func CompletionRates(rates []datastore.HabitRate) string {
	if len(rates) == 0 {
		return labelStyle.Render("No habits yet.")
	}
	lines := make([]string, len(rates))
	for i, r := range rates {
		lines[i] = fmt.Sprintf("%-16s %s %d%%", r.Name, Bar(float64(r.Rate), barWidth), r.Rate)
	}
	return strings.Join(lines, "\n")
}

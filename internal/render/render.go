// Package render draws habit rings, calendars and reports for the terminal.
// Rings become glyphs and bars; colours come from the ring palette.
package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/ring"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Bold(true)

	todayStyle = lipgloss.NewStyle().
			Underline(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// colorStyle paints with the solid colour of a palette key.
func colorStyle(key string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ring.Palette(key).Solid))
}

// Glyph draws progress as a quarter-step ring.
func Glyph(progress float64) string {
	if progress >= 100 {
		return "●"
	}
	f := ring.Compute(1, 0, progress).Fraction()
	switch {
	case f <= 0:
		return "○"
	case f < 0.5:
		return "◔"
	case f < 0.75:
		return "◑"
	default:
		return "◕"
	}
}

// Bar draws progress as a bar of width cells. Progress above 100 fills the
// bar; the percentage label carries the rest.
func Bar(progress float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := width
	if progress < 100 {
		filled = int(math.Round(ring.Compute(1, 0, progress).Fraction() * float64(width)))
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Visible returns the habits that get a ring on a day.
func Visible(habits []models.Habit) []models.Habit {
	return habits[:min(len(habits), ring.MaxRings)]
}

// Percent formats progress as a whole percentage.
func Percent(progress float64) string {
	return strconv.FormatFloat(math.Round(progress), 'f', 0, 64) + "%"
}

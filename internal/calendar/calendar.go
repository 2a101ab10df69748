// Package calendar builds month grids and week strips for the date filter
// and the habit views.
package calendar

import (
	"time"

	"github.com/losebird/lifelog-ai/internal/constants"
)

// WeekStart selects the first column of a grid.
type WeekStart int

const (
	SundayFirst WeekStart = iota
	MondayFirst
)

// Cell is one slot in a month grid. Blank cells pad the first week.
type Cell struct {
	Blank bool
	Date  time.Time
}

// Grid is the day grid of one month.
type Grid struct {
	Year  int
	Month time.Month
	Start WeekStart
	Cells []Cell
}

// Leading returns the number of blank cells before day 1.
func (g Grid) Leading() int {
	n := 0
	for _, c := range g.Cells {
		if !c.Blank {
			break
		}
		n++
	}
	return n
}

// Weeks splits the cells into rows of seven. The last row may be short.
func (g Grid) Weeks() [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := min(i+7, len(g.Cells))
		rows = append(rows, g.Cells[i:end])
	}
	return rows
}

// Offset is the column of weekday d under the convention.
func (s WeekStart) Offset(d time.Weekday) int {
	if s == MondayFirst {
		return (int(d) + 6) % 7
	}
	return int(d)
}

// Labels returns short weekday headers in column order.
func (s WeekStart) Labels() []string {
	labels := []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
	if s == MondayFirst {
		return append(labels[1:], labels[0])
	}
	return labels
}

// Month builds the grid for the month containing ref.
func Month(ref time.Time, start WeekStart) Grid {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	n := DaysIn(first)
	lead := start.Offset(first.Weekday())

	cells := make([]Cell, 0, lead+n)
	for range lead {
		cells = append(cells, Cell{Blank: true})
	}
	for d := range n {
		cells = append(cells, Cell{Date: first.AddDate(0, 0, d)})
	}
	return Grid{Year: first.Year(), Month: first.Month(), Start: start, Cells: cells}
}

// DaysIn returns the number of days in the month containing t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// ShiftMonth pages by offset months. The result is anchored to day 1 so
// that paging from the 31st never skips a short month.
func ShiftMonth(ref time.Time, offset int) time.Time {
	return time.Date(ref.Year(), ref.Month()+time.Month(offset), 1, 0, 0, 0, 0, ref.Location())
}

// WeekStrip returns the seven days centred on selected.
func WeekStrip(selected time.Time) []time.Time {
	day := StartOfDay(selected)
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = day.AddDate(0, 0, i-3)
	}
	return out
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateKey formats the calendar date of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	a = a.Local()
	b = b.Local()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// ParseDate reads a YYYY-MM-DD key as local midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, s, time.Local)
}

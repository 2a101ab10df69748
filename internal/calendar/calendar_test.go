package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestMonthSundayFirst(t *testing.T) {
	// 2024-05-01 is a Wednesday
	g := Month(date(2024, 5, 17), SundayFirst)

	if g.Leading() != 3 {
		t.Errorf("leading blanks = %d, want 3", g.Leading())
	}
	if len(g.Cells) != 3+31 {
		t.Fatalf("cells = %d, want %d", len(g.Cells), 3+31)
	}
	for i := 0; i < 3; i++ {
		if !g.Cells[i].Blank {
			t.Errorf("cell %d should be blank", i)
		}
	}
	for i, c := range g.Cells[3:] {
		if c.Blank || c.Date.Day() != i+1 || c.Date.Month() != time.May {
			t.Errorf("cell %d = %+v, want May %d", i+3, c, i+1)
		}
	}
}

func TestMonthMondayFirst(t *testing.T) {
	tests := []struct {
		ref     time.Time
		leading int
		days    int
	}{
		{date(2024, 5, 1), 2, 31},  // Wednesday
		{date(2024, 9, 1), 6, 30},  // Sunday
		{date(2024, 7, 1), 0, 31},  // Monday
		{date(2024, 2, 10), 3, 29}, // leap year, Thursday
		{date(2023, 2, 10), 2, 28}, // Wednesday
	}

	for _, tt := range tests {
		g := Month(tt.ref, MondayFirst)
		if g.Leading() != tt.leading {
			t.Errorf("%s: leading = %d, want %d", tt.ref.Format("2006-01"), g.Leading(), tt.leading)
		}
		if got := len(g.Cells) - g.Leading(); got != tt.days {
			t.Errorf("%s: days = %d, want %d", tt.ref.Format("2006-01"), got, tt.days)
		}
	}
}

func TestShiftMonthRollover(t *testing.T) {
	tests := []struct {
		ref    time.Time
		offset int
		want   string
	}{
		{date(2024, 12, 15), 1, "2025-01-01"},
		{date(2024, 1, 15), -1, "2023-12-01"},
		{date(2024, 1, 31), 1, "2024-02-01"},
		{date(2024, 3, 31), -1, "2024-02-01"},
		{date(2024, 6, 10), 0, "2024-06-01"},
	}

	for _, tt := range tests {
		got := ShiftMonth(tt.ref, tt.offset).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("ShiftMonth(%s, %d) = %s, want %s", tt.ref.Format("2006-01-02"), tt.offset, got, tt.want)
		}
	}
}

func TestWeeks(t *testing.T) {
	g := Month(date(2024, 5, 1), SundayFirst)
	rows := g.Weeks()
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if len(rows[4]) != 34-28 {
		t.Errorf("last row = %d cells, want %d", len(rows[4]), 34-28)
	}
}

func TestLabels(t *testing.T) {
	if got := MondayFirst.Labels(); got[0] != "Mo" || got[6] != "Su" {
		t.Errorf("MondayFirst labels = %v", got)
	}
	if got := SundayFirst.Labels(); got[0] != "Su" || got[6] != "Sa" {
		t.Errorf("SundayFirst labels = %v", got)
	}
}

func TestWeekStrip(t *testing.T) {
	strip := WeekStrip(time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC))
	if len(strip) != 7 {
		t.Fatalf("strip length = %d", len(strip))
	}
	if got := DateKey(strip[0]); got != "2024-02-27" {
		t.Errorf("first = %s, want 2024-02-27", got)
	}
	if got := DateKey(strip[3]); got != "2024-03-01" {
		t.Errorf("centre = %s, want 2024-03-01", got)
	}
	if got := DateKey(strip[6]); got != "2024-03-04" {
		t.Errorf("last = %s, want 2024-03-04", got)
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(date(2024, 2, 1)) != 29 || DaysIn(date(2100, 2, 1)) != 28 || DaysIn(date(2024, 4, 30)) != 30 {
		t.Errorf("DaysIn returned a wrong month length")
	}
}

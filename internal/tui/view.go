package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/progress"
	"github.com/losebird/lifelog-ai/internal/render"
)

var tabTitles = []string{"Timeline", "Todos", "Habits", "Review", "Insights"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateTimeline:
		content = docStyle.Render(m.timeline.View())
	case StateTodos:
		content = docStyle.Render(m.todos.View())
	case StateHabits:
		content = docStyle.Render(m.viewHabits())
	case StateReview:
		content = docStyle.Render(m.viewReview())
	case StateInsights:
		content = docStyle.Render(m.viewInsights())
	case StateAddHabit, StateAddTodo:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	var banner string
	if m.status != "" {
		banner = warningStyle.Render("⚠ " + m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	active := m.state
	switch m.state {
	case StateAddHabit, StateConfirmDelete:
		active = StateHabits
	case StateAddTodo:
		active = StateTodos
	}
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHabits() string {
	snap := m.store.Snapshot()
	idx := progress.NewIndex(snap.HabitLogs)
	today := calendar.StartOfDay(m.now().Local())
	date := calendar.DateKey(m.selected)

	var b strings.Builder
	b.WriteString(render.WeekStrip(m.selected, today, snap.Habits, idx))
	b.WriteString("\n\n")
	b.WriteString(render.DayRings(snap.Habits, idx, date))
	b.WriteString("\n\n")

	if len(snap.Habits) == 0 {
		b.WriteString("Press 'a' to add a habit.")
		return b.String()
	}
	for i, h := range snap.Habits {
		p := idx.Progress(h, date)
		streak := progress.Streak(h, today, snap.HabitLogs)
		line := fmt.Sprintf("%s %s %s", render.Glyph(p), h.Name, mutedStyle.Render(render.Percent(p)))
		if streak > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" 🔥%d", streak))
		}
		if i == m.habitCursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(render.MonthCalendar(m.selected, m.selected, calendar.MondayFirst, snap.Habits, idx))
	return b.String()
}

func (m Model) viewReview() string {
	counts := m.store.RecordCountsByDate()
	grid := render.ReviewCalendar(m.month, calendar.SundayFirst, counts)

	day := calendar.DateKey(m.reviewDay)
	cursor := fmt.Sprintf("%s: %d record(s), enter to open", day, counts[day])

	return lipgloss.JoinVertical(lipgloss.Left,
		grid,
		"",
		cursorStyle.Render(cursor),
		"",
		render.TagCloud(m.store.TagCounts()),
		"",
		render.CompletionRates(m.store.HabitCompletionRates()),
	)
}

func (m Model) viewInsights() string {
	var b strings.Builder
	b.WriteString(cursorStyle.Render("Suggestions"))
	b.WriteString("\n")
	suggestions := m.store.Suggestions()
	switch {
	case m.store.Suggesting():
		b.WriteString(mutedStyle.Render("Looking for patterns..."))
	case len(suggestions) == 0:
		b.WriteString(mutedStyle.Render("No suggestions yet."))
	}
	for _, s := range suggestions {
		fmt.Fprintf(&b, "• %s: %s", s.Title, s.Description)
		if s.Action != nil {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" [%s: %s]", s.Action.Label, s.Action.Habit.Name)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(cursorStyle.Render("Templates"))
	b.WriteString("\n")
	for i, t := range m.store.InsightTemplates() {
		prefix := "  "
		if i == m.templateCursor {
			prefix = cursorStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, t.Name, mutedStyle.Render(t.Description))
	}

	switch {
	case m.reporting:
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Generating report..."))
	case m.report != "":
		b.WriteString("\n")
		b.WriteString(render.Markdown(m.report, max(m.width-4, 40)))
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	name := m.habitToDeleteID
	if h, ok := m.store.Habit(m.habitToDeleteID); ok {
		name = h.Name
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its logs?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

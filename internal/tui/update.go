package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/tui/components/todolist"
)

const mainTabs = 5

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateAddHabit, StateAddTodo:
		return m.updateForm(msg)
	case StateConfirmDelete:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m.updateConfirmDelete(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.timeline.SetSize(msg.Width-4, msg.Height-6)
		m.todos.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.store.Changes())

	case reportMsg:
		m.reporting = false
		m.report = msg.report
		return m, nil

	case errMsg:
		m.reporting = false
		m.status = msg.err.Error()
		return m, nil

	case todolist.AddTodoMsg:
		m.todoForm = &TodoFormModel{}
		m.form = NewTodoForm(m.todoForm)
		m.state = StateAddTodo
		return m, m.form.Init()

	case todolist.CycleStatusMsg:
		item := msg.Item
		item.Status = todolist.NextStatus(item.Status)
		return m, m.act(func(ctx context.Context) error {
			_, err := m.store.UpdateActionItem(ctx, item)
			return err
		})

	case todolist.DeleteTodoMsg:
		item := msg.Item
		return m, m.act(func(ctx context.Context) error {
			return m.store.DeleteActionItem(ctx, item)
		})

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.setState((m.state + 1) % mainTabs)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.setState((m.state - 1 + mainTabs) % mainTabs)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.status = ""

		switch m.state {
		case StateTimeline:
			return m.updateTimeline(msg)
		case StateHabits:
			return m.updateHabits(msg)
		case StateReview:
			return m.updateReview(msg)
		case StateInsights:
			return m.updateInsights(msg)
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateTimeline:
		m.timeline, cmd = m.timeline.Update(msg)
	case StateTodos:
		m.todos, cmd = m.todos.Update(msg)
	}
	return m, cmd
}

// act runs a store mutation. Successful writes arrive as changedMsg; only
// failures need a message of their own.
func (m Model) act(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) updateTimeline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) && m.dateFilter != nil {
		m.dateFilter = nil
		m.store.OnDateChange()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.timeline, cmd = m.timeline.Update(msg)
	return m, cmd
}

func (m Model) updateHabits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	habits := m.store.Habits()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.selected = m.selected.AddDate(0, 0, -1)
	case key.Matches(msg, m.keys.Right):
		m.selected = m.selected.AddDate(0, 0, 1)
	case key.Matches(msg, m.keys.Today):
		m.selected = calendar.StartOfDay(m.now().Local())
	case key.Matches(msg, m.keys.Up):
		m.habitCursor = max(m.habitCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.habitCursor = min(m.habitCursor+1, max(len(habits)-1, 0))
	case key.Matches(msg, m.keys.Add):
		m.habitForm = &HabitFormModel{}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Delete):
		if m.habitCursor < len(habits) {
			m.habitToDeleteID = habits[m.habitCursor].ID
			m.state = StateConfirmDelete
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.habitCursor < len(habits) {
			return m, m.toggleHabit(habits[m.habitCursor])
		}
	}
	return m, nil
}

// toggleHabit flips completion of h on the selected day. Number goals are
// logged at their target.
func (m Model) toggleHabit(h models.Habit) tea.Cmd {
	date := calendar.DateKey(m.selected)
	done := m.store.HabitProgress(h.ID, date) > 0
	log := models.HabitLog{HabitID: h.ID, Date: date, Completed: !done}
	if !done && h.Goal.Type == models.GoalNumber && h.Goal.Target > 0 {
		log.Value = models.NumberValue(h.Goal.Target)
	}
	return m.act(func(ctx context.Context) error {
		_, err := m.store.LogHabit(ctx, log)
		return err
	})
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PrevMonth):
		m.month = calendar.ShiftMonth(m.month, -1)
		m.reviewDay = m.month
	case key.Matches(msg, m.keys.NextMonth):
		m.month = calendar.ShiftMonth(m.month, 1)
		m.reviewDay = m.month
	case key.Matches(msg, m.keys.Left):
		m.moveReviewDay(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveReviewDay(1)
	case key.Matches(msg, m.keys.Up):
		m.moveReviewDay(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveReviewDay(7)
	case key.Matches(msg, m.keys.Today):
		m.reviewDay = calendar.StartOfDay(m.now().Local())
		m.month = calendar.ShiftMonth(m.reviewDay, 0)
	case key.Matches(msg, m.keys.Enter):
		m.store.NavigateToTimeline(m.reviewDay)
		m.state = StateTimeline
		m.refresh()
	}
	return m, nil
}

// moveReviewDay moves the cursor, paging the month when it leaves it.
func (m *Model) moveReviewDay(days int) {
	m.reviewDay = m.reviewDay.AddDate(0, 0, days)
	m.month = calendar.ShiftMonth(m.reviewDay, 0)
}

func (m Model) updateInsights(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.store.InsightTemplates())
	switch {
	case key.Matches(msg, m.keys.Up):
		m.templateCursor = max(m.templateCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.templateCursor = min(m.templateCursor+1, max(n-1, 0))
	case key.Matches(msg, m.keys.Enter):
		if !m.reporting {
			m.reporting = true
			m.report = ""
			return m, m.generateReport()
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	back := StateHabits
	if m.state == StateAddTodo {
		back = StateTodos
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = back
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submitForm(); err != nil {
			// Stay in form state on error to allow retry
			m.status = err.Error()
			m.form.State = huh.StateNormal
			break
		}
		m.status = ""
		m.state = back
	case huh.StateAborted:
		m.state = back
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) submitForm() error {
	ctx := context.Background()
	if m.state == StateAddTodo {
		d, err := TaskFromForm(m.todoForm)
		if err != nil {
			return err
		}
		_, err = m.store.AddActionItem(ctx, d)
		return err
	}
	h, err := HabitFromForm(m.habitForm)
	if err != nil {
		return err
	}
	_, err = m.store.AddHabit(ctx, h)
	return err
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.habitToDeleteID
		m.habitToDeleteID = ""
		m.state = StateHabits
		return m, m.act(func(ctx context.Context) error {
			return m.store.DeleteHabit(ctx, id)
		})
	case "n", "N", "esc", "q":
		m.habitToDeleteID = ""
		m.state = StateHabits
	}
	return m, nil
}

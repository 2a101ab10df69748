// Package tui is the interactive lifelog dashboard: timeline, todo board,
// habit rings, review calendar and insights, one tab per store view.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/enrich"
	"github.com/losebird/lifelog-ai/internal/tui/components/timeline"
	"github.com/losebird/lifelog-ai/internal/tui/components/todolist"
)

type SessionState int

// The first five states line up with datastore.Views.
const (
	StateTimeline SessionState = iota
	StateTodos
	StateHabits
	StateReview
	StateInsights
	StateAddHabit
	StateAddTodo
	StateConfirmDelete
)

var stateViews = []datastore.View{
	datastore.ViewTimeline,
	datastore.ViewTodos,
	datastore.ViewHabits,
	datastore.ViewReview,
	datastore.ViewInsights,
}

func stateFor(v datastore.View) SessionState {
	for i, sv := range stateViews {
		if sv == v {
			return SessionState(i)
		}
	}
	return StateTimeline
}

type HabitFormModel struct {
	Name   string
	Icon   string
	Color  string
	Goal   string
	Target string
	Unit   string
}

type TodoFormModel struct {
	Task     string
	Priority string
	Due      string
}

// Options wires a Model.
type Options struct {
	Store    *datastore.Store
	Enricher enrich.Enricher
	Now      func() time.Time
}

type Model struct {
	store    *datastore.Store
	enricher enrich.Enricher
	now      func() time.Time

	state     SessionState
	keys      KeyMap
	help      help.Model
	timeline  timeline.Model
	todos     todolist.Model
	form      *huh.Form
	habitForm *HabitFormModel
	todoForm  *TodoFormModel

	// habits tab
	selected    time.Time
	habitCursor int
	// review tab
	month     time.Time
	reviewDay time.Time
	// timeline filter
	dateFilter *time.Time
	// insights tab
	templateCursor int
	report         string
	reporting      bool

	habitToDeleteID string
	status          string
	quitting        bool
	width           int
	height          int
}

func NewModel(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Enricher == nil {
		opts.Enricher = enrich.NewSafe(nil)
	}
	today := calendar.StartOfDay(opts.Now().Local())

	m := Model{
		store:     opts.Store,
		enricher:  opts.Enricher,
		now:       opts.Now,
		state:     stateFor(opts.Store.ActiveView()),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		timeline:  timeline.New(0, 0),
		todos:     todolist.New(opts.Store.ActionItemsByStatus(), 0, 0),
		selected:  today,
		month:     calendar.ShiftMonth(today, 0),
		reviewDay: today,
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateHabits:
		keys = append(keys, m.keys.Toggle, m.keys.Add, m.keys.Delete)
	case StateTodos:
		keys = append(keys, m.keys.Add)
	case StateReview:
		keys = append(keys, m.keys.PrevMonth, m.keys.NextMonth, m.keys.Enter)
	case StateInsights:
		keys = append(keys, m.keys.Enter)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter, m.keys.Today}

	var actions []key.Binding
	switch m.state {
	case StateHabits:
		actions = []key.Binding{m.keys.Toggle, m.keys.Add, m.keys.Delete}
	case StateTodos:
		actions = []key.Binding{m.keys.Add}
	case StateReview:
		actions = []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
	}
	return [][]key.Binding{global, navigation, actions}
}

// changedMsg is delivered after the store commits a change.
type changedMsg struct{}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

type reportMsg struct {
	report string
}

type errMsg struct {
	err error
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.store.Changes())
}

// refresh pulls the views this model caches from the store.
func (m *Model) refresh() {
	if d, ok := m.store.ConsumeInitialDate(); ok {
		day := calendar.StartOfDay(d.Local())
		m.dateFilter = &day
	}
	if m.dateFilter != nil {
		m.timeline.SetRecords(m.store.FilterRecords(datastore.RecordFilter{Date: m.dateFilter}), m.dateFilter)
	} else {
		m.timeline.SetRecords(m.store.Records(), nil)
	}
	m.todos.SetBoard(m.store.ActionItemsByStatus())
	if n := len(m.store.Habits()); m.habitCursor >= n {
		m.habitCursor = max(n-1, 0)
	}
}

func (m *Model) setState(s SessionState) {
	m.state = s
	if int(s) < len(stateViews) {
		if err := m.store.SetActiveView(stateViews[s]); err != nil {
			m.status = err.Error()
		}
	}
}

func (m Model) generateReport() tea.Cmd {
	templates := m.store.InsightTemplates()
	if len(templates) == 0 {
		return nil
	}
	tmpl := templates[m.templateCursor%len(templates)]
	records := m.store.RecordsInRange(tmpl.LookbackDays())
	enricher := m.enricher
	return func() tea.Msg {
		report, err := enricher.InsightReport(context.Background(), tmpl, records)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg{report}
	}
}

package todolist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/models"
)

type AddTodoMsg struct{}

// CycleStatusMsg asks to move an item to its next status.
type CycleStatusMsg struct {
	Item models.ActionItem
}

type DeleteTodoMsg struct {
	Item models.ActionItem
}

var statusMarks = map[models.ActionStatus]string{
	models.StatusTodo:       "[ ]",
	models.StatusInProgress: "[~]",
	models.StatusDone:       "[x]",
}

type Item struct {
	Todo models.ActionItem
}

func (i Item) Title() string {
	return statusMarks[i.Todo.Status] + " " + i.Todo.Task
}

func (i Item) Description() string {
	parts := []string{string(i.Todo.Priority)}
	if i.Todo.DueDate != nil {
		parts = append(parts, "due "+i.Todo.DueDate.Local().Format(constants.DateFormat))
	}
	if i.Todo.Project != "" {
		parts = append(parts, i.Todo.Project)
	}
	if n := len(i.Todo.Subtasks); n > 0 {
		done := 0
		for _, s := range i.Todo.Subtasks {
			if s.Completed {
				done++
			}
		}
		parts = append(parts, fmt.Sprintf("%d/%d subtasks", done, n))
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Todo.Task }

// NextStatus cycles todo → inprogress → done → todo.
func NextStatus(s models.ActionStatus) models.ActionStatus {
	switch s {
	case models.StatusTodo:
		return models.StatusInProgress
	case models.StatusInProgress:
		return models.StatusDone
	}
	return models.StatusTodo
}

type KeyMap struct {
	Add    key.Binding
	Cycle  key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Cycle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "next status"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(board datastore.Board, width, height int) Model {
	l := list.New(items(board), list.NewDefaultDelegate(), width, height)
	l.Title = "Todos"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Cycle, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Cycle, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

// items orders the board as todo, in progress, done.
func items(board datastore.Board) []list.Item {
	var out []list.Item
	for _, bucket := range [][]models.ActionItem{board.Todo, board.InProgress, board.Done} {
		for _, a := range bucket {
			out = append(out, Item{Todo: a})
		}
	}
	return out
}

func (m *Model) SetBoard(board datastore.Board) {
	m.list.SetItems(items(board))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddTodoMsg{} }
		case key.Matches(msg, m.keys.Cycle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CycleStatusMsg{Item: i.Todo} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteTodoMsg{Item: i.Todo} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No todos yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

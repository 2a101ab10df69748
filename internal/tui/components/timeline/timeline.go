package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(7)

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
)

var typeIcons = map[models.RecordType]string{
	models.RecordText:  "✎",
	models.RecordVoice: "♪",
	models.RecordLink:  "↗",
	models.RecordScan:  "▣",
	models.RecordFile:  "▤",
}

type Model struct {
	viewport viewport.Model
	Records  []models.Record
	Date     *time.Time
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetRecords shows records, already filtered to date when date is set.
func (m *Model) SetRecords(records []models.Record, date *time.Time) {
	m.Records = records
	m.Date = date
	m.viewport.GotoTop()
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(Content(m.Records, m.Date))
}

// Content lays records out newest first with a header per day.
func Content(records []models.Record, date *time.Time) string {
	var b strings.Builder
	if date != nil {
		b.WriteString(headerStyle.Render("Showing " + date.Format(constants.DateFormat) + " (esc to clear)"))
		b.WriteString("\n\n")
	}
	if len(records) == 0 {
		b.WriteString("No records yet.")
		return b.String()
	}

	lastDay := ""
	for _, r := range records {
		ts := r.Timestamp.Local()
		if day := ts.Format(constants.DateFormat); day != lastDay {
			if lastDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(headerStyle.Render(ts.Format("Monday, Jan 2")))
			b.WriteString("\n")
			lastDay = day
		}

		icon, ok := typeIcons[r.Type]
		if !ok {
			icon = "•"
		}
		line := fmt.Sprintf("%s %s %s %s",
			timeStyle.Render(ts.Format(constants.TimeFormat)),
			icon,
			string(r.Emotion),
			contentStyle.Render(summary(r)),
		)
		if len(r.Tags) > 0 {
			line += " " + tagStyle.Render("#"+strings.Join(r.Tags, " #"))
		}
		if n := len(r.ActionItems); n > 0 {
			line += tagStyle.Render(fmt.Sprintf(" [%d todo]", n))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func summary(r models.Record) string {
	text := r.Content
	if r.LinkDetails != nil && r.LinkDetails.Title != "" && text == "" {
		text = r.LinkDetails.Title
	}
	text, _, _ = strings.Cut(strings.TrimSpace(text), "\n")
	runes := []rune(text)
	if len(runes) > 60 {
		text = string(runes[:59]) + "…"
	}
	return text
}

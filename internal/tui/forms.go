package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/ring"
	"github.com/losebird/lifelog-ai/internal/validation"
)

// NewHabitForm creates a form for adding a habit. The CLI runs it
// standalone; the dashboard embeds it.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	if fm.Color == "" {
		fm.Color = ring.DefaultColor
	}
	if fm.Goal == "" {
		fm.Goal = string(models.GoalCheckmark)
	}
	colors := make([]huh.Option[string], len(ring.PaletteKeys))
	for i, c := range ring.PaletteKeys {
		colors[i] = huh.NewOption(c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Icon").
				Placeholder("📚").
				Value(&fm.Icon),
			huh.NewSelect[string]().
				Title("Color").
				Options(colors...).
				Value(&fm.Color),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Goal").
				Options(
					huh.NewOption("Checkmark", string(models.GoalCheckmark)),
					huh.NewOption("Number", string(models.GoalNumber)),
					huh.NewOption("Note", string(models.GoalNote)),
				).
				Value(&fm.Goal),
			huh.NewInput().
				Title("Daily Target (number goals)").
				Value(&fm.Target).
				Validate(validateTarget),
			huh.NewInput().
				Title("Unit").
				Placeholder("glasses").
				Value(&fm.Unit),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateTarget(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("target must be a non-negative number")
	}
	return nil
}

// HabitFromForm builds a habit from a completed form.
func HabitFromForm(fm *HabitFormModel) (models.Habit, error) {
	h := models.Habit{
		Name:  strings.TrimSpace(fm.Name),
		Icon:  strings.TrimSpace(fm.Icon),
		Color: fm.Color,
		Goal:  models.Goal{Type: models.GoalType(fm.Goal), Unit: strings.TrimSpace(fm.Unit)},
	}
	if t := strings.TrimSpace(fm.Target); t != "" {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return models.Habit{}, fmt.Errorf("invalid target %q: %w", t, err)
		}
		h.Goal.Target = v
	}
	return h, nil
}

// NewTodoForm creates a form for adding a standalone todo.
func NewTodoForm(fm *TodoFormModel) *huh.Form {
	if fm.Priority == "" {
		fm.Priority = string(models.PriorityMedium)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task").
				Value(&fm.Task).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("task cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Low", string(models.PriorityLow)),
					huh.NewOption("Medium", string(models.PriorityMedium)),
					huh.NewOption("High", string(models.PriorityHigh)),
				).
				Value(&fm.Priority),
			huh.NewInput().
				Title("Due (YYYY-MM-DD)").
				Value(&fm.Due).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validation.Date(strings.TrimSpace(s))
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// TaskFromForm builds task details from a completed form.
func TaskFromForm(fm *TodoFormModel) (models.TaskDetails, error) {
	d := models.TaskDetails{
		Task:     strings.TrimSpace(fm.Task),
		Priority: models.Priority(fm.Priority),
	}
	if due := strings.TrimSpace(fm.Due); due != "" {
		t, err := calendar.ParseDate(due)
		if err != nil {
			return models.TaskDetails{}, fmt.Errorf("invalid due date %q: %w", due, err)
		}
		d.DueDate = &t
	}
	return d, nil
}

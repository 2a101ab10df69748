package validation

import (
	"strings"
	"time"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
)

// Date checks a YYYY-MM-DD calendar date.
func Date(s string) error {
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return errors.Invalid("date", "must be YYYY-MM-DD")
	}
	return nil
}

// ClockTime checks an HH:MM time of day.
func ClockTime(s string) error {
	if _, err := time.Parse(constants.TimeFormat, s); err != nil {
		return errors.Invalid("time", "must be HH:MM")
	}
	return nil
}

// Record validates a record before it is persisted.
func Record(r models.Record) error {
	if r.ID == "" {
		return errors.Invalid("record id", "must not be empty")
	}
	switch r.Type {
	case models.RecordText, models.RecordVoice, models.RecordLink, models.RecordScan, models.RecordFile:
	default:
		return errors.Invalid("record type", "unknown type "+string(r.Type))
	}
	if r.Timestamp.IsZero() {
		return errors.Invalid("timestamp", "must be set")
	}
	if r.Emotion != "" && !r.Emotion.Valid() {
		return errors.Invalid("emotion", "unknown emotion "+string(r.Emotion))
	}
	for _, item := range r.ActionItems {
		if err := ActionItem(item); err != nil {
			return err
		}
	}
	return nil
}

// ActionItem validates a single task.
func ActionItem(a models.ActionItem) error {
	if a.ID == "" {
		return errors.Invalid("action item id", "must not be empty")
	}
	if strings.TrimSpace(a.Task) == "" {
		return errors.Invalid("task", "must not be empty")
	}
	if !a.Priority.Valid() {
		return errors.Invalid("priority", "must be low, medium or high")
	}
	if !a.Status.Valid() {
		return errors.Invalid("status", "must be todo, inprogress or done")
	}
	if a.Reminder != "" && !a.Reminder.Valid() {
		return errors.Invalid("reminder", "unknown reminder "+string(a.Reminder))
	}
	if a.Recurrence != "" && !a.Recurrence.Valid() {
		return errors.Invalid("recurrence", "unknown recurrence "+string(a.Recurrence))
	}
	return nil
}

// TaskDetails validates input for a standalone todo.
func TaskDetails(d models.TaskDetails) error {
	if strings.TrimSpace(d.Task) == "" {
		return errors.Invalid("task", "must not be empty")
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return errors.Invalid("priority", "must be low, medium or high")
	}
	if d.Reminder != "" && !d.Reminder.Valid() {
		return errors.Invalid("reminder", "unknown reminder "+string(d.Reminder))
	}
	if d.Recurrence != "" && !d.Recurrence.Valid() {
		return errors.Invalid("recurrence", "unknown recurrence "+string(d.Recurrence))
	}
	return nil
}

// Habit validates a habit definition. The id and creation time are not
// checked so the same rules apply before they are minted.
func Habit(h models.Habit) error {
	if strings.TrimSpace(h.Name) == "" {
		return errors.Invalid("name", "must not be empty")
	}
	if !h.Frequency.Valid() {
		return errors.Invalid("frequency", "must be daily, weekly or monthly")
	}
	if h.FrequencyCount < 1 {
		return errors.Invalid("frequency count", "must be a positive integer")
	}
	if !h.Goal.Type.Valid() {
		return errors.Invalid("goal type", "must be checkmark, number or note")
	}
	if h.Goal.Target < 0 {
		return errors.Invalid("goal target", "must not be negative")
	}
	if h.ReminderTime != "" {
		if err := ClockTime(h.ReminderTime); err != nil {
			return errors.Invalid("reminder time", "must be HH:MM")
		}
	}
	return nil
}

// HabitLog validates a log before the upsert.
func HabitLog(l models.HabitLog) error {
	if l.HabitID == "" {
		return errors.Invalid("habit id", "must not be empty")
	}
	return Date(l.Date)
}

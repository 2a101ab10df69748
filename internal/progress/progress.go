// Package progress computes habit completion for a calendar day.
package progress

import (
	"math"
	"time"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/models"
)

// Calculate returns the completion percentage of habit on date (YYYY-MM-DD).
// A missing or incomplete log is 0. Checkmark and note goals are 100 when
// completed. Number goals with a positive target scale value/target up to
// constants.MaxProgress; without a target any completed log counts as 100.
func Calculate(habit models.Habit, date string, logs []models.HabitLog) float64 {
	log, ok := Find(habit.ID, date, logs)
	if !ok {
		return 0
	}
	return FromLog(habit, log)
}

// FromLog computes progress for an already located log.
func FromLog(habit models.Habit, log models.HabitLog) float64 {
	if !log.Completed {
		return 0
	}
	switch habit.Goal.Type {
	case models.GoalCheckmark, models.GoalNote:
		return 100
	case models.GoalNumber:
		target := habit.Goal.Target
		if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
			return 100
		}
		value, ok := log.Value.Float()
		if !ok || value < 0 {
			value = 0
		}
		return math.Min(value/target*100, constants.MaxProgress)
	}
	return 0
}

// Find returns the log for (habitID, date), if any.
func Find(habitID, date string, logs []models.HabitLog) (models.HabitLog, bool) {
	for _, l := range logs {
		if l.HabitID == habitID && l.Date == date {
			return l, true
		}
	}
	return models.HabitLog{}, false
}

// Index holds logs by natural key for renders that query every habit for
// every visible day.
type Index map[models.LogKey]models.HabitLog

// NewIndex builds an Index. Later duplicates win.
func NewIndex(logs []models.HabitLog) Index {
	idx := make(Index, len(logs))
	for _, l := range logs {
		idx[l.Key()] = l
	}
	return idx
}

// Progress is Calculate against the index.
func (idx Index) Progress(habit models.Habit, date string) float64 {
	log, ok := idx[models.LogKey{HabitID: habit.ID, Date: date}]
	if !ok {
		return 0
	}
	return FromLog(habit, log)
}

// Streak counts consecutive days with progress of at least 100 ending at
// today. When today is not yet complete the count ends at yesterday instead.
func Streak(habit models.Habit, today time.Time, logs []models.HabitLog) int {
	idx := NewIndex(logs)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if idx.Progress(habit, day.Format(constants.DateFormat)) < 100 {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for idx.Progress(habit, day.Format(constants.DateFormat)) >= 100 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

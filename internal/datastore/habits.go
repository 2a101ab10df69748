package datastore

import (
	"context"
	"slices"
	"strings"

	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/ring"
	"github.com/losebird/lifelog-ai/internal/validation"
)

func normalizeHabit(h models.Habit) models.Habit {
	h.Name = strings.TrimSpace(h.Name)
	if h.Frequency == "" {
		h.Frequency = models.FrequencyDaily
	}
	if h.FrequencyCount == 0 {
		h.FrequencyCount = 1
	}
	if h.Goal.Type == "" {
		h.Goal.Type = models.GoalCheckmark
	}
	if h.Color == "" {
		h.Color = ring.DefaultColor
	}
	return h
}

// AddHabit mints an id and creation time for h, persists it and appends it.
func (s *Store) AddHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	h = normalizeHabit(h)
	if err := validation.Habit(h); err != nil {
		return models.Habit{}, err
	}

	release, err := s.begin()
	if err != nil {
		return models.Habit{}, err
	}
	defer release()

	h.ID = s.opts.NewID()
	h.CreatedAt = s.opts.Now().UTC()

	saved, err := s.gw.SaveHabit(ctx, h)
	if err != nil {
		return models.Habit{}, errors.Storage("save habit", err)
	}

	s.mu.Lock()
	s.habits = append(slices.Clone(s.habits), saved)
	s.mu.Unlock()

	s.notify()
	return saved, nil
}

// UpdateHabit replaces the habit with the same id in place. The creation
// time is kept from the stored copy.
func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	h = normalizeHabit(h)
	if err := validation.Habit(h); err != nil {
		return models.Habit{}, err
	}

	release, err := s.begin()
	if err != nil {
		return models.Habit{}, err
	}
	defer release()

	s.mu.RLock()
	i := s.findHabit(h.ID)
	if i >= 0 {
		h.CreatedAt = s.habits[i].CreatedAt
	}
	s.mu.RUnlock()
	if i < 0 {
		return models.Habit{}, errors.NotFound("habit", h.ID)
	}

	saved, err := s.gw.SaveHabit(ctx, h)
	if err != nil {
		return models.Habit{}, errors.Storage("save habit", err)
	}

	s.mu.Lock()
	habits := slices.Clone(s.habits)
	if j := s.findHabit(saved.ID); j >= 0 {
		habits[j] = saved
	}
	s.habits = habits
	s.mu.Unlock()

	s.notify()
	return saved, nil
}

// DeleteHabit removes a habit together with all of its logs.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	release, err := s.begin()
	if err != nil {
		return err
	}
	defer release()

	s.mu.RLock()
	found := s.findHabit(id) >= 0
	s.mu.RUnlock()
	if !found {
		return errors.NotFound("habit", id)
	}

	if err := s.gw.DeleteHabit(ctx, id); err != nil {
		return errors.Storage("delete habit", err)
	}

	s.mu.Lock()
	s.habits = slices.DeleteFunc(slices.Clone(s.habits), func(h models.Habit) bool { return h.ID == id })
	s.logs = slices.DeleteFunc(slices.Clone(s.logs), func(l models.HabitLog) bool { return l.HabitID == id })
	s.mu.Unlock()

	s.notify()
	return nil
}

// LogHabit upserts the day's log for a habit. A log with Completed=false
// removes the entry and the result is nil.
func (s *Store) LogHabit(ctx context.Context, l models.HabitLog) (*models.HabitLog, error) {
	if err := validation.HabitLog(l); err != nil {
		return nil, err
	}

	release, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer release()

	s.mu.RLock()
	found := s.findHabit(l.HabitID) >= 0
	s.mu.RUnlock()
	if !found {
		return nil, errors.NotFound("habit", l.HabitID)
	}

	saved, err := s.gw.UpsertHabitLog(ctx, l)
	if err != nil {
		return nil, errors.Storage("save habit log", err)
	}

	key := l.Key()
	s.mu.Lock()
	logs := slices.DeleteFunc(slices.Clone(s.logs), func(x models.HabitLog) bool { return x.Key() == key })
	if saved != nil {
		logs = append(logs, *saved)
	}
	s.logs = logs
	s.mu.Unlock()

	s.notify()
	return saved, nil
}

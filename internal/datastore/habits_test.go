package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/ring"
	"github.com/losebird/lifelog-ai/internal/storage"
)

func TestAddHabitDefaults(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	h, err := s.AddHabit(context.Background(), models.Habit{ID: "ignored", Name: "  Read  "})
	require.NoError(t, err)

	assert.NotEqual(t, "ignored", h.ID, "AddHabit always mints a fresh id")
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, models.FrequencyDaily, h.Frequency)
	assert.Equal(t, 1, h.FrequencyCount)
	assert.Equal(t, models.GoalCheckmark, h.Goal.Type)
	assert.Equal(t, ring.DefaultColor, h.Color)
	assert.Equal(t, baseTime, h.CreatedAt)
}

func TestAddHabitRejectsInvalid(t *testing.T) {
	s, mem := setupTestStore(t, nil)
	tests := []struct {
		name  string
		habit models.Habit
	}{
		{"empty name", models.Habit{Name: " "}},
		{"bad frequency", models.Habit{Name: "x", Frequency: "hourly"}},
		{"negative target", models.Habit{Name: "x", Goal: models.Goal{Type: models.GoalNumber, Target: -1}}},
		{"bad reminder", models.Habit{Name: "x", ReminderTime: "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddHabit(context.Background(), tt.habit)
			assert.ErrorIs(t, err, lerrors.ErrValidation)
		})
	}
	assert.Equal(t, 0, mem.Puts())
}

func TestUpdateHabitKeepsCreatedAtAndOrder(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	first, err := s.AddHabit(ctx, models.Habit{Name: "Run"})
	require.NoError(t, err)
	_, err = s.AddHabit(ctx, models.Habit{Name: "Read"})
	require.NoError(t, err)

	edit := first
	edit.Name = "Sprint"
	edit.CreatedAt = baseTime.AddDate(1, 0, 0)
	saved, err := s.UpdateHabit(ctx, edit)
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, saved.CreatedAt)
	habits := s.Habits()
	require.Len(t, habits, 2)
	assert.Equal(t, "Sprint", habits[0].Name, "updates replace in place")

	_, err = s.UpdateHabit(ctx, models.Habit{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, lerrors.ErrNotFound)
}

func TestLogHabitUpsertKeepsOneLogPerDay(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	h, err := s.AddHabit(ctx, models.Habit{Name: "Water", Goal: models.Goal{Type: models.GoalNumber, Target: 8}})
	require.NoError(t, err)

	first, err := s.LogHabit(ctx, models.HabitLog{HabitID: h.ID, Date: "2024-05-10", Completed: true, Value: models.NumberValue(3)})
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := s.LogHabit(ctx, models.HabitLog{HabitID: h.ID, Date: "2024-05-10", Completed: true, Value: models.NumberValue(5)})
	require.NoError(t, err)
	require.NotNil(t, second)

	logs := s.HabitLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, first.ID, logs[0].ID, "re-logging a day keeps the log id")
	v, ok := logs[0].Value.Float()
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
}

func TestLogHabitIncompleteRemovesEntry(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	h, err := s.AddHabit(ctx, models.Habit{Name: "Run"})
	require.NoError(t, err)

	_, err = s.LogHabit(ctx, models.HabitLog{HabitID: h.ID, Date: "2024-05-10", Completed: true})
	require.NoError(t, err)
	_, err = s.LogHabit(ctx, models.HabitLog{HabitID: h.ID, Date: "2024-05-09", Completed: true})
	require.NoError(t, err)

	got, err := s.LogHabit(ctx, models.HabitLog{HabitID: h.ID, Date: "2024-05-10", Completed: false})
	require.NoError(t, err)
	assert.Nil(t, got)

	logs := s.HabitLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "2024-05-09", logs[0].Date)
}

func TestLogHabitUnknownHabit(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	_, err := s.LogHabit(context.Background(), models.HabitLog{HabitID: "ghost", Date: "2024-05-10", Completed: true})
	assert.ErrorIs(t, err, lerrors.ErrNotFound)

	_, err = s.LogHabit(context.Background(), models.HabitLog{HabitID: "ghost", Date: "10/05/2024", Completed: true})
	assert.ErrorIs(t, err, lerrors.ErrValidation)
}

func TestNumericHabitProgressScenario(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	h, err := s.AddHabit(ctx, models.Habit{Name: "Read", Goal: models.Goal{Type: models.GoalNumber, Target: 10, Unit: "pages"}})
	require.NoError(t, err)

	const day = "2024-05-10"
	steps := []struct {
		value float64
		want  float64
	}{
		{5, 50},
		{12, 120},
		{0, 0},
	}
	for _, step := range steps {
		_, err := s.LogHabit(ctx, models.HabitLog{HabitID: h.ID, Date: day, Completed: true, Value: models.NumberValue(step.value)})
		require.NoError(t, err)
		assert.InDelta(t, step.want, s.HabitProgress(h.ID, day), 1e-9)
	}

	assert.Equal(t, 0.0, s.HabitProgress("missing", day))
}

func TestDeleteHabitCascadesLogs(t *testing.T) {
	s, mem := setupTestStore(t, nil)
	ctx := context.Background()
	run, err := s.AddHabit(ctx, models.Habit{Name: "Run"})
	require.NoError(t, err)
	read, err := s.AddHabit(ctx, models.Habit{Name: "Read"})
	require.NoError(t, err)
	for _, d := range []string{"2024-05-08", "2024-05-09"} {
		_, err = s.LogHabit(ctx, models.HabitLog{HabitID: run.ID, Date: d, Completed: true})
		require.NoError(t, err)
	}
	_, err = s.LogHabit(ctx, models.HabitLog{HabitID: read.ID, Date: "2024-05-09", Completed: true})
	require.NoError(t, err)

	require.NoError(t, s.DeleteHabit(ctx, run.ID))

	for _, l := range s.HabitLogs() {
		assert.NotEqual(t, run.ID, l.HabitID)
	}
	assert.Len(t, s.HabitLogs(), 1)
	assert.Len(t, s.Habits(), 1)

	// storage agrees
	stored, err := storage.Decode[models.HabitLog](mem.Dump()[storage.KindHabitLogs])
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	assert.ErrorIs(t, s.DeleteHabit(ctx, run.ID), lerrors.ErrNotFound)
}

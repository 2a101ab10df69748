package datastore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
)

func seedRecords(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := range n {
		_, err := s.AddRecord(context.Background(), textRecord(fmt.Sprintf("r%02d", i), baseTime.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
}

func TestSetActiveView(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	assert.Equal(t, ViewTimeline, s.ActiveView())

	require.NoError(t, s.SetActiveView(ViewHabits))
	assert.Equal(t, ViewHabits, s.ActiveView())

	err := s.SetActiveView("settings")
	assert.ErrorIs(t, err, lerrors.ErrValidation)
	assert.Equal(t, ViewHabits, s.ActiveView())
}

func TestNavigateToTimelineIsConsumedOnce(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	require.NoError(t, s.SetActiveView(ViewReview))

	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.Local)
	s.NavigateToTimeline(day)
	assert.Equal(t, ViewTimeline, s.ActiveView())

	got, ok := s.ConsumeInitialDate()
	require.True(t, ok)
	assert.True(t, got.Equal(day))

	_, ok = s.ConsumeInitialDate()
	assert.False(t, ok, "the pending date is handed out once")
}

func TestOnDateChangeDropsPendingDate(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	s.NavigateToTimeline(baseTime)
	s.OnDateChange()
	_, ok := s.ConsumeInitialDate()
	assert.False(t, ok)
}

func TestSuggestionsNeedMoreThanMinRecords(t *testing.T) {
	sug := &fakeSuggester{result: []models.ProactiveSuggestion{{ID: "s1", Title: "Walk more"}}}
	s, _ := setupTestStore(t, sug)

	seedRecords(t, s, 5)
	require.NoError(t, s.SetActiveView(ViewInsights))
	s.WaitForSuggestions()
	assert.Equal(t, int32(0), sug.calls.Load(), "five records are not enough")
	assert.Empty(t, s.Suggestions())

	seedRecords(t, s, 6)
	require.NoError(t, s.SetActiveView(ViewTimeline))
	require.NoError(t, s.SetActiveView(ViewInsights))
	s.WaitForSuggestions()
	assert.Equal(t, int32(1), sug.calls.Load())
	assert.Equal(t, "Walk more", s.Suggestions()[0].Title)
	assert.False(t, s.Suggesting())
}

func TestSuggestionsSendNewestWindow(t *testing.T) {
	sug := &fakeSuggester{}
	s := setupWindowStore(t, sug, 3)
	seedRecords(t, s, 8)

	require.NoError(t, s.SetActiveView(ViewInsights))
	s.WaitForSuggestions()

	sug.mu.Lock()
	defer sug.mu.Unlock()
	assert.Equal(t, []string{"r07", "r06", "r05"}, ids(sug.got))
}

func setupWindowStore(t *testing.T, sug Suggester, window int) *Store {
	t.Helper()
	s, _ := setupTestStore(t, sug)
	s.opts.Window = window
	return s
}

func TestSuggestionsSingleInFlight(t *testing.T) {
	sug := &fakeSuggester{release: make(chan struct{})}
	s, _ := setupTestStore(t, sug)
	seedRecords(t, s, 6)

	require.NoError(t, s.SetActiveView(ViewInsights))
	assert.True(t, s.Suggesting())

	// re-entering insights while a fetch runs does not start another
	require.NoError(t, s.SetActiveView(ViewTimeline))
	require.NoError(t, s.SetActiveView(ViewInsights))

	close(sug.release)
	s.WaitForSuggestions()
	assert.Equal(t, int32(1), sug.calls.Load())
}

func TestSuggestionErrorYieldsEmpty(t *testing.T) {
	sug := &fakeSuggester{result: []models.ProactiveSuggestion{{ID: "s1"}}}
	s, _ := setupTestStore(t, sug)
	seedRecords(t, s, 6)

	require.NoError(t, s.SetActiveView(ViewInsights))
	s.WaitForSuggestions()
	require.Len(t, s.Suggestions(), 1)

	sug.err = errors.New("quota exceeded")
	require.NoError(t, s.SetActiveView(ViewTimeline))
	require.NoError(t, s.SetActiveView(ViewInsights))
	s.WaitForSuggestions()

	assert.NotNil(t, s.Suggestions())
	assert.Empty(t, s.Suggestions())
}

func TestSuggestionsWithoutSuggester(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	seedRecords(t, s, 6)
	require.NoError(t, s.SetActiveView(ViewInsights))
	assert.False(t, s.Suggesting())
	assert.Empty(t, s.Suggestions())
}

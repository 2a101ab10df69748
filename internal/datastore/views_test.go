package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/losebird/lifelog-ai/internal/models"
)

func TestFilterRecords(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	day1 := time.Date(2024, 5, 9, 10, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 5, 10, 10, 0, 0, 0, time.Local)

	for _, r := range []models.Record{
		{ID: "a", Type: models.RecordText, Content: "a", Timestamp: day1, Tags: []string{"work"}},
		{ID: "b", Type: models.RecordText, Content: "b", Timestamp: day2, Tags: []string{"work"}},
		{ID: "c", Type: models.RecordText, Content: "c", Timestamp: day2.Add(time.Hour), Tags: []string{"home"}},
	} {
		_, err := s.AddRecord(ctx, r)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter RecordFilter
		want   []string
	}{
		{"no filter", RecordFilter{}, []string{"c", "b", "a"}},
		{"by day", RecordFilter{Date: &day2}, []string{"c", "b"}},
		{"by tag", RecordFilter{Tag: "work"}, []string{"b", "a"}},
		{"day and tag", RecordFilter{Date: &day2, Tag: "work"}, []string{"b"}},
		{"search ids keep their order", RecordFilter{Date: &day1, SearchIDs: []string{"c", "missing", "a"}}, []string{"c", "a"}},
		{"empty search", RecordFilter{SearchIDs: []string{}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.FilterRecords(tt.filter)))
		})
	}
}

func TestTagCounts(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	tagSets := [][]string{{"work", "gym"}, {"work"}, {"gym", "work"}, {"art"}, {"zen"}}
	for i, tags := range tagSets {
		r := textRecord(string(rune('a'+i)), baseTime)
		r.Tags = tags
		_, err := s.AddRecord(ctx, r)
		require.NoError(t, err)
	}

	assert.Equal(t, []TagCount{
		{Tag: "work", Count: 3},
		{Tag: "gym", Count: 2},
		{Tag: "art", Count: 1},
		{Tag: "zen", Count: 1},
	}, s.TagCounts())
}

func TestHabitCompletionRates(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	logged, err := s.AddHabit(ctx, models.Habit{Name: "Run"})
	require.NoError(t, err)
	idle, err := s.AddHabit(ctx, models.Habit{Name: "Read"})
	require.NoError(t, err)
	_, err = s.LogHabit(ctx, models.HabitLog{HabitID: logged.ID, Date: "2024-05-10", Completed: true})
	require.NoError(t, err)

	rates := s.HabitCompletionRates()
	require.Len(t, rates, 2)
	assert.Equal(t, HabitRate{HabitID: logged.ID, Name: "Run", Rate: 100}, rates[0])
	assert.Equal(t, HabitRate{HabitID: idle.ID, Name: "Read", Rate: 0}, rates[1])
}

func TestRecordCountsByDate(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	morning := time.Date(2024, 5, 10, 8, 0, 0, 0, time.Local)
	for i, ts := range []time.Time{morning, morning.Add(3 * time.Hour), morning.AddDate(0, 0, -1)} {
		_, err := s.AddRecord(ctx, textRecord(string(rune('a'+i)), ts))
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{"2024-05-10": 2, "2024-05-09": 1}, s.RecordCountsByDate())
}

func TestLocalSearch(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	link := models.Record{ID: "l", Type: models.RecordLink, Content: "https://go.dev", Timestamp: baseTime,
		LinkDetails: &models.LinkDetails{URL: "https://go.dev", Title: "The Go Programming Language"}}
	_, err := s.AddRecord(ctx, link)
	require.NoError(t, err)
	_, err = s.AddRecord(ctx, textRecord("t", baseTime.Add(-time.Hour), models.ActionItem{ID: "a1", Task: "Renew PASSPORT"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"l"}, ids(s.LocalSearch("programming")))
	assert.Equal(t, []string{"t"}, ids(s.LocalSearch("passport")))
	assert.Empty(t, s.LocalSearch("  "))
	assert.Empty(t, s.LocalSearch("nothing here"))
}

func TestRecordsInRange(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	now := baseTime.Local()
	for i, ago := range []int{0, 6, 7, 30} {
		_, err := s.AddRecord(ctx, textRecord(string(rune('a'+i)), now.AddDate(0, 0, -ago)))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "b"}, ids(s.RecordsInRange(7)))
	assert.Equal(t, []string{"a"}, ids(s.RecordsInRange(0)))
	assert.Len(t, s.RecordsInRange(31), 4)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	_, err := s.AddRecord(context.Background(), textRecord("r1", baseTime, models.ActionItem{ID: "a1", Task: "x"}))
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Records[0].Content = "mutated"
	snap.Records[0].ActionItems[0].Task = "mutated"

	r, _ := s.Record("r1")
	assert.Equal(t, "note r1", r.Content)
	assert.Equal(t, "x", r.ActionItems[0].Task)
	assert.Equal(t, ViewTimeline, snap.View)
	assert.Len(t, s.InsightTemplates(), 4)
}

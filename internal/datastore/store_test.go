package datastore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/storage"
)

var baseTime = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type fakeSuggester struct {
	calls   atomic.Int32
	release chan struct{}
	result  []models.ProactiveSuggestion
	err     error
	got     []models.Record
	mu      sync.Mutex
}

func (f *fakeSuggester) GenerateSuggestions(ctx context.Context, records []models.Record) ([]models.ProactiveSuggestion, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.got = records
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func setupTestStore(t *testing.T, sug Suggester) (*Store, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	n := 0
	var mu sync.Mutex
	s := New(storage.NewCollections(mem), sug, Options{
		Now: func() time.Time { return baseTime },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	require.NoError(t, s.Load(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s, mem
}

func textRecord(id string, ts time.Time, items ...models.ActionItem) models.Record {
	return models.Record{ID: id, Type: models.RecordText, Content: "note " + id, Timestamp: ts, ActionItems: items}
}

func TestMutationBeforeLoadIsRejected(t *testing.T) {
	s := New(storage.NewCollections(storage.NewMemoryStore()), nil, Options{})
	assert.False(t, s.Ready())

	_, err := s.AddRecord(context.Background(), textRecord("r1", baseTime))
	assert.ErrorIs(t, err, lerrors.ErrNotReady)

	_, err = s.AddHabit(context.Background(), models.Habit{Name: "Run"})
	assert.ErrorIs(t, err, lerrors.ErrNotReady)
}

func TestLoadReadsAllCollections(t *testing.T) {
	mem := storage.NewMemoryStore()
	gw := storage.NewCollections(mem)
	ctx := context.Background()
	_, err := gw.SaveRecord(ctx, textRecord("old", baseTime.Add(-time.Hour), models.ActionItem{ID: "a1", RecordID: "old", Task: "x"}))
	require.NoError(t, err)
	_, err = gw.SaveRecord(ctx, textRecord("new", baseTime))
	require.NoError(t, err)
	_, err = gw.SaveHabit(ctx, models.Habit{ID: "h1", Name: "Run"})
	require.NoError(t, err)
	_, err = gw.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-01", Completed: true})
	require.NoError(t, err)

	s := New(gw, nil, Options{})
	require.NoError(t, s.Load(ctx))

	assert.True(t, s.Ready())
	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].ID, "records load newest first")
	assert.Len(t, s.Habits(), 1)
	assert.Len(t, s.HabitLogs(), 1)
	assert.Len(t, s.ActionItems(), 1)
}

func TestLoadWithCorruptCollectionIsEmpty(t *testing.T) {
	mem := storage.NewMemoryStore()
	mem.Set(storage.KindHabits, []byte("garbage"))

	s := New(storage.NewCollections(mem), nil, Options{})
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Habits())
	assert.True(t, s.Ready())
}

func TestAddRecordKeepsSortAndDerivedItems(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()

	_, err := s.AddRecord(ctx, textRecord("mid", baseTime, models.ActionItem{ID: "a1", Task: "one"}))
	require.NoError(t, err)
	_, err = s.AddRecord(ctx, textRecord("old", baseTime.Add(-48*time.Hour)))
	require.NoError(t, err)

	prior := s.ActionItems()
	r := textRecord("new", baseTime.Add(time.Hour),
		models.ActionItem{ID: "a2", Task: "two"},
		models.ActionItem{ID: "a3", Task: "three"})
	saved, err := s.AddRecord(ctx, r)
	require.NoError(t, err)

	records := s.Records()
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Timestamp.After(records[i-1].Timestamp), "records must be sorted newest first")
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids(records))

	items := s.ActionItems()
	assert.Len(t, items, len(prior)+len(saved.ActionItems))
	assert.ElementsMatch(t, append(itemIDs(prior), "a2", "a3"), itemIDs(items))
	for _, a := range saved.ActionItems {
		assert.Equal(t, "new", a.RecordID, "action items point back at their record")
		assert.Equal(t, models.PriorityMedium, a.Priority)
		assert.Equal(t, models.StatusTodo, a.Status)
		assert.NotNil(t, a.Subtasks)
	}
}

func TestAddRecordMintsIdentity(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	saved, err := s.AddRecord(context.Background(), models.Record{Type: models.RecordText, Content: "hi", Tags: []string{"a", "a", " b "}})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, baseTime, saved.Timestamp)
	assert.Equal(t, []string{"a", "b"}, saved.Tags)
}

func TestAddRecordValidation(t *testing.T) {
	s, mem := setupTestStore(t, nil)
	_, err := s.AddRecord(context.Background(), models.Record{Type: "video", Content: "x"})
	assert.ErrorIs(t, err, lerrors.ErrValidation)
	assert.Equal(t, 0, mem.Puts(), "validation failures never reach storage")
	assert.Empty(t, s.Records())
}

func TestWriteFailureLeavesMemoryUnchanged(t *testing.T) {
	s, mem := setupTestStore(t, nil)
	ctx := context.Background()
	_, err := s.AddRecord(ctx, textRecord("r1", baseTime))
	require.NoError(t, err)
	h, err := s.AddHabit(ctx, models.Habit{Name: "Run"})
	require.NoError(t, err)

	mem.FailPut = func(map[storage.Kind][]byte) error { return errors.New("disk full") }

	_, err = s.AddRecord(ctx, textRecord("r2", baseTime))
	assert.ErrorIs(t, err, lerrors.ErrStorage)

	edited := textRecord("r1", baseTime)
	edited.Content = "changed"
	_, err = s.UpdateRecord(ctx, edited)
	assert.ErrorIs(t, err, lerrors.ErrStorage)

	_, err = s.AddHabit(ctx, models.Habit{Name: "Swim"})
	assert.ErrorIs(t, err, lerrors.ErrStorage)

	h.Name = "Sprint"
	_, err = s.UpdateHabit(ctx, h)
	assert.ErrorIs(t, err, lerrors.ErrStorage)

	assert.ErrorIs(t, s.DeleteHabit(ctx, h.ID), lerrors.ErrStorage)
	assert.ErrorIs(t, s.DeleteRecord(ctx, "r1"), lerrors.ErrStorage)

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "note r1", records[0].Content)
	habits := s.Habits()
	require.Len(t, habits, 1)
	assert.Equal(t, "Run", habits[0].Name)
}

func TestUpdateRecordKeepsTimestamp(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	_, err := s.AddRecord(ctx, textRecord("r1", baseTime.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = s.AddRecord(ctx, textRecord("r2", baseTime))
	require.NoError(t, err)

	edited := textRecord("r1", baseTime.Add(24*time.Hour))
	edited.Content = "edited"
	saved, err := s.UpdateRecord(ctx, edited)
	require.NoError(t, err)

	assert.Equal(t, baseTime.Add(-time.Hour), saved.Timestamp)
	assert.Equal(t, []string{"r2", "r1"}, ids(s.Records()))
	got, ok := s.Record("r1")
	require.True(t, ok)
	assert.Equal(t, "edited", got.Content)
}

func TestUpdateAndDeleteUnknownRecord(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	_, err := s.UpdateRecord(context.Background(), textRecord("nope", baseTime))
	assert.ErrorIs(t, err, lerrors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteRecord(context.Background(), "nope"), lerrors.ErrNotFound)
}

func TestDeleteRecordDropsItsActionItems(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()
	_, err := s.AddRecord(ctx, textRecord("r1", baseTime, models.ActionItem{ID: "a1", Task: "x"}))
	require.NoError(t, err)
	_, err = s.AddRecord(ctx, textRecord("r2", baseTime, models.ActionItem{ID: "a2", Task: "y"}))
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecord(ctx, "r1"))
	assert.Equal(t, []string{"a2"}, itemIDs(s.ActionItems()))
	for _, a := range s.ActionItems() {
		_, ok := s.Record(a.RecordID)
		assert.True(t, ok, "every action item references an existing record")
	}
}

func TestChangesCoalesce(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	// drain the load notification
	select {
	case <-s.Changes():
	default:
	}

	ctx := context.Background()
	for i := range 3 {
		_, err := s.AddRecord(ctx, textRecord(fmt.Sprintf("r%d", i), baseTime))
		require.NoError(t, err)
	}

	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a pending change notification")
	}
	select {
	case <-s.Changes():
		t.Fatal("notifications should coalesce")
	default:
	}
}

func TestConcurrentAddsAllLand(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddRecord(ctx, textRecord(fmt.Sprintf("r%02d", i), baseTime.Add(time.Duration(i)*time.Minute)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Records(), 20)

	// Storage agrees with memory
	fresh := New(s.gw, nil, Options{})
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, ids(s.Records()), ids(fresh.Records()))
}

func TestCloseRejectsFurtherWrites(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	require.NoError(t, s.Close())
	_, err := s.AddRecord(context.Background(), textRecord("r1", baseTime))
	assert.ErrorIs(t, err, lerrors.ErrNotReady)
}

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func itemIDs(items []models.ActionItem) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}

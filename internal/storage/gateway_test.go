package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
)

func setupTestGateway(t *testing.T) (*Collections, *MemoryStore) {
	mem := NewMemoryStore()
	c := NewCollections(mem)
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return c, mem
}

func TestFetchEmpty(t *testing.T) {
	c, _ := setupTestGateway(t)
	ctx := context.Background()

	if got := c.FetchRecords(ctx); got == nil || len(got) != 0 {
		t.Errorf("FetchRecords = %v, want empty non-nil", got)
	}
	if got := c.FetchHabits(ctx); len(got) != 0 {
		t.Errorf("FetchHabits = %v", got)
	}
	if got := c.FetchHabitLogs(ctx); len(got) != 0 {
		t.Errorf("FetchHabitLogs = %v", got)
	}
}

func TestFetchCorruptFallsBackAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWriter(&buf, log.WarnLevel)
	defer func() { logger.Logger = nil }()

	c, mem := setupTestGateway(t)
	mem.Set(KindRecords, []byte(`{"broken":`))

	if got := c.FetchRecords(context.Background()); len(got) != 0 {
		t.Errorf("FetchRecords on corrupt data = %v, want empty", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("records")) {
		t.Errorf("expected a warning naming the collection, got %q", buf.String())
	}
}

func TestFetchBackendErrorFallsBack(t *testing.T) {
	c, mem := setupTestGateway(t)
	mem.FailGet = func(Kind) error { return errors.New("io error") }

	if got := c.FetchHabits(context.Background()); len(got) != 0 {
		t.Errorf("FetchHabits = %v, want empty", got)
	}
}

func TestSaveRecordUpserts(t *testing.T) {
	c, _ := setupTestGateway(t)
	ctx := context.Background()

	r := models.Record{ID: "r1", Type: models.RecordText, Content: "first", Timestamp: time.Now()}
	if _, err := c.SaveRecord(ctx, r); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	r.Content = "edited"
	if _, err := c.SaveRecord(ctx, r); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if _, err := c.SaveRecord(ctx, models.Record{ID: "r2", Type: models.RecordText, Timestamp: time.Now()}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	records := c.FetchRecords(ctx)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Content != "edited" {
		t.Errorf("record not replaced in place: %+v", records[0])
	}

	if err := c.DeleteRecord(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	records = c.FetchRecords(ctx)
	if len(records) != 1 || records[0].ID != "r2" {
		t.Errorf("after delete = %+v", records)
	}
}

func TestSaveFailureSurfaces(t *testing.T) {
	c, mem := setupTestGateway(t)
	mem.FailPut = func(map[Kind][]byte) error { return errors.New("disk full") }

	_, err := c.SaveHabit(context.Background(), models.Habit{ID: "h1", Name: "Run"})
	if err == nil {
		t.Fatalf("SaveHabit should fail when the backend rejects the write")
	}
}

func TestSaveRefusesToClobberCorruptCollection(t *testing.T) {
	c, mem := setupTestGateway(t)
	mem.Set(KindHabits, []byte(`not json`))

	if _, err := c.SaveHabit(context.Background(), models.Habit{ID: "h1"}); err == nil {
		t.Fatalf("SaveHabit over a corrupt collection should fail")
	}
	if got := string(mem.Dump()[KindHabits]); got != "not json" {
		t.Errorf("corrupt blob was overwritten: %q", got)
	}
}

func TestUpsertHabitLogReplaces(t *testing.T) {
	c, _ := setupTestGateway(t)
	ctx := context.Background()

	first, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-01", Completed: true, Value: models.NumberValue(5)})
	if err != nil || first == nil {
		t.Fatalf("first upsert = %v, %v", first, err)
	}
	second, err := c.UpsertHabitLog(ctx, models.HabitLog{ID: "ignored", HabitID: "h1", Date: "2024-05-01", Completed: true, Value: models.NumberValue(12)})
	if err != nil || second == nil {
		t.Fatalf("second upsert = %v, %v", second, err)
	}

	if second.ID != first.ID {
		t.Errorf("second upsert id = %s, want first id %s", second.ID, first.ID)
	}
	logs := c.FetchHabitLogs(ctx)
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want exactly 1", len(logs))
	}
	if v, _ := logs[0].Value.Float(); v != 12 {
		t.Errorf("stored value = %v, want 12", v)
	}
}

func TestUpsertHabitLogIncompleteRemoves(t *testing.T) {
	c, mem := setupTestGateway(t)
	ctx := context.Background()

	if _, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-01", Completed: true}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-02", Completed: true}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-01", Completed: false})
	if err != nil {
		t.Fatalf("removal failed: %v", err)
	}
	if got != nil {
		t.Errorf("removal returned %+v, want nil", got)
	}
	for _, l := range c.FetchHabitLogs(ctx) {
		if l.Date == "2024-05-01" {
			t.Errorf("log for removed key still stored")
		}
	}

	// Removing a key that does not exist writes nothing
	puts := mem.Puts()
	got, err = c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-06-01", Completed: false})
	if err != nil || got != nil {
		t.Errorf("no-op removal = %v, %v", got, err)
	}
	if mem.Puts() != puts {
		t.Errorf("no-op removal should not write")
	}
}

func TestDeleteHabitCascadesInOneBatch(t *testing.T) {
	c, mem := setupTestGateway(t)
	ctx := context.Background()

	for _, id := range []string{"h1", "h2"} {
		if _, err := c.SaveHabit(ctx, models.Habit{ID: id}); err != nil {
			t.Fatalf("SaveHabit failed: %v", err)
		}
		for _, d := range []string{"2024-05-01", "2024-05-02"} {
			if _, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: id, Date: d, Completed: true}); err != nil {
				t.Fatalf("upsert failed: %v", err)
			}
		}
	}

	var batchKinds int
	mem.FailPut = func(b map[Kind][]byte) error {
		batchKinds = len(b)
		return nil
	}
	if err := c.DeleteHabit(ctx, "h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if batchKinds != 2 {
		t.Errorf("DeleteHabit wrote %d collections in its batch, want 2", batchKinds)
	}

	for _, h := range c.FetchHabits(ctx) {
		if h.ID == "h1" {
			t.Errorf("habit h1 still stored")
		}
	}
	logs := c.FetchHabitLogs(ctx)
	for _, l := range logs {
		if l.HabitID == "h1" {
			t.Errorf("log %s for deleted habit survived", l.ID)
		}
	}
	if len(logs) != 2 {
		t.Errorf("logs for other habits = %d, want 2", len(logs))
	}
}

func TestDeleteHabitFailureLeavesBothCollections(t *testing.T) {
	c, mem := setupTestGateway(t)
	ctx := context.Background()
	if _, err := c.SaveHabit(ctx, models.Habit{ID: "h1"}); err != nil {
		t.Fatalf("SaveHabit failed: %v", err)
	}
	if _, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-01", Completed: true}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	mem.FailPut = func(map[Kind][]byte) error { return errors.New("boom") }
	if err := c.DeleteHabit(ctx, "h1"); err == nil {
		t.Fatalf("DeleteHabit should fail")
	}
	if len(c.FetchHabits(ctx)) != 1 || len(c.FetchHabitLogs(ctx)) != 1 {
		t.Errorf("failed delete should leave habits and logs untouched")
	}
}

func TestDeleteHabitLogsForHabit(t *testing.T) {
	c, _ := setupTestGateway(t)
	ctx := context.Background()
	for _, l := range []models.HabitLog{
		{HabitID: "h1", Date: "2024-05-01", Completed: true},
		{HabitID: "h2", Date: "2024-05-01", Completed: true},
		{HabitID: "h1", Date: "2024-05-02", Completed: true},
	} {
		if _, err := c.UpsertHabitLog(ctx, l); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	if err := c.DeleteHabitLogsForHabit(ctx, "h1"); err != nil {
		t.Fatalf("DeleteHabitLogsForHabit failed: %v", err)
	}
	logs := c.FetchHabitLogs(ctx)
	if len(logs) != 1 || logs[0].HabitID != "h2" {
		t.Errorf("remaining logs = %+v", logs)
	}
}

func TestGatewayOverJSONStore(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(filepath.Join(dir, "lifelog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	c := NewCollections(store)
	ctx := context.Background()

	h := models.Habit{ID: "h1", Name: "Read", Goal: models.Goal{Type: models.GoalNumber, Target: 10, Unit: "页"}}
	if _, err := c.SaveHabit(ctx, h); err != nil {
		t.Fatalf("SaveHabit failed: %v", err)
	}
	if _, err := c.UpsertHabitLog(ctx, models.HabitLog{HabitID: "h1", Date: "2024-05-01", Completed: true, Value: models.NumberValue(5)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// A fresh gateway over the same file sees the same data
	fresh := NewCollections(NewJSONStore(store.GetConfigPath()))
	habits := fresh.FetchHabits(ctx)
	if len(habits) != 1 || habits[0].Goal.Unit != "页" {
		t.Errorf("habits after reopen = %+v", habits)
	}
	logs := fresh.FetchHabitLogs(ctx)
	if len(logs) != 1 {
		t.Fatalf("logs after reopen = %+v", logs)
	}
	if v, ok := logs[0].Value.Float(); !ok || v != 5 {
		t.Errorf("log value after reopen = %v, %v", v, ok)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goccy/go-json"

	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
)

// Gateway is durable CRUD over the three collections. Fetches never fail:
// a missing or unreadable collection is logged and returned empty. Writes
// persist the whole updated collection and return any backend error.
type Gateway interface {
	FetchRecords(ctx context.Context) []models.Record
	FetchHabits(ctx context.Context) []models.Habit
	FetchHabitLogs(ctx context.Context) []models.HabitLog

	SaveRecord(ctx context.Context, r models.Record) (models.Record, error)
	DeleteRecord(ctx context.Context, id string) error

	SaveHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	// DeleteHabit removes the habit and all of its logs in one batch.
	DeleteHabit(ctx context.Context, id string) error

	// UpsertHabitLog stores a completed log, reusing the id of any log with
	// the same (habit, date). An incomplete log removes that entry instead
	// and the result is nil.
	UpsertHabitLog(ctx context.Context, l models.HabitLog) (*models.HabitLog, error)
	DeleteHabitLogsForHabit(ctx context.Context, habitID string) error
}

// Collections implements Gateway over any Backend.
type Collections struct {
	backend Backend
	mu      sync.Mutex
	newID   func() string
}

func NewCollections(backend Backend) *Collections {
	return &Collections{backend: backend, newID: models.NewID}
}

// Backend exposes the underlying store for backup and restore.
func (c *Collections) Backend() Backend {
	return c.backend
}

// Encode serializes a collection for a Backend.
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// Decode parses a collection blob.
func Decode[T any](data []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// read returns the stored collection. A collection that was never written
// is empty; anything else unreadable is an error.
func read[T any](ctx context.Context, b Backend, kind Kind) ([]T, error) {
	data, err := b.Get(ctx, kind)
	if err != nil {
		if errors.Is(err, ErrNoBlob) {
			return []T{}, nil
		}
		return nil, err
	}
	items, err := Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", kind, err)
	}
	return items, nil
}

func fetch[T any](ctx context.Context, b Backend, kind Kind) []T {
	items, err := read[T](ctx, b, kind)
	if err != nil {
		logger.Warn("Failed to fetch collection, using empty", "kind", kind, "error", err)
		return []T{}
	}
	return items
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	if i := slices.IndexFunc(items, func(x T) bool { return id(x) == id(item) }); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

func (c *Collections) put(ctx context.Context, batch map[Kind][]byte) error {
	if err := c.backend.Put(ctx, batch); err != nil {
		return fmt.Errorf("failed to persist: %w", err)
	}
	return nil
}

func (c *Collections) FetchRecords(ctx context.Context) []models.Record {
	return fetch[models.Record](ctx, c.backend, KindRecords)
}

func (c *Collections) FetchHabits(ctx context.Context) []models.Habit {
	return fetch[models.Habit](ctx, c.backend, KindHabits)
}

func (c *Collections) FetchHabitLogs(ctx context.Context) []models.HabitLog {
	return fetch[models.HabitLog](ctx, c.backend, KindHabitLogs)
}

func (c *Collections) SaveRecord(ctx context.Context, r models.Record) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := read[models.Record](ctx, c.backend, KindRecords)
	if err != nil {
		return models.Record{}, err
	}
	records = upsert(records, r, func(x models.Record) string { return x.ID })
	data, err := Encode(records)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to serialize records: %w", err)
	}
	if err := c.put(ctx, map[Kind][]byte{KindRecords: data}); err != nil {
		return models.Record{}, err
	}
	return r, nil
}

func (c *Collections) DeleteRecord(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := read[models.Record](ctx, c.backend, KindRecords)
	if err != nil {
		return err
	}
	records = slices.DeleteFunc(records, func(x models.Record) bool { return x.ID == id })
	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("failed to serialize records: %w", err)
	}
	return c.put(ctx, map[Kind][]byte{KindRecords: data})
}

func (c *Collections) SaveHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	habits, err := read[models.Habit](ctx, c.backend, KindHabits)
	if err != nil {
		return models.Habit{}, err
	}
	habits = upsert(habits, h, func(x models.Habit) string { return x.ID })
	data, err := Encode(habits)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to serialize habits: %w", err)
	}
	if err := c.put(ctx, map[Kind][]byte{KindHabits: data}); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (c *Collections) DeleteHabit(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	habits, err := read[models.Habit](ctx, c.backend, KindHabits)
	if err != nil {
		return err
	}
	logs, err := read[models.HabitLog](ctx, c.backend, KindHabitLogs)
	if err != nil {
		return err
	}
	habits = slices.DeleteFunc(habits, func(x models.Habit) bool { return x.ID == id })
	logs = slices.DeleteFunc(logs, func(l models.HabitLog) bool { return l.HabitID == id })

	habitData, err := Encode(habits)
	if err != nil {
		return fmt.Errorf("failed to serialize habits: %w", err)
	}
	logData, err := Encode(logs)
	if err != nil {
		return fmt.Errorf("failed to serialize habit logs: %w", err)
	}
	return c.put(ctx, map[Kind][]byte{KindHabits: habitData, KindHabitLogs: logData})
}

func (c *Collections) UpsertHabitLog(ctx context.Context, l models.HabitLog) (*models.HabitLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logs, err := read[models.HabitLog](ctx, c.backend, KindHabitLogs)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(logs, func(x models.HabitLog) bool {
		return x.HabitID == l.HabitID && x.Date == l.Date
	})

	if !l.Completed {
		if i < 0 {
			return nil, nil
		}
		logs = slices.Delete(logs, i, i+1)
		data, err := Encode(logs)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize habit logs: %w", err)
		}
		return nil, c.put(ctx, map[Kind][]byte{KindHabitLogs: data})
	}

	if i >= 0 {
		l.ID = logs[i].ID
		logs[i] = l
	} else {
		l.ID = c.newID()
		logs = append(logs, l)
	}
	data, err := Encode(logs)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize habit logs: %w", err)
	}
	if err := c.put(ctx, map[Kind][]byte{KindHabitLogs: data}); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Collections) DeleteHabitLogsForHabit(ctx context.Context, habitID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logs, err := read[models.HabitLog](ctx, c.backend, KindHabitLogs)
	if err != nil {
		return err
	}
	logs = slices.DeleteFunc(logs, func(l models.HabitLog) bool { return l.HabitID == habitID })
	data, err := Encode(logs)
	if err != nil {
		return fmt.Errorf("failed to serialize habit logs: %w", err)
	}
	return c.put(ctx, map[Kind][]byte{KindHabitLogs: data})
}

// Package datastore owns the in-memory journal state. Every mutation is
// written through the storage gateway first and committed to memory only
// once the write succeeded, so readers never observe a half-applied change.
package datastore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/storage"
)

// Suggester produces proactive suggestions from recent records.
type Suggester interface {
	GenerateSuggestions(ctx context.Context, records []models.Record) ([]models.ProactiveSuggestion, error)
}

// Options tunes a Store. Zero values take the defaults.
type Options struct {
	// Suggestions are requested only when more than MinRecords exist.
	MinRecords int
	// Window caps how many of the newest records are sent for suggestions.
	Window int
	// SuggestionTimeout bounds one background suggestion request.
	SuggestionTimeout time.Duration

	Now   func() time.Time
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.MinRecords <= 0 {
		o.MinRecords = constants.SuggestionMinRecords
	}
	if o.Window <= 0 {
		o.Window = constants.SuggestionWindow
	}
	if o.SuggestionTimeout <= 0 {
		o.SuggestionTimeout = 2 * constants.AITimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = models.NewID
	}
	return o
}

// Store is the single authoritative copy of records, habits and habit logs.
type Store struct {
	gw        storage.Gateway
	suggester Suggester
	opts      Options

	// writeMu serializes mutations end to end, across the gateway call.
	writeMu sync.Mutex

	mu          sync.RWMutex
	ready       bool
	closed      bool
	records     []models.Record
	habits      []models.Habit
	logs        []models.HabitLog
	actionItems []models.ActionItem
	view        View
	pendingDate *time.Time
	suggestions []models.ProactiveSuggestion
	suggesting  bool

	bg      sync.WaitGroup
	changes chan struct{}
}

// New builds an unloaded Store. suggester may be nil, which disables
// proactive suggestions.
func New(gw storage.Gateway, suggester Suggester, opts Options) *Store {
	return &Store{
		gw:          gw,
		suggester:   suggester,
		opts:        opts.withDefaults(),
		view:        ViewTimeline,
		records:     []models.Record{},
		habits:      []models.Habit{},
		logs:        []models.HabitLog{},
		actionItems: []models.ActionItem{},
		suggestions: []models.ProactiveSuggestion{},
		changes:     make(chan struct{}, 1),
	}
}

// Load reads all three collections concurrently and marks the Store ready.
// Fetches never fail, so Load only returns an error for a cancelled ctx.
// Calling Load again reloads from storage.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		wg      sync.WaitGroup
		records []models.Record
		habits  []models.Habit
		logs    []models.HabitLog
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		records = s.gw.FetchRecords(ctx)
	}()
	go func() {
		defer wg.Done()
		habits = s.gw.FetchHabits(ctx)
	}()
	go func() {
		defer wg.Done()
		logs = s.gw.FetchHabitLogs(ctx)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	sortRecords(records)

	s.mu.Lock()
	s.records = records
	s.habits = habits
	s.logs = logs
	s.recompute()
	s.ready = true
	s.mu.Unlock()

	logger.Debug("Data store loaded", "records", len(records), "habits", len(habits), "logs", len(logs))
	s.notify()
	return nil
}

// Ready reports whether the initial load finished.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Close waits for any background suggestion fetch to finish. Mutations
// after Close fail with ErrNotReady.
func (s *Store) Close() error {
	s.writeMu.Lock()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.bg.Wait()
	return nil
}

// Changes delivers a signal after every committed change. Signals coalesce:
// a slow reader sees one pending notification, not one per change.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// begin takes the write lock and checks the Store accepts mutations.
// The caller must call the returned release func.
func (s *Store) begin() (func(), error) {
	s.writeMu.Lock()
	s.mu.RLock()
	ok := s.ready && !s.closed
	s.mu.RUnlock()
	if !ok {
		s.writeMu.Unlock()
		return nil, errors.ErrNotReady
	}
	return s.writeMu.Unlock, nil
}

// recompute rebuilds derived state. Callers hold mu.
func (s *Store) recompute() {
	items := make([]models.ActionItem, 0, len(s.actionItems))
	for _, r := range s.records {
		for _, a := range r.ActionItems {
			items = append(items, a.Clone())
		}
	}
	s.actionItems = items
}

func sortRecords(records []models.Record) {
	slices.SortStableFunc(records, func(a, b models.Record) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

func (s *Store) findRecord(id string) int {
	return slices.IndexFunc(s.records, func(r models.Record) bool { return r.ID == id })
}

func (s *Store) findHabit(id string) int {
	return slices.IndexFunc(s.habits, func(h models.Habit) bool { return h.ID == id })
}

package datastore

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/progress"
)

// Snapshot is a consistent copy of the whole state.
type Snapshot struct {
	Records     []models.Record
	Habits      []models.Habit
	HabitLogs   []models.HabitLog
	ActionItems []models.ActionItem
	View        View
}

// Snapshot copies the committed state under one read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Records:     cloneRecords(s.records),
		Habits:      slices.Clone(s.habits),
		HabitLogs:   slices.Clone(s.logs),
		ActionItems: cloneItems(s.actionItems),
		View:        s.view,
	}
}

func cloneRecords(in []models.Record) []models.Record {
	out := make([]models.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func cloneItems(in []models.ActionItem) []models.ActionItem {
	out := make([]models.ActionItem, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// Records returns every record, newest first.
func (s *Store) Records() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// Record looks up one record by id.
func (s *Store) Record(id string) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.findRecord(id); i >= 0 {
		return s.records[i].Clone(), true
	}
	return models.Record{}, false
}

// Habits returns habits in insertion order.
func (s *Store) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.habits)
}

// Habit looks up one habit by id.
func (s *Store) Habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.findHabit(id); i >= 0 {
		return s.habits[i], true
	}
	return models.Habit{}, false
}

// HabitLogs returns every stored log.
func (s *Store) HabitLogs() []models.HabitLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs)
}

// ActionItems returns every action item of every record.
func (s *Store) ActionItems() []models.ActionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.actionItems)
}

// ActionItem looks up one action item by id.
func (s *Store) ActionItem(id string) (models.ActionItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.actionItems {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return models.ActionItem{}, false
}

// Board buckets action items by status.
type Board struct {
	Todo       []models.ActionItem
	InProgress []models.ActionItem
	Done       []models.ActionItem
}

func (s *Store) ActionItemsByStatus() Board {
	var b Board
	for _, a := range s.ActionItems() {
		switch a.Status {
		case models.StatusInProgress:
			b.InProgress = append(b.InProgress, a)
		case models.StatusDone:
			b.Done = append(b.Done, a)
		default:
			b.Todo = append(b.Todo, a)
		}
	}
	return b
}

// RecordFilter narrows the timeline. A non-nil SearchIDs wins over the other
// fields and yields the matching records in SearchIDs order.
type RecordFilter struct {
	Date      *time.Time
	Tag       string
	SearchIDs []string
}

func (s *Store) FilterRecords(f RecordFilter) []models.Record {
	records := s.Records()
	if f.SearchIDs != nil {
		byID := make(map[string]models.Record, len(records))
		for _, r := range records {
			byID[r.ID] = r
		}
		out := []models.Record{}
		for _, id := range f.SearchIDs {
			if r, ok := byID[id]; ok {
				out = append(out, r)
				delete(byID, id)
			}
		}
		return out
	}

	return slices.DeleteFunc(records, func(r models.Record) bool {
		if f.Date != nil && !calendar.SameDay(r.Timestamp, *f.Date) {
			return true
		}
		if f.Tag != "" && !slices.Contains(r.Tags, f.Tag) {
			return true
		}
		return false
	})
}

// TagCount is one entry of the tag cloud.
type TagCount struct {
	Tag   string
	Count int
}

// TagCounts counts tag usage across records, most used first.
func (s *Store) TagCounts() []TagCount {
	counts := map[string]int{}
	for _, r := range s.Records() {
		for _, t := range r.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}

// HabitRate is the completion rate of one habit in whole percent.
type HabitRate struct {
	HabitID string
	Name    string
	Rate    int
}

// HabitCompletionRates returns, per habit, the share of its logs that are
// completed.
func (s *Store) HabitCompletionRates() []HabitRate {
	snap := s.Snapshot()
	out := make([]HabitRate, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		total, done := 0, 0
		for _, l := range snap.HabitLogs {
			if l.HabitID != h.ID {
				continue
			}
			total++
			if l.Completed {
				done++
			}
		}
		rate := 0
		if total > 0 {
			rate = int(math.Round(float64(done) / float64(total) * 100))
		}
		out = append(out, HabitRate{HabitID: h.ID, Name: h.Name, Rate: rate})
	}
	return out
}

// RecordCountsByDate counts records per local calendar day (YYYY-MM-DD).
func (s *Store) RecordCountsByDate() map[string]int {
	out := map[string]int{}
	for _, r := range s.Records() {
		out[calendar.DateKey(r.Timestamp.Local())]++
	}
	return out
}

// LocalSearch is a case-insensitive substring match over the searchable
// text of each record. Results keep timeline order.
func (s *Store) LocalSearch(query string) []models.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Record{}
	}
	return slices.DeleteFunc(s.Records(), func(r models.Record) bool {
		return !matches(r, q)
	})
}

func matches(r models.Record, q string) bool {
	fields := []string{r.Content, r.FullText}
	fields = append(fields, r.Tags...)
	if r.LinkDetails != nil {
		fields = append(fields, r.LinkDetails.Title, r.LinkDetails.Summary, r.LinkDetails.URL)
	}
	if r.FileDetails != nil {
		fields = append(fields, r.FileDetails.Name)
	}
	for _, a := range r.ActionItems {
		fields = append(fields, a.Task, a.Project)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// RecordsInRange returns records from the last days days, newest first.
func (s *Store) RecordsInRange(days int) []models.Record {
	days = max(days, 1)
	cutoff := calendar.StartOfDay(s.opts.Now().Local()).AddDate(0, 0, -(days - 1))
	return slices.DeleteFunc(s.Records(), func(r models.Record) bool {
		return r.Timestamp.Before(cutoff)
	})
}

// HabitProgress computes the progress of habit id on date (YYYY-MM-DD).
func (s *Store) HabitProgress(id, date string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findHabit(id)
	if i < 0 {
		return 0
	}
	return progress.Calculate(s.habits[i], date, s.logs)
}

// InsightTemplates returns the built-in review templates.
func (s *Store) InsightTemplates() []models.InsightTemplate {
	return models.DefaultTemplates()
}

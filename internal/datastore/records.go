package datastore

import (
	"context"
	"slices"

	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/validation"
)

// normalizeRecord fills ids and defaults so a record built by any capture
// flow satisfies validation.
func (s *Store) normalizeRecord(r models.Record) models.Record {
	r = r.Clone()
	if r.ID == "" {
		r.ID = s.opts.NewID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.opts.Now().UTC()
	}
	r.Tags = models.MergeTags(r.Tags)
	if r.ActionItems == nil {
		r.ActionItems = []models.ActionItem{}
	}
	for i := range r.ActionItems {
		r.ActionItems[i] = s.normalizeItem(r.ActionItems[i], r.ID)
	}
	return r
}

func (s *Store) normalizeItem(a models.ActionItem, recordID string) models.ActionItem {
	if a.ID == "" {
		a.ID = s.opts.NewID()
	}
	a.RecordID = recordID
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	if a.Status == "" {
		a.Status = models.StatusTodo
	}
	if a.Subtasks == nil {
		a.Subtasks = []models.Subtask{}
	}
	for i := range a.Subtasks {
		if a.Subtasks[i].ID == "" {
			a.Subtasks[i].ID = s.opts.NewID()
		}
	}
	if a.Reminder == "" {
		a.Reminder = models.ReminderNone
	}
	if a.Recurrence == "" {
		a.Recurrence = models.RecurrenceNone
	}
	a.ApplySubtaskRule()
	return a
}

// AddRecord persists r and inserts it newest-first. A record whose id is
// already present replaces it.
func (s *Store) AddRecord(ctx context.Context, r models.Record) (models.Record, error) {
	r = s.normalizeRecord(r)
	if err := validation.Record(r); err != nil {
		return models.Record{}, err
	}

	release, err := s.begin()
	if err != nil {
		return models.Record{}, err
	}
	defer release()

	return s.commitRecord(ctx, r)
}

// UpdateRecord persists r and replaces the stored record with the same id.
// The creation timestamp is kept from the stored copy.
func (s *Store) UpdateRecord(ctx context.Context, r models.Record) (models.Record, error) {
	release, err := s.begin()
	if err != nil {
		return models.Record{}, err
	}
	defer release()

	s.mu.RLock()
	i := s.findRecord(r.ID)
	var existing models.Record
	if i >= 0 {
		existing = s.records[i]
	}
	s.mu.RUnlock()
	if i < 0 {
		return models.Record{}, errors.NotFound("record", r.ID)
	}

	r.Timestamp = existing.Timestamp
	r.Synthetic = existing.Synthetic
	r = s.normalizeRecord(r)
	if err := validation.Record(r); err != nil {
		return models.Record{}, err
	}
	return s.commitRecord(ctx, r)
}

// commitRecord writes r through the gateway and then into memory. Callers
// hold writeMu.
func (s *Store) commitRecord(ctx context.Context, r models.Record) (models.Record, error) {
	saved, err := s.gw.SaveRecord(ctx, r)
	if err != nil {
		return models.Record{}, errors.Storage("save record", err)
	}

	s.mu.Lock()
	records := slices.Clone(s.records)
	if i := s.findRecord(saved.ID); i >= 0 {
		records[i] = saved
	} else {
		records = append(records, saved)
	}
	sortRecords(records)
	s.records = records
	s.recompute()
	s.mu.Unlock()

	s.notify()
	return saved.Clone(), nil
}

// DeleteRecord removes a record and, with it, its action items.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	release, err := s.begin()
	if err != nil {
		return err
	}
	defer release()

	return s.removeRecord(ctx, id)
}

func (s *Store) removeRecord(ctx context.Context, id string) error {
	s.mu.RLock()
	found := s.findRecord(id) >= 0
	s.mu.RUnlock()
	if !found {
		return errors.NotFound("record", id)
	}

	if err := s.gw.DeleteRecord(ctx, id); err != nil {
		return errors.Storage("delete record", err)
	}

	s.mu.Lock()
	s.records = slices.DeleteFunc(slices.Clone(s.records), func(r models.Record) bool { return r.ID == id })
	s.recompute()
	s.mu.Unlock()

	logger.Debug("Record deleted", "id", id)
	s.notify()
	return nil
}

package datastore

import (
	"context"
	"slices"
	"strings"

	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/validation"
)

// UpdateActionItem applies the subtask status rule to item, replaces it in
// its owning record and persists that record as a whole.
func (s *Store) UpdateActionItem(ctx context.Context, item models.ActionItem) (models.ActionItem, error) {
	item = s.normalizeItem(item.Clone(), item.RecordID)
	if err := validation.ActionItem(item); err != nil {
		return models.ActionItem{}, err
	}

	release, err := s.begin()
	if err != nil {
		return models.ActionItem{}, err
	}
	defer release()

	rec, idx, err := s.owner(item)
	if err != nil {
		return models.ActionItem{}, err
	}
	rec.ActionItems[idx] = item

	saved, err := s.commitRecord(ctx, rec)
	if err != nil {
		return models.ActionItem{}, err
	}
	return saved.ActionItems[idx], nil
}

// AddActionItem creates a standalone todo. Todos are always backed by a
// record: a synthetic text record whose content is the task and whose only
// action item is the new one.
func (s *Store) AddActionItem(ctx context.Context, d models.TaskDetails) (models.Record, error) {
	d.Task = strings.TrimSpace(d.Task)
	if err := validation.TaskDetails(d); err != nil {
		return models.Record{}, err
	}

	release, err := s.begin()
	if err != nil {
		return models.Record{}, err
	}
	defer release()

	recordID := s.opts.NewID()
	subtasks := make([]models.Subtask, 0, len(d.Subtasks))
	for _, text := range d.Subtasks {
		if text = strings.TrimSpace(text); text != "" {
			subtasks = append(subtasks, models.Subtask{ID: s.opts.NewID(), Text: text})
		}
	}
	var tags []string
	if p := strings.TrimSpace(d.Project); p != "" {
		tags = []string{p}
	}

	rec := models.Record{
		ID:        recordID,
		Type:      models.RecordText,
		Content:   d.Task,
		Timestamp: s.opts.Now().UTC(),
		Tags:      tags,
		Emotion:   models.EmotionThinking,
		Synthetic: true,
		ActionItems: []models.ActionItem{{
			ID:         s.opts.NewID(),
			Task:       d.Task,
			DueDate:    d.DueDate,
			Priority:   d.Priority,
			Project:    strings.TrimSpace(d.Project),
			Status:     models.StatusTodo,
			Subtasks:   subtasks,
			Reminder:   d.Reminder,
			Recurrence: d.Recurrence,
		}},
	}
	rec = s.normalizeRecord(rec)
	if err := validation.Record(rec); err != nil {
		return models.Record{}, err
	}
	return s.commitRecord(ctx, rec)
}

// DeleteActionItem removes item from its owning record. A synthetic todo
// record left without action items is deleted outright; any other record is
// persisted with the item removed.
func (s *Store) DeleteActionItem(ctx context.Context, item models.ActionItem) error {
	release, err := s.begin()
	if err != nil {
		return err
	}
	defer release()

	rec, idx, err := s.owner(item)
	if err != nil {
		return err
	}
	deleted := rec.ActionItems[idx]
	rec.ActionItems = slices.Delete(rec.ActionItems, idx, idx+1)

	if len(rec.ActionItems) == 0 && isTaskRecord(rec, deleted) {
		return s.removeRecord(ctx, rec.ID)
	}
	_, err = s.commitRecord(ctx, rec)
	return err
}

// isTaskRecord reports whether rec only existed to back the todo. Records
// written before the Synthetic flag existed are recognized by their content
// matching the task text.
func isTaskRecord(rec models.Record, item models.ActionItem) bool {
	if rec.Type != models.RecordText {
		return false
	}
	return rec.Synthetic || rec.Content == item.Task
}

// owner returns a copy of the record that owns item and the item's index.
func (s *Store) owner(item models.ActionItem) (models.Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findRecord(item.RecordID)
	if i < 0 {
		return models.Record{}, 0, errors.NotFound("record", item.RecordID)
	}
	rec := s.records[i].Clone()
	idx := rec.FindActionItem(item.ID)
	if idx < 0 {
		return models.Record{}, 0, errors.NotFound("action item", item.ID)
	}
	return rec, idx, nil
}

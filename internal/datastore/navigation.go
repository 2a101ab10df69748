package datastore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
)

// View is a top-level screen of the app.
type View string

const (
	ViewTimeline View = "timeline"
	ViewTodos    View = "todos"
	ViewHabits   View = "habits"
	ViewReview   View = "review"
	ViewInsights View = "insights"
)

// Views lists every View in navigation order.
var Views = []View{ViewTimeline, ViewTodos, ViewHabits, ViewReview, ViewInsights}

func (v View) Valid() bool {
	return slices.Contains(Views, v)
}

// ActiveView returns the current top-level view.
func (s *Store) ActiveView() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetActiveView switches views. Entering the insights view starts a
// background suggestion fetch when enough records exist and none is
// already running. A running fetch is never cancelled by later view
// changes; its result is committed whenever it arrives.
func (s *Store) SetActiveView(v View) error {
	if !v.Valid() {
		return errors.Invalid("view", fmt.Sprintf("unknown view %q", v))
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	s.notify()

	if v == ViewInsights {
		s.requestSuggestions()
	}
	return nil
}

// NavigateToTimeline switches to the timeline and leaves date pending for
// the timeline to pick up once.
func (s *Store) NavigateToTimeline(date time.Time) {
	s.mu.Lock()
	d := date
	s.pendingDate = &d
	s.view = ViewTimeline
	s.mu.Unlock()
	s.notify()
}

// ConsumeInitialDate returns the pending navigation date, clearing it.
// Only the first caller after NavigateToTimeline sees the date.
func (s *Store) ConsumeInitialDate() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDate == nil {
		return time.Time{}, false
	}
	d := *s.pendingDate
	s.pendingDate = nil
	return d, true
}

// OnDateChange drops any pending navigation date. The timeline calls it once
// the user picks a date themselves.
func (s *Store) OnDateChange() {
	s.mu.Lock()
	s.pendingDate = nil
	s.mu.Unlock()
}

// Suggestions returns the last fetched proactive suggestions.
func (s *Store) Suggestions() []models.ProactiveSuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.suggestions)
}

// Suggesting reports whether a suggestion fetch is in flight.
func (s *Store) Suggesting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggesting
}

// WaitForSuggestions blocks until no suggestion fetch is in flight.
func (s *Store) WaitForSuggestions() {
	s.bg.Wait()
}

func (s *Store) requestSuggestions() {
	s.mu.Lock()
	if s.suggester == nil || s.closed || !s.ready || s.suggesting || len(s.records) <= s.opts.MinRecords {
		s.mu.Unlock()
		return
	}
	s.suggesting = true
	n := min(len(s.records), s.opts.Window)
	recent := make([]models.Record, n)
	for i := range n {
		recent[i] = s.records[i].Clone()
	}
	s.bg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SuggestionTimeout)
		defer cancel()

		got, err := s.suggester.GenerateSuggestions(ctx, recent)
		if err != nil {
			logger.Warn("Failed to generate suggestions", "error", err)
			got = []models.ProactiveSuggestion{}
		}
		if got == nil {
			got = []models.ProactiveSuggestion{}
		}
		logger.Debug("Suggestions fetched", "count", len(got), "records", len(recent))

		s.mu.Lock()
		s.suggestions = got
		s.suggesting = false
		s.mu.Unlock()
		s.notify()
	}()
}

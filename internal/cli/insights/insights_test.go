package insights

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/storage"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)

type stubSuggester struct {
	calls int
}

func (s *stubSuggester) GenerateSuggestions(_ context.Context, records []models.Record) ([]models.ProactiveSuggestion, error) {
	s.calls++
	return []models.ProactiveSuggestion{{
		ID:          "s1",
		Type:        models.SuggestionHabit,
		Title:       "Evening walks",
		Description: fmt.Sprintf("You mentioned walking in %d records.", len(records)),
		Action: &models.SuggestionAction{
			Label: "Track it",
			Habit: models.SuggestedHabit{Name: "Evening Walk", Icon: "🚶", Color: "#22c55e"},
		},
	}}, nil
}

func setupTestContext(t *testing.T, sug datastore.Suggester, records int) *cli.Context {
	t.Helper()
	store := datastore.New(storage.NewCollections(storage.NewMemoryStore()), sug, datastore.Options{
		Now: func() time.Time { return fixedNow },
	})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for i := range records {
		_, err := store.AddRecord(context.Background(), models.Record{
			Type:      models.RecordText,
			Content:   fmt.Sprintf("walked after dinner %d", i),
			Timestamp: fixedNow.Add(-time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("failed to add record: %v", err)
		}
	}

	return &cli.Context{
		Ctx:   context.Background(),
		Store: store,
		Now:   func() time.Time { return fixedNow },
	}
}

// captureStdout runs fn and returns what it printed.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	runErr := fn()
	os.Stdout = orig
	_ = w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if runErr != nil {
		t.Fatalf("command failed: %v", runErr)
	}
	return string(out)
}

func TestInsightsSuggestionsFetches(t *testing.T) {
	sug := &stubSuggester{}
	ctx := setupTestContext(t, sug, 6)

	out := captureStdout(t, func() error {
		return (&InsightsSuggestionsCmd{}).Run(ctx)
	})

	if sug.calls != 1 {
		t.Errorf("suggester called %d times, want 1", sug.calls)
	}
	if !strings.Contains(out, "1. Evening walks") {
		t.Errorf("output missing suggestion title:\n%s", out)
	}
	if !strings.Contains(out, "--create 1") {
		t.Errorf("output missing create hint:\n%s", out)
	}
	if got := ctx.Store.ActiveView(); got != datastore.ViewInsights {
		t.Errorf("active view = %q, want %q", got, datastore.ViewInsights)
	}
}

func TestInsightsSuggestionsBelowThreshold(t *testing.T) {
	sug := &stubSuggester{}
	ctx := setupTestContext(t, sug, 5)

	out := captureStdout(t, func() error {
		return (&InsightsSuggestionsCmd{}).Run(ctx)
	})

	if sug.calls != 0 {
		t.Errorf("suggester called %d times with too few records", sug.calls)
	}
	if !strings.Contains(out, "No suggestions yet.") {
		t.Errorf("expected the empty message, got:\n%s", out)
	}
}

func TestInsightsSuggestionsCreateHabit(t *testing.T) {
	ctx := setupTestContext(t, &stubSuggester{}, 6)

	out := captureStdout(t, func() error {
		return (&InsightsSuggestionsCmd{Create: 1}).Run(ctx)
	})

	if !strings.Contains(out, "Added habit: Evening Walk") {
		t.Errorf("unexpected output:\n%s", out)
	}
	habits := ctx.Store.Habits()
	if len(habits) != 1 {
		t.Fatalf("got %d habits, want 1", len(habits))
	}
	if habits[0].Icon != "🚶" || habits[0].Color != "#22c55e" {
		t.Errorf("habit = %+v, want icon and color from the suggestion", habits[0])
	}
}

func TestInsightsSuggestionsCreateOutOfRange(t *testing.T) {
	ctx := setupTestContext(t, &stubSuggester{}, 6)

	err := (&InsightsSuggestionsCmd{Create: 3}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected an out of range error, got %v", err)
	}
}

func TestReviewCalendarDefaultsToSundayFirst(t *testing.T) {
	ctx := setupTestContext(t, nil, 0)
	out := captureStdout(t, func() error {
		return (&ReviewCalendarCmd{Month: "2024-05"}).Run(ctx)
	})
	if !strings.Contains(out, "May 2024") {
		t.Errorf("expected the month title, got:\n%s", out)
	}
	if !strings.Contains(out, "Su  Mo") {
		t.Errorf("expected Sunday-first labels, got:\n%s", out)
	}
}

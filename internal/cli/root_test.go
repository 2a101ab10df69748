package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/storage"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)

func setupTestContext(t *testing.T) *Context {
	t.Helper()
	backend := storage.NewMemoryStore()
	store := datastore.New(storage.NewCollections(backend), nil, datastore.Options{
		Now: func() time.Time { return fixedNow },
	})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &Context{
		Ctx:     context.Background(),
		Backend: backend,
		Store:   store,
		Now:     func() time.Time { return fixedNow },
	}
}

func TestMatchID(t *testing.T) {
	ids := []string{"3fa85f64-5717", "3fb21c00-0001", "9d1e7c22-aaaa"}

	tests := []struct {
		name    string
		ref     string
		want    int
		wantErr error
	}{
		{name: "exact", ref: "9d1e7c22-aaaa", want: 2},
		{name: "unique prefix", ref: "3fa", want: 0},
		{name: "prefix with spaces", ref: "  9d1 ", want: 2},
		{name: "ambiguous prefix", ref: "3f", want: -1},
		{name: "unknown", ref: "ffff", want: -1, wantErr: errors.ErrNotFound},
		{name: "empty", ref: "", want: -1, wantErr: errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchID("record", tt.ref, ids)
			if got != tt.want {
				t.Errorf("matchID(%q) = %d, want %d", tt.ref, got, tt.want)
			}
			if tt.want >= 0 && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.want < 0 && err == nil {
				t.Errorf("expected an error for %q", tt.ref)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchIDAmbiguousMessage(t *testing.T) {
	_, err := matchID("todo", "ab", []string{"abc", "abd"})
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("3fa85f64-5717-4562"); got != "3fa85f64" {
		t.Errorf("ShortID = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID of a short id = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer line of text", 10, "a much lo…"},
		{"line one\nline  two", 20, "line one line two"},
		{"日記を書いた一日", 5, "日記を書…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	ctx := &Context{Now: func() time.Time { return fixedNow }}

	got, err := ctx.ParseDay("")
	if err != nil {
		t.Fatalf("ParseDay(\"\") failed: %v", err)
	}
	if want := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("ParseDay(\"\") = %v, want %v", got, want)
	}

	got, err = ctx.ParseDay("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if got.Month() != time.February || got.Day() != 29 {
		t.Errorf("ParseDay = %v", got)
	}

	if _, err := ctx.ParseDay("05/10/2024"); err == nil {
		t.Error("expected an error for a non ISO date")
	}
}

func TestParseMonth(t *testing.T) {
	ctx := &Context{Now: func() time.Time { return fixedNow }}

	got, err := ctx.ParseMonth("")
	if err != nil {
		t.Fatalf("ParseMonth(\"\") failed: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.May || got.Day() != 1 {
		t.Errorf("ParseMonth(\"\") = %v, want 2024-05-01", got)
	}

	got, err = ctx.ParseMonth("2023-12")
	if err != nil {
		t.Fatalf("ParseMonth failed: %v", err)
	}
	if got.Year() != 2023 || got.Month() != time.December || got.Day() != 1 {
		t.Errorf("ParseMonth = %v", got)
	}

	if _, err := ctx.ParseMonth("December"); err == nil {
		t.Error("expected an error for a bad month")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		ctx := &Context{In: strings.NewReader(tt.input)}
		got, err := ctx.Confirm("Continue?")
		if err != nil {
			t.Fatalf("Confirm(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFindHabit(t *testing.T) {
	ctx := setupTestContext(t)
	saved, err := ctx.Store.AddHabit(ctx.Ctx, models.Habit{Name: "Morning Run"})
	if err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	for _, ref := range []string{"morning run", "Morning Run", saved.ID, ShortID(saved.ID)} {
		h, err := ctx.FindHabit(ref)
		if err != nil {
			t.Errorf("FindHabit(%q) failed: %v", ref, err)
			continue
		}
		if h.ID != saved.ID {
			t.Errorf("FindHabit(%q) = %s, want %s", ref, h.ID, saved.ID)
		}
	}

	if _, err := ctx.FindHabit("swim"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestFindRecordAndActionItem(t *testing.T) {
	ctx := setupTestContext(t)
	rec, err := ctx.Store.AddActionItem(ctx.Ctx, models.TaskDetails{Task: "Water the plants", Priority: models.PriorityLow})
	if err != nil {
		t.Fatalf("failed to add todo: %v", err)
	}

	r, err := ctx.FindRecord(ShortID(rec.ID))
	if err != nil {
		t.Fatalf("FindRecord failed: %v", err)
	}
	if r.ID != rec.ID {
		t.Errorf("FindRecord = %s, want %s", r.ID, rec.ID)
	}

	item, err := ctx.FindActionItem(rec.ActionItems[0].ID)
	if err != nil {
		t.Fatalf("FindActionItem failed: %v", err)
	}
	if item.Task != "Water the plants" {
		t.Errorf("FindActionItem task = %q", item.Task)
	}
}

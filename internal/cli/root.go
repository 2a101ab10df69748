package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/losebird/lifelog-ai/internal/backup"
	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/config"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/enrich"
	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/storage"
)

// ShortIDLen is how many characters of an id the CLI prints.
const ShortIDLen = 8

type Context struct {
	Ctx      context.Context
	Config   *config.Config
	Backend  storage.Backend
	Store    *datastore.Store
	Enricher *enrich.Safe
	Now      func() time.Time
	// In is read by confirmation prompts. Defaults to stdin.
	In io.Reader
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is the start of the current local day.
func (c *Context) Today() time.Time {
	return calendar.StartOfDay(c.now().Local())
}

// BackupManager returns the snapshot manager for the configured backend.
func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Backend, c.Config.Dir)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	_, err := c.BackupManager().CreateBackup(c.Ctx)
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirm asks a yes/no question on the context's input. Anything but y or
// yes is a no.
func (c *Context) Confirm(question string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	fmt.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// ParseDay parses a YYYY-MM-DD flag value. An empty value is today.
func (c *Context) ParseDay(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return c.Today(), nil
	}
	d, err := calendar.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return d, nil
}

// ParseMonth parses a YYYY-MM flag value into the first day of that month.
// An empty value is the current month.
func (c *Context) ParseMonth(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return calendar.ShiftMonth(c.Today(), 0), nil
	}
	m, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month format: %s (expected YYYY-MM)", s)
	}
	return m, nil
}

// ShortID shortens an id for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// Truncate cuts s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// matchID resolves ref to the single id that equals it or starts with it.
func matchID(kind, ref string, ids []string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, errors.Invalid(kind+" id", "must not be empty")
	}
	found := -1
	for i, id := range ids {
		if id == ref {
			return i, nil
		}
		if strings.HasPrefix(id, ref) {
			if found >= 0 {
				return -1, fmt.Errorf("%s id %q is ambiguous", kind, ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, errors.NotFound(kind, ref)
	}
	return found, nil
}

// FindRecord resolves a full or abbreviated record id.
func (c *Context) FindRecord(ref string) (models.Record, error) {
	records := c.Store.Records()
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	i, err := matchID("record", ref, ids)
	if err != nil {
		return models.Record{}, err
	}
	return records[i], nil
}

// FindActionItem resolves a full or abbreviated todo id.
func (c *Context) FindActionItem(ref string) (models.ActionItem, error) {
	items := c.Store.ActionItems()
	ids := make([]string, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}
	i, err := matchID("todo", ref, ids)
	if err != nil {
		return models.ActionItem{}, err
	}
	return items[i], nil
}

// FindHabit resolves a habit by id, id prefix or case-insensitive name.
func (c *Context) FindHabit(ref string) (models.Habit, error) {
	habits := c.Store.Habits()
	for _, h := range habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			return h, nil
		}
	}
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	i, err := matchID("habit", ref, ids)
	if err != nil {
		return models.Habit{}, err
	}
	return habits[i], nil
}

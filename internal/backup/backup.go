// Package backup writes zstd-compressed snapshots of every collection in a
// storage backend and restores them as a single batch.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/storage"
)

// SnapshotVersion is written into every snapshot.
const SnapshotVersion = 1

const (
	minuteLayout = "20060102-1504"
	secondLayout = "20060102-150405"
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

type snapshot struct {
	Version     int                              `json:"version"`
	CreatedAt   time.Time                        `json:"createdAt"`
	Collections map[storage.Kind]json.RawMessage `json:"collections"`
}

// Manager handles backup operations
type Manager struct {
	backend   storage.Backend
	backupDir string
	now       func() time.Time
}

// NewManager creates a backup manager writing to <dir>/backups.
func NewManager(backend storage.Backend, dir string) *Manager {
	return &Manager{
		backend:   backend,
		backupDir: filepath.Join(dir, constants.BackupDirName),
		now:       time.Now,
	}
}

// WithClock replaces the clock used to name backups.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup snapshots the backend and rotates old backups.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	return m.createBackup(ctx, false)
}

// A pre-restore snapshot skips rotation, so it never pushes out the backup
// being restored, and leaves out corrupted collections instead of failing.
func (m *Manager) createBackup(ctx context.Context, preRestore bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	snap := snapshot{
		Version:     SnapshotVersion,
		CreatedAt:   m.now().UTC(),
		Collections: map[storage.Kind]json.RawMessage{},
	}
	for _, kind := range storage.Kinds {
		data, err := m.backend.Get(ctx, kind)
		if errors.Is(err, storage.ErrNoBlob) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", kind, err)
		}
		if !json.Valid(data) {
			if preRestore {
				logger.Warn("leaving corrupted collection out of pre-restore backup", "kind", kind)
				continue
			}
			return "", fmt.Errorf("%s is corrupted, refusing to back it up", kind)
		}
		snap.Collections[kind] = data
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := writeFile(path, enc.EncodeAll(raw, make([]byte, 0, len(raw)/2))); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !preRestore {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("failed to rotate old backups", "error", err)
		}
	}
	return path, nil
}

// nextPath names a backup after the current minute, adding seconds and then
// a counter when that name is taken.
func (m *Manager) nextPath() (string, error) {
	now := m.now()
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}
	path := name(now.Format(minuteLayout))
	if !exists(path) {
		return path, nil
	}
	stamp := now.Format(secondLayout)
	path = name(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = name(stamp + "-" + strconv.Itoa(counter))
	}
	return path, nil
}

// ListBackups returns all backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
			continue
		}
		ts, ok := parseStamp(strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix))
		if !ok {
			continue
		}
		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{Path: path, Timestamp: ts, Size: info.Size()})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseStamp accepts YYYYMMDD-HHMM and YYYYMMDD-HHMMSS with an optional -N
// counter.
func parseStamp(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return time.Time{}, false
		}
		s = parts[0] + "-" + parts[1]
	}
	for _, layout := range []string{minuteLayout, secondLayout} {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces every collection with the snapshot contents. The
// current state is backed up first and the snapshot is written as one batch,
// so a failed restore leaves the backend untouched. It returns the path of
// the pre-restore backup.
func (m *Manager) RestoreBackup(ctx context.Context, backupPath string) (string, error) {
	snap, err := readSnapshot(backupPath)
	if err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	current, err := m.createBackup(ctx, true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current data before restore: %w", err)
	}
	logger.Info("created backup of current data", "path", filepath.Base(current))

	batch := make(map[storage.Kind][]byte, len(storage.Kinds))
	for _, kind := range storage.Kinds {
		data, ok := snap.Collections[kind]
		if !ok {
			data = json.RawMessage("[]")
		}
		batch[kind] = data
	}
	if err := m.backend.Put(ctx, batch); err != nil {
		return current, fmt.Errorf("failed to restore data: %w", err)
	}
	return current, nil
}

func readSnapshot(path string) (*snapshot, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	for kind, data := range snap.Collections {
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown collection %q", kind)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("collection %s is not valid JSON", kind)
		}
	}
	return &snap, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	// Sync to ensure data is written to disk
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

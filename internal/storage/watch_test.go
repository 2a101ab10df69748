package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(filepath.Join(dir, "lifelog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	if err := Watch(ctx, store.GetConfigPath(), 20*time.Millisecond, func() { changed <- struct{}{} }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	other := NewJSONStore(store.GetConfigPath())
	if err := other.Put(ctx, map[Kind][]byte{KindRecords: []byte(`[]`)}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatalf("no change notification after external write")
	}
}

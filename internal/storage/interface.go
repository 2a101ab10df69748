package storage

import (
	"context"
	"errors"
)

// Kind names one persisted collection.
type Kind string

const (
	KindRecords   Kind = "records"
	KindHabits    Kind = "habits"
	KindHabitLogs Kind = "habitLogs"
)

// Kinds lists every collection in a fixed order.
var Kinds = []Kind{KindRecords, KindHabits, KindHabitLogs}

func (k Kind) Valid() bool {
	switch k {
	case KindRecords, KindHabits, KindHabitLogs:
		return true
	}
	return false
}

var (
	// ErrNoBlob is returned by Backend.Get when a collection was never written
	ErrNoBlob = errors.New("collection not stored")
	// ErrNotInitialized is returned by Load when Init was never run
	ErrNotInitialized = errors.New("storage not initialized, run 'lifelog init' first")
	// ErrAlreadyInitialized is returned by Init on an existing store
	ErrAlreadyInitialized = errors.New("storage already initialized")
)

// Backend is a key-value store of serialized collections. Put writes every
// blob in the batch or none of them.
type Backend interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(ctx context.Context, kind Kind) ([]byte, error)
	Put(ctx context.Context, blobs map[Kind][]byte) error

	// Utils
	GetConfigPath() string
}

package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is an in-process Backend for tests and ephemeral sessions.
// FailPut, when set, is consulted before every Put and can reject it.
type MemoryStore struct {
	mu      sync.Mutex
	blobs   map[Kind][]byte
	puts    int
	FailPut func(blobs map[Kind][]byte) error
	FailGet func(kind Kind) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[Kind][]byte{}}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Get(ctx context.Context, kind Kind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet != nil {
		if err := s.FailGet(kind); err != nil {
			return nil, err
		}
	}
	data, ok := s.blobs[kind]
	if !ok {
		return nil, ErrNoBlob
	}
	return slices.Clone(data), nil
}

func (s *MemoryStore) Put(ctx context.Context, blobs map[Kind][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		if err := s.FailPut(blobs); err != nil {
			return err
		}
	}
	for kind, data := range blobs {
		s.blobs[kind] = slices.Clone(data)
	}
	s.puts++
	return nil
}

// Set seeds a raw blob, bypassing FailPut.
func (s *MemoryStore) Set(kind Kind, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[kind] = slices.Clone(data)
}

// Puts returns the number of successful Put batches.
func (s *MemoryStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// Dump returns a copy of every stored blob.
func (s *MemoryStore) Dump() map[Kind][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.blobs)
}

func (s *MemoryStore) GetConfigPath() string {
	return "memory"
}

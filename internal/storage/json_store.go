package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

type envelope struct {
	Version     int                      `json:"version"`
	Collections map[Kind]json.RawMessage `json:"collections"`
}

// JSONStore keeps every collection in one indented JSON file. Writes go to
// a temp file in the same directory and are renamed over the original.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("%w at %s", ErrAlreadyInitialized, s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(&envelope{Version: 1, Collections: map[Kind]json.RawMessage{}})
}

func (s *JSONStore) Load() error {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Get(ctx context.Context, kind Kind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := env.Collections[kind]
	if !ok {
		return nil, ErrNoBlob
	}
	// MarshalIndent re-indents raw blobs on write
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

func (s *JSONStore) Put(ctx context.Context, blobs map[Kind][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.read()
	if err != nil {
		return err
	}
	if env.Collections == nil {
		env.Collections = map[Kind]json.RawMessage{}
	}
	for kind, data := range blobs {
		if !json.Valid(data) {
			return fmt.Errorf("failed to serialize %s: invalid JSON", kind)
		}
		env.Collections[kind] = json.RawMessage(data)
	}
	return s.write(env)
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) read() (*envelope, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &envelope{Version: 1, Collections: map[Kind]json.RawMessage{}}, nil
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}
	env := &envelope{}
	if err := json.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("failed to parse storage: %w", err)
	}
	return env, nil
}

func (s *JSONStore) write(env *envelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set storage permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

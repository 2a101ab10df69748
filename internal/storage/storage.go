package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BackendType selects a Backend implementation.
type BackendType string

const (
	BackendJSON     BackendType = "json"
	BackendSQLite   BackendType = "sqlite"
	BackendPostgres BackendType = "postgres"
	BackendMemory   BackendType = "memory"
)

// Spec describes how to reach a backend. Location is a file path for the
// file-based backends and a connection string for postgres.
type Spec struct {
	Type     BackendType
	Location string
	Password string
}

// Open builds the backend for spec without touching the disk or network.
// Callers run Init or Load next.
func Open(spec Spec) (Backend, error) {
	switch spec.Type {
	case BackendJSON, "":
		path, err := ExpandPath(spec.Location)
		if err != nil {
			return nil, err
		}
		return NewJSONStore(path), nil
	case BackendSQLite:
		path, err := ExpandPath(spec.Location)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(path), nil
	case BackendPostgres:
		if _, err := ValidateConnString(spec.Location); err != nil {
			return nil, err
		}
		return NewPostgresStore(spec.Location, spec.Password), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", spec.Type)
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

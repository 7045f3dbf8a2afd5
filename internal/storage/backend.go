// Package storage provides the single-key persistence backends the timeline
// store writes through to. Each backend is a tiny key/value store; the
// timeline collection occupies one key and is overwritten wholesale.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a key/value store holding whole serialized values.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// Paths lists files whose modification signals a change to stored
	// values. It is empty for backends with nothing on disk.
	Paths() []string
	Close() error
}

// Supported backend drivers.
const (
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, cgo
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverFile    = "file"
	DriverMemory  = "memory"
)

// Drivers lists every supported driver name.
var Drivers = []string{DriverSQLite3, DriverSQLite, DriverFile, DriverMemory}

// Open creates a backend for driver rooted at path. For SQL drivers path is
// the database file; for the file driver it is a directory.
func Open(driver, path string) (Backend, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		return OpenSQL(driver, path)
	case DriverFile:
		return NewFileBackend(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q (valid: %v)", driver, Drivers)
	}
}

// DefaultPath returns the conventional location for a driver inside a
// workspace state directory.
func DefaultPath(driver, stateDir string) string {
	switch driver {
	case DriverFile:
		return filepath.Join(stateDir, "data")
	case DriverMemory:
		return ""
	default:
		return filepath.Join(stateDir, "timelines.db")
	}
}

// =============================================================================
// MEMORY
// =============================================================================

// Memory keeps values in a map. Useful for tests and throwaway sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Paths() []string { return nil }

func (m *Memory) Close() error { return nil }

// =============================================================================
// KEY BINDING
// =============================================================================

// KeyPersister binds a Backend to one key, giving the Load/Save shape the
// timeline store expects. A missing key loads as empty data.
type KeyPersister struct {
	Backend Backend
	Key     string
}

// Load reads the bound key.
func (p KeyPersister) Load() ([]byte, error) {
	data, err := p.Backend.Get(p.Key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// Save overwrites the bound key.
func (p KeyPersister) Save(data []byte) error {
	return p.Backend.Put(p.Key, data)
}

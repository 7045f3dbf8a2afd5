package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLBackend stores values in a single SQLite table. Both the cgo driver
// (sqlite3) and the pure Go driver (sqlite) are supported; they share the
// schema and the on-disk format.
type SQLBackend struct {
	db     *sql.DB
	driver string
	dbPath string
}

// OpenSQL opens or creates the database at dbPath with the named driver.
func OpenSQL(driver, dbPath string) (*SQLBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var dsn string
	switch driver {
	case DriverSQLite3:
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	case DriverSQLite:
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	default:
		return nil, fmt.Errorf("not a sql driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; the store is driven from a single goroutine anyway.
	db.SetMaxOpenConns(1)

	b := &SQLBackend{db: db, driver: driver, dbPath: dbPath}
	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return b, nil
}

func (b *SQLBackend) initSchema() error {
	_, err := b.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`)
	return err
}

// Driver returns the database/sql driver name in use.
func (b *SQLBackend) Driver() string {
	return b.driver
}

func (b *SQLBackend) Get(key string) ([]byte, error) {
	var value string
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return []byte(value), nil
}

func (b *SQLBackend) Put(key string, value []byte) error {
	_, err := b.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (b *SQLBackend) Delete(key string) error {
	if _, err := b.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Paths returns the database file and its write-ahead log.
func (b *SQLBackend) Paths() []string {
	return []string{b.dbPath, b.dbPath + "-wal"}
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}

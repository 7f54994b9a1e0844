// Package store persists chunk rows and their embeddings in a local
// SQLite database.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB manages the SQLite database connection
type DB struct {
	sqlDB *sql.DB
	path  string
}

// Create erases any existing database at path and opens a fresh one with
// the chunk schema applied. Prior contents are discarded: each build run
// starts from an empty store.
func Create(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Remove the database and its WAL sidecars from any previous run
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.sqlDB.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// Open opens an existing database without touching its contents.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	return open(path)
}

func open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode=WAL&_pragma=synchronous=NORMAL&_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single coordinating flow of control; no concurrent store access.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB: sqlDB, path: path}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// Stats returns row counts per table and the database file size.
func (db *DB) Stats() (*DBStats, error) {
	stats := &DBStats{}

	if err := db.sqlDB.QueryRow("SELECT COUNT(*) FROM discourse_chunks").Scan(&stats.DiscourseChunks); err != nil {
		return nil, fmt.Errorf("failed to count discourse chunks: %w", err)
	}
	if err := db.sqlDB.QueryRow("SELECT COUNT(*) FROM markdown_chunks").Scan(&stats.MarkdownChunks); err != nil {
		return nil, fmt.Errorf("failed to count markdown chunks: %w", err)
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = info.Size()
	}

	return stats, nil
}

// DBStats represents database statistics
type DBStats struct {
	DiscourseChunks int64
	MarkdownChunks  int64
	SizeBytes       int64
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mic/config"
)

var ErrRecordNotFound = errors.New("record not found")

// RecordStore keeps JSON documents for the record-backed tools in a sqlite
// database. Documents are grouped by collection and listed in the order
// they were first written.
type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(dataDir string) (*RecordStore, error) {
	return OpenRecordStore(filepath.Join(dataDir, "records.db"))
}

// OpenRecordStore opens the database at dsn. ":memory:" gives a private
// in-memory store.
func OpenRecordStore(dsn string) (*RecordStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to :memory: would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &RecordStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (rs *RecordStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		record_key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, record_key)
	);
	CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
	`
	_, err := rs.db.Exec(schema)
	return err
}

// Put stores value under collection/key. Overwriting a key keeps its
// original position in List.
func (rs *RecordStore) Put(ctx context.Context, collection, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("invalid JSON for %s/%s", collection, key)
	}
	query := `
	INSERT INTO records (collection, record_key, value)
	VALUES (?, ?, ?)
	ON CONFLICT(collection, record_key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := rs.db.ExecContext(ctx, query, collection, key, string(value)); err != nil {
		return fmt.Errorf("failed to store record %s/%s: %w", collection, key, err)
	}
	config.DebugLog.Debugf("[Storage] stored record %s/%s", collection, key)
	return nil
}

func (rs *RecordStore) Get(ctx context.Context, collection, key string) (json.RawMessage, error) {
	var value string
	err := rs.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE collection = ? AND record_key = ?`, collection, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return json.RawMessage(value), nil
}

func (rs *RecordStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := rs.db.QueryContext(ctx,
		`SELECT value FROM records WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var values []json.RawMessage
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		values = append(values, json.RawMessage(value))
	}
	return values, rows.Err()
}

// Delete removes collection/key. A missing record is ErrRecordNotFound.
func (rs *RecordStore) Delete(ctx context.Context, collection, key string) error {
	result, err := rs.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND record_key = ?`, collection, key)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, key)
	}
	return nil
}

// Collections returns the collection names holding at least one record.
func (rs *RecordStore) Collections(ctx context.Context) ([]string, error) {
	rows, err := rs.db.QueryContext(ctx, `SELECT DISTINCT collection FROM records ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (rs *RecordStore) Close() error {
	return rs.db.Close()
}

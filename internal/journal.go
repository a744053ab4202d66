package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS dropped_persists (
	id          TEXT PRIMARY KEY,
	recorded_at INTEGER NOT NULL,
	error       TEXT NOT NULL,
	messages    TEXT NOT NULL
)`

// Journal records conversations the sync agent failed to save, so they can
// be inspected and re-sent by hand. Nothing is retried automatically.
type Journal struct {
	db   *sql.DB
	path string
}

// JournalRecord is one failed persist
type JournalRecord struct {
	ID         string
	RecordedAt time.Time
	Error      string
	Entries    Conversation
}

// OpenJournal opens (and creates) the journal database at path
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, &JournalError{Path: path, Op: "open", Err: err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &JournalError{Path: path, Op: "open", Err: err}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &JournalError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	j, err := NewJournal(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	j.path = path
	return j, nil
}

// NewJournal uses an already open database, creating the schema if needed.
func NewJournal(db *sql.DB) (*Journal, error) {
	// single writer; also keeps ":memory:" databases on one connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(journalSchema); err != nil {
		return nil, &JournalError{Path: ":db:", Op: "open", Err: err}
	}
	return &Journal{db: db, path: ":db:"}, nil
}

// Path returns the database location
func (j *Journal) Path() string {
	return j.path
}

// Record stores a failed persist and returns its id.
func (j *Journal) Record(entries Conversation, cause error) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", &JournalError{Path: j.path, Op: "record", Err: err}
	}
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}

	id := uuid.NewString()
	_, err = j.db.Exec(
		"INSERT INTO dropped_persists (id, recorded_at, error, messages) VALUES (?, ?, ?, ?)",
		id, time.Now().UTC().UnixMilli(), reason, string(data),
	)
	if err != nil {
		return "", &JournalError{Path: j.path, Op: "record", Err: err}
	}
	return id, nil
}

// Pending lists every recorded failure, oldest first.
func (j *Journal) Pending(ctx context.Context) ([]JournalRecord, error) {
	rows, err := j.db.QueryContext(ctx, "SELECT id, recorded_at, error, messages FROM dropped_persists ORDER BY recorded_at, rowid")
	if err != nil {
		return nil, &JournalError{Path: j.path, Op: "read", Err: err}
	}
	defer rows.Close()

	var records []JournalRecord
	for rows.Next() {
		var (
			rec      JournalRecord
			millis   int64
			messages string
		)
		if err := rows.Scan(&rec.ID, &millis, &rec.Error, &messages); err != nil {
			return nil, &JournalError{Path: j.path, Op: "read", Err: fmt.Errorf("scan failed: %w", err)}
		}
		if err := json.Unmarshal([]byte(messages), &rec.Entries); err != nil {
			LogWarn("skipping unreadable journal record %s: %v", rec.ID, err)
			continue
		}
		rec.RecordedAt = time.UnixMilli(millis).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, &JournalError{Path: j.path, Op: "read", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return records, nil
}

// Delete removes a record.
func (j *Journal) Delete(ctx context.Context, id string) error {
	if _, err := j.db.ExecContext(ctx, "DELETE FROM dropped_persists WHERE id = ?", id); err != nil {
		return &JournalError{Path: j.path, Op: "delete", Err: err}
	}
	return nil
}

// Flush re-sends every record in order, deleting the delivered ones. It
// stops at the first failure and reports how many were delivered.
func (j *Journal) Flush(ctx context.Context, p Persister, credential string) (int, error) {
	records, err := j.Pending(ctx)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, rec := range records {
		if err := p.PersistConversation(ctx, rec.Entries, credential); err != nil {
			return delivered, fmt.Errorf("failed to re-send %s: %w", rec.ID, err)
		}
		if err := j.Delete(ctx, rec.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

// DropHook adapts the journal to the sync agent.
func (j *Journal) DropHook() DropFunc {
	return func(entries Conversation, err error) {
		id, recErr := j.Record(entries, err)
		if recErr != nil {
			LogError("failed to journal dropped conversation: %v", recErr)
			return
		}
		LogInfo("dropped conversation journaled as %s", id)
	}
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

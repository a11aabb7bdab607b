// Package sqlite provides the SQLite-backed mergelog.Repository.
//
// WAL mode keeps the log writable while the HTTP layer reads, and the table
// is append-only: each row is an immutable event in a merge's lifecycle.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/storefront/internal/cart/mergelog"

	// Pure-Go SQLite driver; no CGO needed.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cart_merge_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- One UUID per merge execution; multiple rows per merge.
    merge_id        TEXT        NOT NULL,

    status          TEXT        NOT NULL,

    -- Line-item step that just executed, e.g. "bump:prod-42".
    current_step    TEXT        NOT NULL DEFAULT '',

    -- JSON snapshot of the guest cart. Written once on STARTED.
    payload         TEXT,

    -- JSON array of per-line failure strings.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 TEXT; SQLite has no native datetime type.
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cart_merge_logs_merge_id ON cart_merge_logs(merge_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_cart_merge_logs_trace_id ON cart_merge_logs(trace_id);
`

// Repository is the SQLite implementation of mergelog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("mergelog: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mergelog: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends one log entry. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *mergelog.Entry) error {
	const q = `
		INSERT INTO cart_merge_logs
			(merge_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.MergeID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatRFC3339(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("mergelog: save entry for %q: %w", entry.MergeID, err)
	}
	return nil
}

// Latest returns the most recent entry for a merge id. Used to inspect how
// far an interrupted merge got.
func (r *Repository) Latest(ctx context.Context, mergeID string) (*mergelog.Entry, error) {
	const q = `
		SELECT merge_id, status, current_step, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   cart_merge_logs
		WHERE  merge_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, mergeID)

	var entry mergelog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.MergeID, &entry.Status, &entry.CurrentStep, &entry.Payload,
		&entry.ErrorMessages, &entry.TraceID, &entry.SpanID, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mergelog: merge %q not found", mergeID)
	}
	if err != nil {
		return nil, fmt.Errorf("mergelog: latest for %q: %w", mergeID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// nullableString maps "" to NULL so non-STARTED rows keep the payload
// column clean.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Package localstore is the client-local persistence layer: the guest cart
// snapshot and the access credential, the data a browser build keeps in
// localStorage.
//
// It is backed by SQLite in WAL mode so the gateway process can read and
// write concurrently without blocking. The store carries an explicit schema
// version; an unknown version is treated as empty state and recreated rather
// than migrated, since none of this data is authoritative.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// keeping Docker/Alpine builds simple.
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

-- One row per guest cart line. The product snapshot is denormalised into
-- the row so the cart renders without a catalog round-trip.
CREATE TABLE IF NOT EXISTS guest_cart (
    product_id     TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    price          REAL NOT NULL,
    category_id    TEXT NOT NULL DEFAULT '',
    category_name  TEXT NOT NULL DEFAULT '',
    image_url      TEXT NOT NULL DEFAULT '',
    quantity       INTEGER NOT NULL CHECK (quantity >= 1),
    added_at       TEXT NOT NULL
);

-- At most one credential row (id is always 1).
CREATE TABLE IF NOT EXISTS credentials (
    id            INTEGER PRIMARY KEY CHECK (id = 1),
    access_token  TEXT NOT NULL,
    user_id       TEXT NOT NULL DEFAULT '',
    saved_at      TEXT NOT NULL
);
`

// CartLine is one persisted guest cart line with its product snapshot.
type CartLine struct {
	ProductID    string
	Name         string
	Description  string
	Price        float64
	CategoryID   string
	CategoryName string
	ImageURL     string
	Quantity     int
	AddedAt      time.Time
}

// Credential is the persisted access token.
type Credential struct {
	AccessToken string
	UserID      string
	SavedAt     time.Time
}

// Store is the SQLite-backed local store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("localstore: open %q: %w", path, err)
	}

	// Single writer connection; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := prepare(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func prepare(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("localstore: apply schema: %w", err)
	}

	var version int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("localstore: record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("localstore: read schema version: %w", err)
	case version != schemaVersion:
		// Unknown layout: local state is disposable, start over.
		if _, err := db.Exec(`DELETE FROM guest_cart; DELETE FROM credentials; UPDATE schema_version SET version = ?`, schemaVersion); err != nil {
			return fmt.Errorf("localstore: reset stale schema v%d: %w", version, err)
		}
	}
	return nil
}

// CartLines returns every guest cart line, oldest first.
func (s *Store) CartLines(ctx context.Context) ([]CartLine, error) {
	const q = `
		SELECT product_id, name, description, price, category_id, category_name,
		       image_url, quantity, added_at
		FROM   guest_cart
		ORDER  BY added_at, product_id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("localstore: list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var line CartLine
		var addedAt string
		if err := rows.Scan(
			&line.ProductID, &line.Name, &line.Description, &line.Price,
			&line.CategoryID, &line.CategoryName, &line.ImageURL,
			&line.Quantity, &addedAt,
		); err != nil {
			return nil, fmt.Errorf("localstore: scan cart line: %w", err)
		}
		if line.AddedAt, err = parseRFC3339(addedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// UpsertCartLine inserts the line or replaces the existing one for the same
// product. Quantity must already be >= 1; removal is DeleteCartLine.
func (s *Store) UpsertCartLine(ctx context.Context, line CartLine) error {
	const q = `
		INSERT INTO guest_cart
			(product_id, name, description, price, category_id, category_name, image_url, quantity, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			category_id = excluded.category_id,
			category_name = excluded.category_name,
			image_url = excluded.image_url,
			quantity = excluded.quantity`

	added := line.AddedAt
	if added.IsZero() {
		added = time.Now()
	}
	_, err := s.db.ExecContext(ctx, q,
		line.ProductID, line.Name, line.Description, line.Price,
		line.CategoryID, line.CategoryName, line.ImageURL,
		line.Quantity, formatRFC3339(added),
	)
	if err != nil {
		return fmt.Errorf("localstore: upsert cart line %q: %w", line.ProductID, err)
	}
	return nil
}

// DeleteCartLine removes the line for productID; no-op when absent.
func (s *Store) DeleteCartLine(ctx context.Context, productID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM guest_cart WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("localstore: delete cart line %q: %w", productID, err)
	}
	return nil
}

// ClearCart removes every guest cart line.
func (s *Store) ClearCart(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM guest_cart`); err != nil {
		return fmt.Errorf("localstore: clear cart: %w", err)
	}
	return nil
}

// SaveCredential persists the access token, replacing any previous one.
func (s *Store) SaveCredential(ctx context.Context, cred Credential) error {
	const q = `
		INSERT INTO credentials (id, access_token, user_id, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			user_id = excluded.user_id,
			saved_at = excluded.saved_at`

	saved := cred.SavedAt
	if saved.IsZero() {
		saved = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, q, cred.AccessToken, cred.UserID, formatRFC3339(saved)); err != nil {
		return fmt.Errorf("localstore: save credential: %w", err)
	}
	return nil
}

// Credential returns the stored credential, or nil when none exists.
func (s *Store) Credential(ctx context.Context) (*Credential, error) {
	const q = `SELECT access_token, user_id, saved_at FROM credentials WHERE id = 1`

	var cred Credential
	var savedAt string
	err := s.db.QueryRowContext(ctx, q).Scan(&cred.AccessToken, &cred.UserID, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: read credential: %w", err)
	}
	if cred.SavedAt, err = parseRFC3339(savedAt); err != nil {
		return nil, err
	}
	return &cred, nil
}

// DeleteCredential removes the stored credential; no-op when absent.
func (s *Store) DeleteCredential(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("localstore: delete credential: %w", err)
	}
	return nil
}

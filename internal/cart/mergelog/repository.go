package mergelog

import "context"

// Repository is the port for persisting merge log entries. The cart manager
// depends on this abstraction, not on SQLite, so tests can use an in-memory
// implementation.
type Repository interface {
	// Save appends a new entry. The log is append-only; rows are never
	// updated.
	Save(ctx context.Context, entry *Entry) error
}

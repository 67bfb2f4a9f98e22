package interfaces

import (
	"context"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// ICacheStore is the optional durability substrate, keyed by symbol. Used for
// durability of history and snapshots only, never required for correctness.
// -----------------------------------------------------------------------------

type ICacheStore interface {

	// Get retrieves the raw value for a key, or an error when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Set stores a value under a key with the store's configured TTL.
	Set(ctx context.Context, key string, value []byte) error

	// -----------------------------------------------------------------------------

	// AppendList appends to a list key, trimming it to maxLen entries.
	AppendList(ctx context.Context, key string, value []byte, maxLen int) error

	// -----------------------------------------------------------------------------

	// Close releases the underlying connection.
	Close() error
}

// -----------------------------------------------------------------------------
// IArchive persists published snapshots for offline inspection.
// -----------------------------------------------------------------------------

type IArchive interface {

	// Initialize sets up the schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSnapshot inserts one published snapshot.
	SaveSnapshot(snap models.MSnapshot) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes rows older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}

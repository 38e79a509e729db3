package tokenstore

import "context"

// Store persists a single session token record.
type Store interface {
	// Save replaces the stored record.
	Save(ctx context.Context, rec Record) error
	// Load returns the stored record or ErrNotFound when there is none or it expired.
	Load(ctx context.Context) (Record, error)
	// Delete removes the stored record. Deleting a missing record is not an error.
	Delete(ctx context.Context) error
}

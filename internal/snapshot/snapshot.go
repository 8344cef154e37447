// Package snapshot is the process-local persistence substrate. Each
// store serializes its whole state into a named slot after every
// successful mutation and reads it back once at startup.
package snapshot

import "context"

// Slot names, one per store.
const (
	SlotIdentity = "identity"
	SlotBookings = "bookings"
	SlotSearch   = "catalog+search"
)

// SchemaVersion is embedded in every persisted state blob. A store
// that loads a blob with a different version starts empty instead of
// guessing at a migration.
const SchemaVersion = 1

// Repository loads and saves opaque state blobs. Load returns
// (nil, nil) when the slot has never been written.
type Repository interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
}

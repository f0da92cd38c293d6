package slot

import "context"

// Well-known slot names.
const (
	Cart       = "cart"
	Credential = "token"
)

// Repository stores named string slots per browser profile. It is the durable
// stand-in for browser local storage: one value per (profile, slot), last write wins.
type Repository interface {
	// Get returns domain.ErrNotFound when the slot is empty.
	Get(ctx context.Context, profileID, slot string) (string, error)
	Put(ctx context.Context, profileID, slot, value string) error
	// Delete is a no-op for empty slots.
	Delete(ctx context.Context, profileID, slot string) error
	Ping(ctx context.Context) error
}

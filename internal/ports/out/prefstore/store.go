package prefstore

import "context"

// Store is a small key-value persistence facility used to remember
// client-side preferences (such as the selected trip) across restarts.
// It is best-effort: callers log failures and move on.
type Store interface {
	// Get returns the stored value, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

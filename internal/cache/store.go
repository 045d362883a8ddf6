// Package cache implements the activity image cache: a time-boxed key/value
// store with a pluggable backend and a bounded-concurrency prefetcher.
package cache

import (
	"context"
	"time"
)

// Entry is one cached image URL with its write timestamp. Expiry is lazy:
// age is checked at read time against the configured TTL, never swept.
type Entry struct {
	URL      string    `json:"url"`
	StoredAt time.Time `json:"stored_at"`
}

// Store is the key/value backend for image cache entries.
type Store interface {
	// Get returns the entry for id and whether it was present.
	Get(ctx context.Context, id int) (Entry, bool, error)
	// Set writes the entry for id.
	Set(ctx context.Context, id int, e Entry) error
	// Clear drops all entries.
	Clear(ctx context.Context) error
}

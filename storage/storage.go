// Package storage defines the backend abstraction used by pcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation). An empty value is a legal entry;
// a miss is reported through the ok return, never as an empty slice.
//
// A Backend value is shared by every engine built on top of it and must be
// safe for concurrent use by multiple goroutines. File-backed implementations
// additionally keep their on-disk layout safe to share across independent
// OS processes.
package storage

import "context"

// Backend is a minimal persistent byte store with prefix-scoped invalidation.
// Entries live until flushed; there is no TTL and no eviction.
type Backend interface {
	// Contains reports whether key has an entry. Must not mutate state.
	Contains(ctx context.Context, key string) (bool, error)

	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any prior entry.
	Set(ctx context.Context, key string, value []byte) error

	// Flush removes a single entry. An absent key is not an error.
	Flush(ctx context.Context, key string) error

	// FlushAll removes every entry whose key starts with prefix and nothing
	// else colocated in the same medium. It enumerates the medium rather
	// than consulting any in-process bookkeeping, so entries written by
	// other processes are removed too. Entries written concurrently with
	// the enumeration may or may not survive.
	FlushAll(ctx context.Context, prefix string) error

	// Close releases resources. The Backend belongs to whoever constructed
	// it; engines sharing it never call Close.
	Close(ctx context.Context) error
}

package storage

import "time"

// Kind selects a backend implementation at setup time.
type Kind string

const (
	// KindFile is the on-disk backend: one file per key under Root,
	// advisory-lock mediated across processes.
	KindFile Kind = "file"

	// KindFileMemory is the file backend plus an in-process read-through
	// layer for hot keys. Disk stays the source of truth.
	KindFileMemory Kind = "filemem"

	// KindRedis is the remote backend, parameterized by URL.
	KindRedis Kind = "redis"
)

// Config parameterizes a backend at setup time. Exactly one of the file
// kinds' Root or the redis URL must be set, matching Kind.
// Open (in the root package) turns a Config into a live Backend.
type Config struct {
	Kind Kind

	// Root is the cache directory for KindFile and KindFileMemory.
	Root string

	// URL is the connection string for KindRedis,
	// e.g. "redis://localhost:6379/0".
	URL string

	// LockWait bounds file lock acquisition for the file kinds.
	// 0 means the backend default.
	LockWait time.Duration
}

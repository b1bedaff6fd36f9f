package storage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConnection marks a backend that could not be reached: a missing or
	// unreadable root directory, a refused TCP connection, a dead server.
	ErrConnection = errors.New("pcache: storage unreachable")

	// ErrWrite marks a persistence failure after the backend was reached
	// (disk full, permission denied, rejected server reply).
	ErrWrite = errors.New("pcache: storage write failed")

	// ErrLockTimeout marks a file lock that could not be acquired within
	// the configured bound.
	ErrLockTimeout = errors.New("pcache: lock timeout")
)

// LockTimeoutError carries the contended path and the wait that expired.
// It matches ErrLockTimeout under errors.Is.
type LockTimeoutError struct {
	Path string
	Wait time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("lock on %q not acquired within %v", e.Path, e.Wait)
}

func (e *LockTimeoutError) Unwrap() error { return ErrLockTimeout }

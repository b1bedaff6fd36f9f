// Package file implements the on-disk storage backend: one regular file per
// cache key inside a root directory, shared across processes and mediated by
// OS advisory locks.
//
// Writers replace entries atomically (write to a temp file under an exclusive
// lock, then rename), so readers never observe a torn payload even if a
// writer dies mid-write. Locks are tied to file descriptors, not marker
// files, so a crashed process releases them automatically.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unkn0wn-root/pcache/internal/fsname"
	"github.com/unkn0wn-root/pcache/storage"
)

const (
	DefaultLockWait   = 5 * time.Second
	DefaultRetryDelay = 25 * time.Millisecond

	lockSuffix = ".lock"
	tmpPattern = ".tmp-*"
)

// Config tunes the file backend. Only Root is required.
type Config struct {
	// Root is the cache directory. Created (with parents) if missing.
	Root string

	// LockWait bounds every lock acquisition; expiry surfaces as
	// storage.ErrLockTimeout. 0 => DefaultLockWait.
	LockWait time.Duration

	// RetryDelay is the polling interval while a lock is contended.
	// 0 => DefaultRetryDelay.
	RetryDelay time.Duration

	DirMode  fs.FileMode // 0 => 0o755
	FileMode fs.FileMode // 0 => 0o644
}

// Storage is the file-backed storage handle. Safe for concurrent use from
// multiple goroutines; the on-disk layout is safe across processes.
type Storage struct {
	root       string
	lockWait   time.Duration
	retryDelay time.Duration
	fileMode   fs.FileMode

	newLock func(path string, retry time.Duration) locker
}

var _ storage.Backend = (*Storage)(nil)

// New creates Root if needed and returns the handle.
func New(cfg Config) (*Storage, error) {
	if cfg.Root == "" {
		return nil, errors.New("file storage: root directory is required")
	}
	dirMode := cfg.DirMode
	if dirMode == 0 {
		dirMode = 0o755
	}
	if err := os.MkdirAll(cfg.Root, dirMode); err != nil {
		return nil, fmt.Errorf("create root %q: %w: %w", cfg.Root, storage.ErrConnection, err)
	}
	s := &Storage{
		root:       cfg.Root,
		lockWait:   cfg.LockWait,
		retryDelay: cfg.RetryDelay,
		fileMode:   cfg.FileMode,
		newLock:    newFlockLocker,
	}
	if s.lockWait <= 0 {
		s.lockWait = DefaultLockWait
	}
	if s.retryDelay <= 0 {
		s.retryDelay = DefaultRetryDelay
	}
	if s.fileMode == 0 {
		s.fileMode = 0o644
	}
	return s, nil
}

func (s *Storage) dataPath(key string) string {
	return filepath.Join(s.root, fsname.Encode(key))
}

// acquire takes the advisory lock guarding path within the configured bound.
// The caller must release the returned locker on every exit path.
func (s *Storage) acquire(ctx context.Context, path string, exclusive bool) (locker, error) {
	lockPath := path + lockSuffix
	l := s.newLock(lockPath, s.retryDelay)

	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = l.exclusive(ctx)
	} else {
		ok, err = l.shared(ctx)
	}
	if ok {
		return l, nil
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return nil, &storage.LockTimeoutError{Path: lockPath, Wait: s.lockWait}
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	return nil, fmt.Errorf("lock %q: %w: %w", lockPath, storage.ErrConnection, err)
}

// Contains stats the data file. No lock: taking one on an absent key would
// materialize its lock file, and a probe must not mutate state.
func (s *Storage) Contains(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.dataPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %q: %w: %w", key, storage.ErrConnection, err)
}

// Get returns the entry bytes under a shared lock, so a concurrent Set on the
// same key is never observed half-written.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.dataPath(key)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat %q: %w: %w", key, storage.ErrConnection, err)
	}

	l, err := s.acquire(ctx, path, false)
	if err != nil {
		return nil, false, err
	}
	defer l.release()

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// flushed between the stat and the lock
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w: %w", key, storage.ErrConnection, err)
	}
	return b, true, nil
}

// Set persists value atomically: exclusive lock, full write to a temp file in
// the same directory, rename over the data file. A concurrent FlushAll sweeps
// temp files without taking locks and can remove ours between write and
// rename; that surfaces as ENOENT, and one more write lands after the sweep's
// directory listing.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	path := s.dataPath(key)
	l, err := s.acquire(ctx, path, true)
	if err != nil {
		return err
	}
	defer l.release()

	err = s.writeEntry(path, value)
	for attempts := 0; err != nil && os.IsNotExist(err) && attempts < 2; attempts++ {
		err = s.writeEntry(path, value)
	}
	if err != nil {
		return fmt.Errorf("set %q: %w: %w", key, storage.ErrWrite, err)
	}
	return nil
}

func (s *Storage) writeEntry(path string, value []byte) error {
	tmp, err := os.CreateTemp(s.root, filepath.Base(path)+tmpPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, s.fileMode); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Flush removes the entry. The lock file stays; removing it while another
// process holds or is about to take it reintroduces the stale-marker races
// advisory locks exist to avoid. FlushAll sweeps lock files.
func (s *Storage) Flush(ctx context.Context, key string) error {
	path := s.dataPath(key)
	l, err := s.acquire(ctx, path, true)
	if err != nil {
		return err
	}
	defer l.release()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("flush %q: %w: %w", key, storage.ErrWrite, err)
	}
	return nil
}

// FlushAll removes every entry whose key starts with prefix, plus the .lock
// and .tmp side files those entries left behind. Because fsname encodes
// per-byte, filtering directory names by Encode(prefix) is exactly filtering
// keys by prefix. Files appearing or vanishing mid-scan are tolerated;
// completeness is eventual, not point-in-time.
func (s *Storage) FlushAll(_ context.Context, prefix string) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("list %q: %w: %w", s.root, storage.ErrConnection, err)
	}
	encPrefix := fsname.Encode(prefix)
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), encPrefix) {
			continue
		}
		err := os.Remove(filepath.Join(s.root, e.Name()))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("flush all %q: %w: %w", prefix, storage.ErrWrite, err)
		}
	}
	return nil
}

// Close is a no-op; the handle holds no descriptors between calls.
func (s *Storage) Close(context.Context) error { return nil }

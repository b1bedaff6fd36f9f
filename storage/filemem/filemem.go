// Package filemem layers an in-process read-through cache over a persistent
// backend, typically the file backend. Disk is always the source of truth:
// every write lands there first, and the hot layer only ever holds bytes the
// disk served. Losing or evicting a layer entry costs one extra disk read,
// never correctness.
package filemem

import (
	"context"
	"errors"

	"github.com/unkn0wn-root/pcache/storage"
)

// Layer is the in-process hot cache. Implementations may drop entries at any
// time (eviction, admission rejection); the backend treats every Layer answer
// as a hint backed by disk. Must be safe for concurrent use.
type Layer interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
	Reset()
	Close() error
}

// Config wires the layered backend. Only Disk is required.
type Config struct {
	// Disk is the persistent backend underneath, usually file.Storage.
	// The layered backend owns it from here on; Close closes both.
	Disk storage.Backend

	// Layer holds hot entries in-process. nil => NewMapLayer().
	Layer Layer
}

type Storage struct {
	disk storage.Backend
	hot  Layer
}

var _ storage.Backend = (*Storage)(nil)

func New(cfg Config) (*Storage, error) {
	if cfg.Disk == nil {
		return nil, errors.New("filemem storage: disk backend is required")
	}
	hot := cfg.Layer
	if hot == nil {
		hot = NewMapLayer()
	}
	return &Storage{disk: cfg.Disk, hot: hot}, nil
}

func (s *Storage) Contains(ctx context.Context, key string) (bool, error) {
	if _, ok := s.hot.Get(key); ok {
		return true, nil
	}
	return s.disk.Contains(ctx, key)
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok := s.hot.Get(key); ok {
		return b, true, nil
	}
	b, ok, err := s.disk.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	s.hot.Set(key, b)
	return b, true, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.disk.Set(ctx, key, value); err != nil {
		return err
	}
	s.hot.Set(key, value)
	return nil
}

func (s *Storage) Flush(ctx context.Context, key string) error {
	if err := s.disk.Flush(ctx, key); err != nil {
		return err
	}
	s.hot.Del(key)
	return nil
}

// FlushAll drops the whole hot layer rather than filtering it by prefix.
// Over-invalidation is safe; the next Get refills from disk.
func (s *Storage) FlushAll(ctx context.Context, prefix string) error {
	if err := s.disk.FlushAll(ctx, prefix); err != nil {
		return err
	}
	s.hot.Reset()
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	herr := s.hot.Close()
	derr := s.disk.Close(ctx)
	if derr != nil {
		return derr
	}
	return herr
}

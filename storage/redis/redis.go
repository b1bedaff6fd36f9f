// Package redis implements the remote storage backend over a Redis-protocol
// key-value store. One request per operation; mutual exclusion is the
// server's, single-key atomicity is all the backend assumes. No retries:
// blind retries at the cache layer mask a dead store, so failures surface as
// typed errors and retry policy stays with the caller.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/pcache/storage"
)

var ErrNilClient = errors.New("redis storage: nil client")

// scanCount is the per-round hint for FlushAll key enumeration.
const scanCount = 256

type Storage struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ storage.Backend = (*Storage)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this backend exclusively owns the client
}

func New(cfg Config) (*Storage, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Storage{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Open connects from a connection string, e.g. "redis://localhost:6379/0".
// It pings so an unreachable store fails at setup, not on the first lookup.
func Open(ctx context.Context, connstring string) (*Storage, error) {
	opt, err := goredis.ParseURL(connstring)
	if err != nil {
		return nil, fmt.Errorf("redis storage: parse %q: %w", connstring, err)
	}
	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w: %w", opt.Addr, storage.ErrConnection, err)
	}
	return &Storage{rdb: client, closeClient: true}, nil
}

func (p *Storage) Contains(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %q: %w: %w", key, storage.ErrConnection, err)
	}
	return n > 0, nil
}

func (p *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w: %w", key, storage.ErrConnection, err)
	}
	return b, true, nil
}

// Set stores value with no expiry; entries live until flushed.
func (p *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := p.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		// a server reply means the store was reached but refused the write
		var rerr goredis.Error
		if errors.As(err, &rerr) {
			return fmt.Errorf("set %q: %w: %w", key, storage.ErrWrite, err)
		}
		return fmt.Errorf("set %q: %w: %w", key, storage.ErrConnection, err)
	}
	return nil
}

func (p *Storage) Flush(ctx context.Context, key string) error {
	if err := p.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %q: %w: %w", key, storage.ErrConnection, err)
	}
	return nil
}

// FlushAll enumerates server-side with cursor SCAN restricted to prefix*,
// then deletes in batches once the cursor closes. Deleting mid-scan shifts
// the keyspace under the cursor and lets it skip keys, so the two phases
// stay separate. Never a client-side keyspace download, and keys outside
// the prefix are untouched. Keys written mid-scan may survive.
func (p *Storage) FlushAll(ctx context.Context, prefix string) error {
	match := globEscape(prefix) + "*"
	var keys []string
	var cursor uint64
	for {
		batch, next, err := p.rdb.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return fmt.Errorf("scan %q: %w: %w", match, storage.ErrConnection, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	for len(keys) > 0 {
		n := len(keys)
		if n > scanCount {
			n = scanCount
		}
		if err := p.rdb.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("del batch: %w: %w", storage.ErrConnection, err)
		}
		keys = keys[n:]
	}
	return nil
}

// Close releases the underlying client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Storage) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// globEscape neutralizes MATCH metacharacters so the prefix is matched
// literally.
func globEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

package pcache

import (
	"context"

	c "github.com/unkn0wn-root/pcache/codec"
	st "github.com/unkn0wn-root/pcache/storage"
)

// Cache is the typed memoization engine over a storage backend.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	// LookupOr returns the entry under key; on a miss it runs compute,
	// persists the encoded result and returns it. This is the only place
	// miss and compute meet: a compute error propagates unchanged and
	// nothing is persisted for it.
	LookupOr(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error)

	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Put(ctx context.Context, key string, value V) error // forced recompute path
	Contains(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error // every entry under this engine's prefix

	// Key derives the storage key for one call of identity with args,
	// scoped by this engine's prefix.
	Key(identity string, args ...any) (string, error)
	Prefix() string
}

// Options tune the generic engine.
// Only Storage is required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Storage st.Backend

	Codec  c.Codec[V] // nil => codec.Msgpack[V]
	Prefix string     // namespace for derived keys and FlushAll; "" => DefaultPrefix
	Logger Logger     // if nil, NopLogger is used
	Hooks  Hooks      // if nil, NopHooks is used
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newEngine[V](opts)
}

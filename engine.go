package pcache

import (
	"context"
	"fmt"

	c "github.com/unkn0wn-root/pcache/codec"
	st "github.com/unkn0wn-root/pcache/storage"
)

type engine[V any] struct {
	store  st.Backend
	codec  c.Codec[V]
	prefix string
	log    Logger
	hooks  Hooks
}

func newEngine[V any](opts Options[V]) (*engine[V], error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("pcache: storage backend is required")
	}

	e := &engine[V]{
		store: opts.Storage,
		codec: opts.Codec,
	}
	if e.codec == nil {
		e.codec = c.Msgpack[V]{}
	}

	// defaults
	e.prefix = coalesce(opts.Prefix, DefaultPrefix)
	e.log = coalesce[Logger](opts.Logger, NopLogger{})
	e.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	return e, nil
}

func (e *engine[V]) Prefix() string { return e.prefix }

func (e *engine[V]) Key(identity string, args ...any) (string, error) {
	return Key(e.prefix, identity, args...)
}

func (e *engine[V]) LookupOr(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	var zero V
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		v, derr := e.codec.Decode(raw)
		if derr != nil {
			return zero, fmt.Errorf("%w: key %q: %v", ErrDeserialize, key, derr)
		}
		e.hooks.Hit(key)
		e.log.Debug("hit", Fields{"key": key})
		return v, nil
	}

	e.hooks.Miss(key)
	e.log.Debug("miss, computing", Fields{"key": key})
	v, err := compute(ctx)
	if err != nil {
		// the caller's error, not ours; nothing is persisted for it
		return zero, err
	}
	if err := e.Put(ctx, key, v); err != nil {
		// a broken store must surface, never degrade to recompute-always
		return zero, err
	}
	return v, nil
}

func (e *engine[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, derr := e.codec.Decode(raw)
	if derr != nil {
		return zero, false, fmt.Errorf("%w: key %q: %v", ErrDeserialize, key, derr)
	}
	e.hooks.Hit(key)
	return v, true, nil
}

func (e *engine[V]) Put(ctx context.Context, key string, value V) error {
	raw, err := e.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrSerialize, key, err)
	}
	if err := e.store.Set(ctx, key, raw); err != nil {
		return err
	}
	e.hooks.Store(key)
	e.log.Debug("stored", Fields{"key": key, "bytes": len(raw)})
	return nil
}

func (e *engine[V]) Contains(ctx context.Context, key string) (bool, error) {
	return e.store.Contains(ctx, key)
}

func (e *engine[V]) Flush(ctx context.Context, key string) error {
	if err := e.store.Flush(ctx, key); err != nil {
		return err
	}
	e.hooks.Flush(key)
	e.log.Debug("flushed", Fields{"key": key})
	return nil
}

// FlushAll scopes removal to this engine's prefix plus the separator, so an
// engine on prefix "p" never touches entries of an engine on prefix "p2".
func (e *engine[V]) FlushAll(ctx context.Context) error {
	if err := e.store.FlushAll(ctx, e.prefix+keySep); err != nil {
		return err
	}
	e.hooks.FlushAll(e.prefix)
	e.log.Debug("flushed all", Fields{"prefix": e.prefix})
	return nil
}

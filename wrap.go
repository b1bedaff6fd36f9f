package pcache

import "context"

// Wrap returns a memoized version of fn: every call derives a key from
// identity and the argument, then runs LookupOr on c. The first call per
// distinct argument computes and persists; later calls, from any process
// sharing the backend, are served from the store.
//
// Wrap takes a single argument; call sites with more parameters pass a
// struct (field order is part of the key) or use LookupOr directly.
// An argument type the key deriver cannot encode surfaces as ErrSerialize
// from the first call.
func Wrap[K, V any](c Cache[V], identity string, fn func(context.Context, K) (V, error)) func(context.Context, K) (V, error) {
	return func(ctx context.Context, arg K) (V, error) {
		key, err := c.Key(identity, arg)
		if err != nil {
			var zero V
			return zero, err
		}
		return c.LookupOr(ctx, key, func(ctx context.Context) (V, error) {
			return fn(ctx, arg)
		})
	}
}

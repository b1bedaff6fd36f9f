// Package pcache implements transparent, cross-process memoization: a
// function's result is computed once per distinct input and reused by any
// process that later asks for the same input, for as long as the entry lives
// in a shared persistent store.
//
// Components:
//   - storage.Backend: persistent byte store (file-backed with advisory
//     locks, file+memory read-through, or Redis).
//   - Codec[V]: (de)serializes V <-> []byte. Msgpack by default.
//   - Key deriver: prefix + function identity + deterministic argument
//     digest, stable across processes and restarts.
//
// Keys:
//
//	<prefix>::<identity>::<sha256 of args>
//
// The prefix is the sole flush scope: FlushAll removes exactly the entries
// carrying it and nothing else colocated in the same medium. There is no TTL
// and no eviction; entries live until flushed.
//
// Memoizing a function:
//
//	backend, _ := pcache.Open(ctx, storage.Config{Kind: storage.KindFile, Root: dir})
//	cache, _ := pcache.New[uint64](pcache.Options[uint64]{Storage: backend})
//	addTwo := pcache.Wrap(cache, "add_two", func(_ context.Context, a uint64) (uint64, error) {
//	    return a + 2, nil
//	})
//	v, _ := addTwo(ctx, 2) // computed
//	v, _ = addTwo(ctx, 2)  // served from the store, any process
//
// The engine is synchronous and owns no goroutines; concurrency comes from
// the callers, and cross-process consistency from the backend's locking.
package pcache

package pcache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	c "github.com/unkn0wn-root/pcache/codec"
	st "github.com/unkn0wn-root/pcache/storage"
)

type memBackend struct {
	mu     sync.Mutex
	m      map[string][]byte
	setErr error // when non-nil, Set fails with it
}

var _ st.Backend = (*memBackend)(nil)

func newMemBackend() *memBackend { return &memBackend{m: make(map[string][]byte)} }

func (b *memBackend) Contains(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.m[key]
	return ok, nil
}

func (b *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

func (b *memBackend) Set(_ context.Context, key string, value []byte) error {
	if b.setErr != nil {
		return b.setErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *memBackend) Flush(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

func (b *memBackend) FlushAll(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := range b.m {
		if strings.HasPrefix(k, prefix) {
			delete(b.m, k)
		}
	}
	return nil
}

func (b *memBackend) Close(context.Context) error { return nil }

type result struct {
	ID  string `json:"id"`
	Sum int    `json:"sum"`
}

func newTestCache(t *testing.T, prefix string, b st.Backend, optsOpt func(*Options[result])) Cache[result] {
	t.Helper()
	opts := Options[result]{
		Storage: b,
		Codec:   c.JSON[result]{},
		Prefix:  prefix,
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[result](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

// ==============================
// Construction
// ==============================

func TestNewRequiresStorage(t *testing.T) {
	if _, err := New[result](Options[result]{}); err == nil {
		t.Fatalf("New without storage should fail")
	}
}

func TestNewDefaultsPrefix(t *testing.T) {
	cc := newTestCache(t, "", newMemBackend(), nil)
	if cc.Prefix() != DefaultPrefix {
		t.Fatalf("default prefix: got %q want %q", cc.Prefix(), DefaultPrefix)
	}
}

// ==============================
// LookupOr (miss-then-hit)
// ==============================

// TestLookupOrMissThenHit verifies compute runs exactly once and later
// lookups are served from the store, whatever closure they carry.
func TestLookupOrMissThenHit(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "p", newMemBackend(), nil)

	key, err := cc.Key("add", 3)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}

	calls := 0
	v, err := cc.LookupOr(ctx, key, func(context.Context) (result, error) {
		calls++
		return result{ID: "3", Sum: 5}, nil
	})
	if err != nil {
		t.Fatalf("LookupOr: %v", err)
	}
	if calls != 1 || v.Sum != 5 {
		t.Fatalf("first lookup: calls=%d v=%+v", calls, v)
	}

	// Any other compute must never run; the stored result wins.
	v2, err := cc.LookupOr(ctx, key, func(context.Context) (result, error) {
		return result{Sum: 999}, nil
	})
	if err != nil {
		t.Fatalf("second LookupOr: %v", err)
	}
	if v2.Sum != 5 {
		t.Fatalf("second lookup should hit, got %+v", v2)
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

// TestLookupOrComputeErrorNotPersisted verifies a failing compute propagates
// unchanged and leaves no entry behind.
func TestLookupOrComputeErrorNotPersisted(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	cc := newTestCache(t, "p", b, nil)

	boom := errors.New("boom")
	_, err := cc.LookupOr(ctx, "p::fail::1", func(context.Context) (result, error) {
		return result{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("compute error should propagate unchanged, got %v", err)
	}
	if ok, _ := cc.Contains(ctx, "p::fail::1"); ok {
		t.Fatalf("failed compute must not persist an entry")
	}
}

// TestLookupOrSetFailureSurfaces verifies a broken store is never papered
// over with the freshly computed value.
func TestLookupOrSetFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	b.setErr = errors.New("disk full")
	cc := newTestCache(t, "p", b, nil)

	_, err := cc.LookupOr(ctx, "p::k::1", func(context.Context) (result, error) {
		return result{Sum: 1}, nil
	})
	if !errors.Is(err, b.setErr) {
		t.Fatalf("Set failure should surface, got %v", err)
	}
}

// TestLookupOrCorruptEntrySurfaces verifies a decodable-but-broken payload
// surfaces as ErrDeserialize and the entry is left in place.
func TestLookupOrCorruptEntrySurfaces(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	cc := newTestCache(t, "p", b, nil)

	b.m["p::bad::1"] = []byte("{not json")
	_, err := cc.LookupOr(ctx, "p::bad::1", func(context.Context) (result, error) {
		t.Fatalf("compute must not run on a corrupt hit")
		return result{}, nil
	})
	if !errors.Is(err, ErrDeserialize) {
		t.Fatalf("want ErrDeserialize, got %v", err)
	}
	if _, ok := b.m["p::bad::1"]; !ok {
		t.Fatalf("corrupt entry must not be self-deleted")
	}
}

// ==============================
// Put / Get / Flush
// ==============================

func TestPutGetFlush(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "p", newMemBackend(), nil)

	k := "p::add::2"
	v := result{ID: "2", Sum: 4}

	if _, ok, err := cc.Get(ctx, k); err != nil || ok {
		t.Fatalf("fresh key should miss: ok=%v err=%v", ok, err)
	}
	if err := cc.Put(ctx, k, v); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// overwrite is idempotent
	if err := cc.Put(ctx, k, v); err != nil {
		t.Fatalf("Put again: %v", err)
	}
	got, ok, err := cc.Get(ctx, k)
	if err != nil || !ok || got != v {
		t.Fatalf("Get after Put: ok=%v err=%v got=%+v", ok, err, got)
	}

	// flushing an absent key is not an error
	if err := cc.Flush(ctx, "p::never::1"); err != nil {
		t.Fatalf("Flush absent: %v", err)
	}
	if err := cc.Flush(ctx, k); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if ok, _ := cc.Contains(ctx, k); ok {
		t.Fatalf("Contains after Flush should be false")
	}
	if _, ok, _ := cc.Get(ctx, k); ok {
		t.Fatalf("Get after Flush should miss")
	}
}

// ==============================
// FlushAll prefix isolation
// ==============================

func TestFlushAllPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	c1 := newTestCache(t, "p", b, nil)
	c2 := newTestCache(t, "p2", b, nil)

	k1, _ := c1.Key("f", 1)
	k2, _ := c2.Key("f", 1)
	if err := c1.Put(ctx, k1, result{Sum: 1}); err != nil {
		t.Fatalf("Put c1: %v", err)
	}
	if err := c2.Put(ctx, k2, result{Sum: 2}); err != nil {
		t.Fatalf("Put c2: %v", err)
	}

	if err := c1.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	if ok, _ := c1.Contains(ctx, k1); ok {
		t.Fatalf("own entry should be gone")
	}
	// "p2::" does not start with "p::"
	if ok, _ := c2.Contains(ctx, k2); !ok {
		t.Fatalf("foreign prefix entry must survive")
	}
}

// ==============================
// Hooks
// ==============================

type recordHooks struct {
	NopHooks
	hits, misses, stores int
}

func (h *recordHooks) Hit(string)   { h.hits++ }
func (h *recordHooks) Miss(string)  { h.misses++ }
func (h *recordHooks) Store(string) { h.stores++ }

func TestHooksFire(t *testing.T) {
	ctx := context.Background()
	h := &recordHooks{}
	cc := newTestCache(t, "p", newMemBackend(), func(o *Options[result]) { o.Hooks = h })

	k := "p::h::1"
	if _, err := cc.LookupOr(ctx, k, func(context.Context) (result, error) {
		return result{Sum: 7}, nil
	}); err != nil {
		t.Fatalf("LookupOr: %v", err)
	}
	if _, err := cc.LookupOr(ctx, k, func(context.Context) (result, error) {
		return result{}, nil
	}); err != nil {
		t.Fatalf("LookupOr hit: %v", err)
	}
	if h.misses != 1 || h.stores != 1 || h.hits != 1 {
		t.Fatalf("hooks: hits=%d misses=%d stores=%d", h.hits, h.misses, h.stores)
	}
}

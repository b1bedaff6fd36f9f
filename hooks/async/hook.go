// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/pcache"
//	"github.com/unkn0wn-root/pcache/codec"
//	asynchook "github.com/unkn0wn-root/pcache/hooks/async"
//	"github.com/unkn0wn-root/pcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 1,   // log every miss
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := pcache.New[Result](pcache.Options[Result]{
//	    Storage: backend,
//	    Codec:   codec.JSON[Result]{},
//	    Prefix:  "app:prod",
//	    Hooks:   hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/pcache"
)

type Hooks struct {
	inner pcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ pcache.Hooks = (*Hooks)(nil)

func New(inner pcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)        { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)       { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) Store(k string)      { h.try(func() { h.inner.Store(k) }) }
func (h *Hooks) Flush(k string)      { h.try(func() { h.inner.Flush(k) }) }
func (h *Hooks) FlushAll(pfx string) { h.try(func() { h.inner.FlushAll(pfx) }) }

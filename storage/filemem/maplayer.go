package filemem

import (
	"bytes"
	"sync"
)

// mapLayer is the default hot layer: a mutex-guarded map with no eviction.
// Suitable when the working set of hot keys is modest; use the bigcache or
// ristretto layers for bounded memory.
type mapLayer struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ Layer = (*mapLayer)(nil)

func NewMapLayer() Layer {
	return &mapLayer{m: make(map[string][]byte)}
}

func (l *mapLayer) Get(key string) ([]byte, bool) {
	l.mu.RLock()
	b, ok := l.m[key]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return bytes.Clone(b), true
}

func (l *mapLayer) Set(key string, value []byte) {
	b := bytes.Clone(value)
	l.mu.Lock()
	l.m[key] = b
	l.mu.Unlock()
}

func (l *mapLayer) Del(key string) {
	l.mu.Lock()
	delete(l.m, key)
	l.mu.Unlock()
}

func (l *mapLayer) Reset() {
	l.mu.Lock()
	l.m = make(map[string][]byte)
	l.mu.Unlock()
}

func (l *mapLayer) Close() error { return nil }

package filemem

import (
	"bytes"

	rc "github.com/dgraph-io/ristretto"
)

// RistrettoConfig tunes the ristretto-backed hot layer. Cost is byte length,
// so MaxCost is roughly the memory budget for hot payloads.
type RistrettoConfig struct {
	NumCounters int64 // 0 => 100_000
	MaxCost     int64 // 0 => 64 MiB
	BufferItems int64 // 0 => 64
}

type ristrettoLayer struct {
	c *rc.Cache
}

var _ Layer = (*ristrettoLayer)(nil)

// NewRistrettoLayer returns an admission-controlled hot layer. Ristretto may
// decline to admit an entry; that is fine here, the next Get reads disk.
func NewRistrettoLayer(cfg RistrettoConfig) (Layer, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 100_000
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 64 << 20
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoLayer{c: c}, nil
}

func (l *ristrettoLayer) Get(key string) ([]byte, bool) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		l.c.Del(key)
		return nil, false
	}
	return b, true
}

func (l *ristrettoLayer) Set(key string, value []byte) {
	// admission rejection is silent; disk has the entry
	_ = l.c.Set(key, bytes.Clone(value), int64(len(value)))
}

func (l *ristrettoLayer) Del(key string) { l.c.Del(key) }
func (l *ristrettoLayer) Reset()         { l.c.Clear() }

func (l *ristrettoLayer) Close() error {
	l.c.Close()
	return nil
}

package filemem

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"
)

// BigCacheConfig tunes the bigcache-backed hot layer.
type BigCacheConfig struct {
	LifeWindow         time.Duration // hot-entry lifetime; 0 => 10m
	CleanWindow        time.Duration
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

type bigcacheLayer struct {
	c *bc.BigCache
}

var _ Layer = (*bigcacheLayer)(nil)

// NewBigCacheLayer returns a hot layer with bounded memory and time-based
// expiry. Expiry only drops the hot copy; the disk entry stays.
func NewBigCacheLayer(cfg BigCacheConfig) (Layer, error) {
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = 10 * time.Minute
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &bigcacheLayer{c: c}, nil
}

func (l *bigcacheLayer) Get(key string) ([]byte, bool) {
	b, err := l.c.Get(key)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set and Del ignore errors; the layer is an optimization, disk has the entry.
func (l *bigcacheLayer) Set(key string, value []byte) { _ = l.c.Set(key, value) }
func (l *bigcacheLayer) Del(key string)               { _ = l.c.Delete(key) }
func (l *bigcacheLayer) Reset()                       { _ = l.c.Reset() }
func (l *bigcacheLayer) Close() error                 { return l.c.Close() }

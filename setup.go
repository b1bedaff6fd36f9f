package pcache

import (
	"context"
	"fmt"

	st "github.com/unkn0wn-root/pcache/storage"
	"github.com/unkn0wn-root/pcache/storage/file"
	"github.com/unkn0wn-root/pcache/storage/filemem"
	"github.com/unkn0wn-root/pcache/storage/redis"
)

// Open builds a live backend from a setup-time Config. The caller owns the
// returned backend and is responsible for Close; any number of engines may
// share it.
func Open(ctx context.Context, cfg st.Config) (st.Backend, error) {
	switch cfg.Kind {
	case st.KindFile:
		return file.New(file.Config{Root: cfg.Root, LockWait: cfg.LockWait})
	case st.KindFileMemory:
		disk, err := file.New(file.Config{Root: cfg.Root, LockWait: cfg.LockWait})
		if err != nil {
			return nil, err
		}
		return filemem.New(filemem.Config{Disk: disk})
	case st.KindRedis:
		return redis.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("pcache: unknown storage kind %q", cfg.Kind)
	}
}

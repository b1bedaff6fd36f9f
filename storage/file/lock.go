package file

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// locker is the advisory-lock capability the backend relies on. Acquisition
// reports (acquired, err); err is the context error when the bound expired.
// Production locks are flock(2)/LockFileEx via gofrs/flock, tied to the file
// descriptor so a dead process drops its locks without cleanup.
type locker interface {
	shared(ctx context.Context) (bool, error)
	exclusive(ctx context.Context) (bool, error)
	release() error
}

type flockLocker struct {
	fl    *flock.Flock
	retry time.Duration
}

var _ locker = (*flockLocker)(nil)

func newFlockLocker(path string, retry time.Duration) locker {
	return &flockLocker{fl: flock.New(path), retry: retry}
}

func (l *flockLocker) shared(ctx context.Context) (bool, error) {
	return l.fl.TryRLockContext(ctx, l.retry)
}

func (l *flockLocker) exclusive(ctx context.Context) (bool, error) {
	return l.fl.TryLockContext(ctx, l.retry)
}

func (l *flockLocker) release() error {
	return l.fl.Unlock()
}

package storage

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultLockWait bounds how long a transaction waits for the ledger lock.
const DefaultLockWait = 10 * time.Second

// readers share the lock, a writer takes all of it
const lockWeight = 1 << 16

var ErrLockTimeout = errors.New("ledger: lock wait timed out")

type Option func(*options)

type options struct {
	lockWait time.Duration
}

// WithLockWait sets the longest wait for the ledger lock. Zero or less waits
// until the caller's context ends.
func WithLockWait(d time.Duration) Option {
	return func(o *options) { o.lockWait = d }
}

func buildOptions(opts []Option) options {
	o := options{lockWait: DefaultLockWait}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// txLock serializes writers against everything and lets readers share.
// Waiting honors ctx, so a transaction opened from inside another one with a
// fresh context fails instead of hanging.
type txLock struct {
	sem  *semaphore.Weighted
	wait time.Duration
}

func newTxLock(o options) *txLock {
	return &txLock{sem: semaphore.NewWeighted(lockWeight), wait: o.lockWait}
}

func (l *txLock) lock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, lockWeight)
}

func (l *txLock) rlock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, 1)
}

func (l *txLock) acquire(ctx context.Context, n int64) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	if err := l.sem.Acquire(waitCtx, n); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrLockTimeout
	}
	return func() { l.sem.Release(n) }, nil
}

// Package lock serialises synchronisation runs that target the same notepad.
//
// Two runs against one notepad can otherwise race: both may create the notepad,
// or the later write may drop words merged by the earlier one. A Locker keyed by
// notepad title closes that window, either inside one process (Local) or across
// processes sharing a Redis instance (Redis).
package lock

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrNotHeld is returned when releasing a lock this holder no longer owns.
var ErrNotHeld = errors.New("lock not held")

// Locker acquires an exclusive lock on a key.
// The returned unlock function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Local is an in-process Locker. The zero value is ready to use.
type Local struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewLocal creates an in-process Locker.
func NewLocal() *Local {
	return &Local{}
}

// Lock blocks until key is free or ctx is done.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	sem := l.semaphore(key)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

// semaphore returns the semaphore for key, creating it on first use.
// Semaphores are never evicted; the key space is the set of notepad titles.
func (l *Local) semaphore(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sems == nil {
		l.sems = make(map[string]*semaphore.Weighted)
	}
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	return sem
}

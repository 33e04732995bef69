package locker

import (
	"context"
	"sync"
	"time"
)

type localLock struct {
	mu     sync.Mutex
	usedAt time.Time // guarded by Local.mu
}

// Local keeps per-key locks in-process (default choice).
// Optional cleanup loop prunes locks for long-inactive keys.
type Local struct {
	mu    sync.Mutex
	locks map[string]*localLock

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup

	retention time.Duration
}

var _ Locker = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	l := &Local{
		locks:     make(map[string]*localLock),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		l.ticker = time.NewTicker(cleanupInterval)
		l.stopCh = make(chan struct{})
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			for {
				select {
				case <-l.ticker.C:
					l.Cleanup(retention)
				case <-l.stopCh:
					return
				}
			}
		}()
	}
	return l
}

func (l *Local) Acquire(_ context.Context, key string) (func(), bool, error) {
	now := time.Now()
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localLock{}
		l.locks[key] = e
	}
	e.usedAt = now
	l.mu.Unlock()

	if !e.mu.TryLock() {
		return nil, false, nil
	}
	return e.mu.Unlock, true, nil
}

// Cleanup prunes locks whose keys have not been touched within retention.
// Held locks are never pruned.
func (l *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	l.mu.Lock()
	for k, e := range l.locks {
		if e.usedAt.After(cutoff) {
			continue
		}
		if e.mu.TryLock() {
			delete(l.locks, k)
			e.mu.Unlock()
		}
	}
	l.mu.Unlock()
}

func (l *Local) Close(_ context.Context) error {
	if l.stopCh != nil {
		close(l.stopCh)
		if l.ticker != nil {
			l.ticker.Stop() // stop ticker before waiting
		}
		l.wg.Wait()
	}
	return nil
}

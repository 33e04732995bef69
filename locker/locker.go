// Package locker provides per-key mutual exclusion for syncs. The engine
// assumes at most one synchronization in flight per record key; embedders
// running multiple replicas against a shared store plug in a Locker to keep
// that assumption across processes. Use Local for single-process setups, or
// Redis for lease-based locks shared between replicas.
package locker

import "context"

// Locker hands out per-key locks. Acquire is non-blocking: ok=false means
// another holder currently owns the key and the caller should degrade
// (relsync serves the cached record instead of walking the remote).
type Locker interface {
	// Acquire attempts to take the lock for key. On success it returns a
	// release func that must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)

	// Close releases resources (no-op ok).
	Close(ctx context.Context) error
}
